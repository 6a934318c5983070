package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/orchestratord/pkg/apperr"
)

func TestManager_CreateGet(t *testing.T) {
	m := NewManager(32)

	h, err := m.Create("", "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID)
	assert.Equal(t, PhaseProposal, h.Phase)

	got, ok := m.Get(h.ID)
	require.True(t, ok)
	assert.Equal(t, h.ID, got.ID)
}

func TestManager_GetUnknown(t *testing.T) {
	m := NewManager(32)
	_, ok := m.Get("does-not-exist")
	assert.False(t, ok)
}

func TestManager_CapEnforced(t *testing.T) {
	m := NewManager(2)

	_, err := m.Create("", "one")
	require.NoError(t, err)
	_, err = m.Create("", "two")
	require.NoError(t, err)

	_, err = m.Create("", "three")
	require.Error(t, err)
	ce, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ClassBusy, ce.Class)
}

func TestManager_TerminalSessionsDontCountAgainstCap(t *testing.T) {
	m := NewManager(1)

	h, err := m.Create("", "one")
	require.NoError(t, err)
	h.Finish("dexter", "done")

	_, err = m.Create("", "two")
	assert.NoError(t, err)
}

func TestManager_Cancel(t *testing.T) {
	m := NewManager(32)
	h, err := m.Create("", "hi")
	require.NoError(t, err)

	assert.False(t, m.Cancel(h.ID)) // no cancel func registered yet

	called := false
	h.SetCancelFunc(func() { called = true })
	assert.True(t, m.Cancel(h.ID))
	assert.True(t, called)
	assert.Equal(t, PhaseFailed, h.Phase)
}

func TestManager_Delete(t *testing.T) {
	m := NewManager(32)
	h, err := m.Create("", "hi")
	require.NoError(t, err)

	m.Delete(h.ID)
	_, ok := m.Get(h.ID)
	assert.False(t, ok)
}

func TestManager_ListActiveOnly(t *testing.T) {
	m := NewManager(32)
	active, err := m.Create("", "active")
	require.NoError(t, err)
	done, err := m.Create("", "done")
	require.NoError(t, err)
	done.Finish("dexter", "final")

	all := m.List(false)
	assert.Len(t, all, 2)

	activeOnly := m.List(true)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, active.ID, activeOnly[0].ID)
}

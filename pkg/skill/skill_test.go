package skill

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/orchestratord/pkg/sandbox"
)

func TestExtractCandidate(t *testing.T) {
	text := "Here is my answer.\n```skill\nprint('hi')\n```\nDone."
	source, ok := ExtractCandidate(text)
	require.True(t, ok)
	assert.Equal(t, "print('hi')", source)
}

func TestExtractCandidate_TaggedWithLanguage(t *testing.T) {
	text := "```python skill\nprint('hi')\n```"
	source, ok := ExtractCandidate(text)
	require.True(t, ok)
	assert.Equal(t, "print('hi')", source)
}

func TestExtractCandidate_NoBlock(t *testing.T) {
	_, ok := ExtractCandidate("just plain text, no code fences")
	assert.False(t, ok)
}

type fakeRunner struct {
	result sandbox.Result
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, source, entry, input string, limits sandbox.Limits) (sandbox.Result, error) {
	return f.result, f.err
}

func TestLibrary_CreateTestPromote(t *testing.T) {
	lib := NewLibrary()
	s := lib.Create("greeter", "print('hello')")
	assert.Equal(t, StateDraft, s.State)

	runner := &fakeRunner{result: sandbox.Result{OK: true, Stdout: "hello"}}
	result, err := lib.Test(context.Background(), runner, s.ID, "hello world", sandbox.Limits{Timeout: time.Second})
	require.NoError(t, err)
	assert.True(t, result.OK)

	promoted, err := lib.Promote(s.ID)
	require.NoError(t, err)
	assert.Equal(t, StateActive, promoted.State)
	assert.False(t, promoted.PromotedAt.IsZero())
}

func TestLibrary_PromoteWithoutPassingTestFails(t *testing.T) {
	lib := NewLibrary()
	s := lib.Create("greeter", "print('hello')")

	_, err := lib.Promote(s.ID)
	assert.Error(t, err)
}

func TestLibrary_PromoteAfterFailedTestFails(t *testing.T) {
	lib := NewLibrary()
	s := lib.Create("greeter", "exit(1)")

	runner := &fakeRunner{result: sandbox.Result{OK: false, ExitCode: 1}}
	_, err := lib.Test(context.Background(), runner, s.ID, "hi", sandbox.Limits{Timeout: time.Second})
	require.NoError(t, err)

	_, err = lib.Promote(s.ID)
	assert.Error(t, err)
}

func TestLibrary_PromoteIsIdempotent(t *testing.T) {
	lib := NewLibrary()
	s := lib.Create("greeter", "print('hello')")
	runner := &fakeRunner{result: sandbox.Result{OK: true}}
	_, err := lib.Test(context.Background(), runner, s.ID, "hi", sandbox.Limits{Timeout: time.Second})
	require.NoError(t, err)

	first, err := lib.Promote(s.ID)
	require.NoError(t, err)
	second, err := lib.Promote(s.ID)
	require.NoError(t, err)
	assert.Equal(t, first.PromotedAt, second.PromotedAt)
}

func TestLibrary_TestPropagatesRunnerError(t *testing.T) {
	lib := NewLibrary()
	s := lib.Create("greeter", "print('hello')")
	runner := &fakeRunner{err: errors.New("boom")}

	_, err := lib.Test(context.Background(), runner, s.ID, "hi", sandbox.Limits{Timeout: time.Second})
	assert.Error(t, err)
}

func TestLibrary_Discard(t *testing.T) {
	lib := NewLibrary()
	s := lib.Create("greeter", "print('hello')")
	lib.Discard(s.ID)

	got, ok := lib.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, StateDiscarded, got.State)
}

func TestLibrary_List(t *testing.T) {
	lib := NewLibrary()
	lib.Create("a", "print('a')")
	lib.Create("b", "print('b')")
	assert.Len(t, lib.List(), 2)
}

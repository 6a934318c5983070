// Package skill implements the Candidate Skill lifecycle: extracting a
// fenced code block flagged as a skill from a winning answer, validating
// it with the Sandbox Runner, and promoting it draft→active on success.
// Grounded on None9527-NGOClaw's
// gateway/internal/infrastructure/tool/skill_manager.go and
// gateway/internal/domain/entity/skill.go, repurposed from "installed
// skill directory, discovered by scanning disk" semantics to "in-memory
// skill record created from a collaboration answer and promoted after one
// Sandbox Runner pass."
package skill

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/orchestratord/pkg/apperr"
	"github.com/codeready-toolchain/orchestratord/pkg/sandbox"
)

// State is a Candidate Skill's position in its draft→active→discarded
// lifecycle.
type State string

const (
	StateDraft     State = "draft"
	StateActive    State = "active"
	StateDiscarded State = "discarded"
)

// Skill is one Candidate Skill: a (name, source, entry signature) triple
// plus its lifecycle state and last sandbox test result.
type Skill struct {
	ID          string
	Name        string
	Source      string
	EntryName   string
	State       State
	CreatedAt   time.Time
	LastTestOK  bool
	LastTestAt  time.Time
	PromotedAt  time.Time
}

// fencedSkillBlock matches a fenced code block tagged "skill" (e.g.
// ```skill\n...\n``` or ```python skill\n...\n```), the marker the Engine
// looks for in a winning answer to decide the user's intent was "build a
// skill".
var fencedSkillBlock = regexp.MustCompile("(?s)```(?:\\w*\\s+)?skill\\s*\\n(.*?)\\n```")

// ExtractCandidate looks for a fenced code block tagged "skill" in text and
// returns its source, or ok=false if none is present.
func ExtractCandidate(text string) (source string, ok bool) {
	m := fencedSkillBlock.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// Library is the in-memory store of Candidate Skills, keyed by skill ID.
// A promoted skill is stored here on success.
type Library struct {
	mu     sync.RWMutex
	skills map[string]*Skill
}

// NewLibrary creates an empty skill library.
func NewLibrary() *Library {
	return &Library{skills: make(map[string]*Skill)}
}

// Create registers a new draft skill from extracted source, the entry
// signature always being `(message string) -> string`.
func (l *Library) Create(name, source string) *Skill {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := &Skill{
		ID:        uuid.New().String(),
		Name:      name,
		Source:    source,
		EntryName: "entry",
		State:     StateDraft,
		CreatedAt: time.Now(),
	}
	l.skills[s.ID] = s
	return s
}

// Get returns the skill with the given id, or false if unknown.
func (l *Library) Get(id string) (*Skill, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.skills[id]
	return s, ok
}

// List returns every skill in the library.
func (l *Library) List() []*Skill {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Skill, 0, len(l.skills))
	for _, s := range l.skills {
		out = append(out, s)
	}
	return out
}

// Test runs id's source through runner with inputMessage and records the
// result, returning the sandbox.Result so callers can report it directly.
func (l *Library) Test(ctx context.Context, runner sandbox.Runner, id, inputMessage string, limits sandbox.Limits) (sandbox.Result, error) {
	l.mu.Lock()
	s, ok := l.skills[id]
	l.mu.Unlock()
	if !ok {
		return sandbox.Result{}, apperr.New(apperr.ClassInternal, "", fmt.Sprintf("skill %q not found", id))
	}

	result, err := runner.Run(ctx, s.Source, s.EntryName, inputMessage, limits)
	if err != nil {
		return sandbox.Result{}, fmt.Errorf("running sandbox: %w", err)
	}

	l.mu.Lock()
	s.LastTestOK = result.OK
	s.LastTestAt = time.Now()
	l.mu.Unlock()

	return result, nil
}

// Promote transitions id from draft to active, but only if its last test
// result was ok. At-most-once: promoting an already-active skill is
// idempotent and succeeds without re-running the test.
func (l *Library) Promote(id string) (*Skill, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.skills[id]
	if !ok {
		return nil, apperr.New(apperr.ClassInternal, "", fmt.Sprintf("skill %q not found", id))
	}
	if s.State == StateActive {
		return s, nil
	}
	if !s.LastTestOK {
		return nil, apperr.New(apperr.ClassInternal, "", fmt.Sprintf("skill %q has not passed a sandbox test", id))
	}

	s.State = StateActive
	s.PromotedAt = time.Now()
	return s, nil
}

// Discard marks id discarded, e.g. after a failed sandbox test the caller
// chooses not to retry.
func (l *Library) Discard(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.skills[id]; ok {
		s.State = StateDiscarded
	}
}

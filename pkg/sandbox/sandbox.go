// Package sandbox implements the Sandbox Runner: the contract by which a
// candidate skill's code is executed in isolation and judged pass/fail
// before promotion. Grounded on None9527-NGOClaw's
// gateway/internal/infrastructure/sandbox/process_sandbox.go process-level
// isolation shape (timeout context, captured stdout/stderr, process-group
// kill), restated around an (ok, stdout, stderr, exit, duration) contract
// and re-pointed at log/slog.
package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// Limits are the per-run resource caps. StdoutCap is configured per
// installation, not per skill.
type Limits struct {
	Timeout       time.Duration
	MemoryLimitMB int
	StdoutCap     int // bytes
}

// Result is the outcome of one Sandbox Runner invocation.
type Result struct {
	OK         bool
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMs int64
	Truncated  bool
}

// Runner is the contract the Engine depends on — it never depends on a
// concrete backend.
type Runner interface {
	Run(ctx context.Context, skillSource, entryName, inputMessage string, limits Limits) (Result, error)
}

// truncationMarker is appended to stdout when it is cut off at the cap.
const truncationMarker = "\n...[truncated]"

// ProcessSandbox is the OS-process-level backend — one of two pluggable
// shapes the contract allows (a container/VM, or an in-process restricted
// interpreter); this is the former, one level down from a full container.
// It writes the skill source to a fresh scratch directory,
// execs a single entry script under a wall-clock timeout, and discards the
// scratch directory afterward.
type ProcessSandbox struct {
	// Interpreter is the command used to run the skill source file, e.g.
	// "python3" or "node". Defaults to "python3" when empty.
	Interpreter string

	// ScratchRoot is the parent directory under which a per-run scratch
	// directory is created and removed. Defaults to os.TempDir() when empty.
	ScratchRoot string
}

var _ Runner = (*ProcessSandbox)(nil)

// Run writes skillSource to a scratch file named entryName, execs it with
// inputMessage as its sole argument, and reports ok/stdout/stderr/exit. ok
// is true iff the process exits 0 within the time limit and produces
// output on stdout. No network access and a read-only source mount are
// approximated by running the interpreter directly against a scratch copy
// with a writable working directory discarded at the end; the memory cap
// is not enforced (see processIsolationAttr).
func (s *ProcessSandbox) Run(ctx context.Context, skillSource, entryName, inputMessage string, limits Limits) (Result, error) {
	start := time.Now()
	limits = applyLimitDefaults(limits)

	scratchRoot := s.ScratchRoot
	if scratchRoot == "" {
		scratchRoot = os.TempDir()
	}
	runDir := filepath.Join(scratchRoot, "skill-run-"+uuid.New().String())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(runDir)

	interpreter := s.Interpreter
	if interpreter == "" {
		interpreter = "python3"
	}

	scriptPath := filepath.Join(runDir, scriptFilename(entryName, interpreter))
	if err := os.WriteFile(scriptPath, []byte(skillSource), 0o444); err != nil {
		return Result{}, fmt.Errorf("writing skill source: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, limits.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, interpreter, scriptPath, inputMessage)
	cmd.Dir = runDir
	cmd.Env = []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + runDir,
		"LANG=C.UTF-8",
	}
	cmd.SysProcAttr = processIsolationAttr()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("sandbox run starting",
		"entry", entryName, "interpreter", interpreter, "timeout", limits.Timeout)

	err := cmd.Run()
	duration := time.Since(start)

	result := Result{
		DurationMs: duration.Milliseconds(),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		result.ExitCode = -1
		result.Stderr = "sandbox: wall-clock timeout exceeded"
		slog.Warn("sandbox run killed on timeout", "entry", entryName, "timeout", limits.Timeout)
		return result, nil
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			return result, fmt.Errorf("executing skill: %w", err)
		}
	}

	result.Stdout, result.Truncated = capString(stdout.String(), limits.StdoutCap)
	result.Stderr = stderr.String()
	result.OK = result.ExitCode == 0 && stdout.Len() > 0

	slog.Debug("sandbox run finished",
		"entry", entryName, "ok", result.OK, "exit_code", result.ExitCode, "duration_ms", result.DurationMs)

	return result, nil
}

func applyLimitDefaults(l Limits) Limits {
	if l.Timeout <= 0 {
		l.Timeout = 10 * time.Second
	}
	if l.MemoryLimitMB <= 0 {
		l.MemoryLimitMB = 256
	}
	if l.StdoutCap <= 0 {
		l.StdoutCap = 1024 * 1024
	}
	return l
}

func scriptFilename(entryName, interpreter string) string {
	switch interpreter {
	case "node":
		return entryName + ".js"
	case "bash", "sh":
		return entryName + ".sh"
	default:
		return entryName + ".py"
	}
}

func capString(s string, capBytes int) (string, bool) {
	if len(s) <= capBytes {
		return s, false
	}
	return s[:capBytes] + truncationMarker, true
}

// processIsolationAttr puts the skill in its own process group so a
// timeout kill (via ctx cancellation) takes any children it spawned with
// it. Limits.MemoryLimitMB is accepted but not applied to the child
// process: no rlimit, cgroup or ulimit wrapper is set, here or by any
// caller, so a skill's memory use is not capped.
func processIsolationAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

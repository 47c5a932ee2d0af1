package launch

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"
)

// shellAvailable skips runner tests on hosts without /bin/sh.
func shellAvailable(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return path
}

// TestExecRunnerForwardsExitCode verifies the engine's exit code is
// returned verbatim.
func TestExecRunnerForwardsExitCode(t *testing.T) {
	sh := shellAvailable(t)
	r := &execRunner{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}

	code, err := r.Run(context.Background(), Invocation{
		Command: sh,
		Args:    []string{"-c", "exit 3"},
	}, nil)

	if code != 3 {
		t.Fatalf("exit code = %d, want 3", code)
	}
	var engineErr *EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("error = %v, want EngineError", err)
	}
}

// TestExecRunnerZeroExit verifies the success path.
func TestExecRunnerZeroExit(t *testing.T) {
	sh := shellAvailable(t)
	var stdout bytes.Buffer
	r := &execRunner{stdout: &stdout, stderr: &bytes.Buffer{}}

	code, err := r.Run(context.Background(), Invocation{
		Command: sh,
		Args:    []string{"-c", "echo ready"},
	}, nil)

	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if stdout.String() != "ready\n" {
		t.Fatalf("stdout = %q, want %q", stdout.String(), "ready\n")
	}
}

// TestExecRunnerLineCallback verifies piped stdout is delivered line by
// line to the callback.
func TestExecRunnerLineCallback(t *testing.T) {
	sh := shellAvailable(t)
	r := &execRunner{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}

	var lines []string
	code, err := r.Run(context.Background(), Invocation{
		Command: sh,
		Args:    []string{"-c", "echo one; echo two"},
	}, func(line string) { lines = append(lines, line) })

	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Fatalf("lines = %v, want [one two]", lines)
	}
}

// TestExecRunnerOverlongLine verifies a stdout line beyond the scanner's
// buffer cap does not wedge the engine on a full pipe; the run still
// finishes and reports the exit code.
func TestExecRunnerOverlongLine(t *testing.T) {
	sh := shellAvailable(t)
	r := &execRunner{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}

	var lines []string
	finished := make(chan struct{})
	var code int
	var err error
	go func() {
		defer close(finished)
		code, err = r.Run(context.Background(), Invocation{
			Command: sh,
			Args:    []string{"-c", `head -c 3000000 /dev/zero | tr "\0" "a"; echo; exit 7`},
		}, func(line string) { lines = append(lines, line) })
	}()

	select {
	case <-finished:
	case <-time.After(10 * time.Second):
		t.Fatal("run did not finish; engine blocked on full stdout pipe")
	}
	if code != 7 {
		t.Fatalf("exit code = %d, want 7", code)
	}
	var engineErr *EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("error = %v, want EngineError", err)
	}
}

// TestExecRunnerSignalDeath verifies a signal-killed engine reports
// 128+signal, so a SIGKILL surfaces as 137.
func TestExecRunnerSignalDeath(t *testing.T) {
	sh := shellAvailable(t)
	r := &execRunner{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}

	code, err := r.Run(context.Background(), Invocation{
		Command: sh,
		Args:    []string{"-c", "kill -KILL $$"},
	}, nil)

	if code != 137 {
		t.Fatalf("exit code = %d, want 137", code)
	}
	var engineErr *EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("error = %v, want EngineError", err)
	}
	if engineErr.ExitCode != 137 {
		t.Fatalf("EngineError exit code = %d, want 137", engineErr.ExitCode)
	}
}

// TestExecRunnerMissingBinary verifies a start failure is not an engine
// failure.
func TestExecRunnerMissingBinary(t *testing.T) {
	r := &execRunner{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}

	_, err := r.Run(context.Background(), Invocation{
		Command: "definitely-not-a-real-engine-binary",
	}, nil)

	if err == nil {
		t.Fatal("expected start error")
	}
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		t.Fatalf("start failure misreported as engine failure: %v", err)
	}
}

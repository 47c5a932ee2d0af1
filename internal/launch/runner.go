package launch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

// engineRunner abstracts engine process execution for testability. The
// returned int is the engine's exit code, forwarded verbatim.
type engineRunner interface {
	Run(ctx context.Context, inv Invocation, onLine func(string)) (int, error)
}

// execRunner executes the engine via os/exec in its own process group.
type execRunner struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// newExecRunner builds a runner attached to the launcher's own streams.
func newExecRunner() *execRunner {
	return &execRunner{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// Run spawns the engine and blocks until it exits. The child runs in its
// own process group so SIGINT/SIGTERM delivered to the launcher reach the
// whole engine process tree instead of leaving orphaned workers. With a
// line callback attached, stdout is piped through a scanner and owned by
// the callback; otherwise the child inherits the launcher's streams.
func (r *execRunner) Run(ctx context.Context, inv Invocation, onLine func(string)) (int, error) {
	cmd := exec.Command(inv.Command, inv.Args...)
	cmd.Stderr = r.stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout io.ReadCloser
	if onLine == nil {
		cmd.Stdin = r.stdin
		cmd.Stdout = r.stdout
	} else {
		pipe, err := cmd.StdoutPipe()
		if err != nil {
			return -1, fmt.Errorf("pipe engine stdout: %w", err)
		}
		stdout = pipe
	}

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("start %s: %w", inv.Command, err)
	}
	pgid := cmd.Process.Pid

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case sig := <-sigCh:
				if s, ok := sig.(syscall.Signal); ok {
					_ = syscall.Kill(-pgid, s)
				}
			case <-ctx.Done():
				_ = syscall.Kill(-pgid, syscall.SIGTERM)
				return
			case <-done:
				return
			}
		}
	}()

	if stdout != nil {
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			onLine(scanner.Text())
		}
		// An over-long line stops the scanner; keep draining so the
		// engine never blocks on a full pipe and Wait can return.
		if scanner.Err() != nil {
			_, _ = io.Copy(io.Discard, stdout)
		}
	}

	err := cmd.Wait()
	close(done)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitCode(exitErr)
			return code, &EngineError{Command: inv.Command, ExitCode: code}
		}
		return -1, err
	}

	return 0, nil
}

// exitCode extracts the engine's exit code, mapping signal death to the
// shell convention 128+signal so an OOM-killed engine reports 137 instead
// of the -1 that ExitCode returns for signaled processes.
func exitCode(exitErr *exec.ExitError) int {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return exitErr.ExitCode()
}

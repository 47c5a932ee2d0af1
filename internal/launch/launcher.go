// Package launch turns a typed job configuration into one invocation of
// the external seq2seq engine: resolve paths, render arguments, run the
// subprocess, forward its exit code. It performs no computation of its
// own and never retries a failed engine run.
package launch

import (
	"context"
	"os"

	"longdoc-trainer/internal/domain"
	"longdoc-trainer/internal/enginelog"
)

// Request contains the job configuration and execution callbacks for one
// launch.
type Request struct {
	Config   domain.JobConfig
	OnStage  func(stage string)
	OnLine   func(line string)
	OnRecord func(rec enginelog.Record)
}

// Result contains the rendered invocation and the engine's exit code.
type Result struct {
	Invocation Invocation
	ExitCode   int
}

// Launcher maps configurations onto engine subprocess invocations.
type Launcher struct {
	trainCommand    string
	generateCommand string
	runner          engineRunner
	stat            func(name string) (os.FileInfo, error)
	mkdirAll        func(path string, perm os.FileMode) error
	expandEnv       func(s string) string
}

// NewLauncher constructs the production launcher with OS dependencies.
func NewLauncher(settings domain.Settings) *Launcher {
	return &Launcher{
		trainCommand:    settings.TrainCommand,
		generateCommand: settings.GenerateCommand,
		runner:          newExecRunner(),
		stat:            os.Stat,
		mkdirAll:        os.MkdirAll,
		expandEnv:       os.ExpandEnv,
	}
}

// Launch resolves, renders, and runs one engine invocation. Validation
// failures abort before the subprocess starts; engine failures are
// returned with the exit code intact in the result.
func (l *Launcher) Launch(ctx context.Context, req Request) (Result, error) {
	emitStage(req.OnStage, "resolving")
	resolved, err := l.ResolveConfig(req.Config)
	if err != nil {
		return Result{}, &LaunchError{Stage: "resolving", Message: "configuration rejected", Err: err}
	}

	emitStage(req.OnStage, "building")
	args, err := BuildInvocation(resolved)
	if err != nil {
		return Result{}, &LaunchError{Stage: "building", Message: "configuration rejected", Err: err}
	}
	inv := Invocation{Command: l.commandFor(resolved.Task), Args: args}

	emitStage(req.OnStage, "running")
	code, err := l.runner.Run(ctx, inv, lineCallback(req))
	result := Result{Invocation: inv, ExitCode: code}
	if err != nil {
		return result, &LaunchError{Stage: "running", Message: "engine failed", Err: err}
	}

	return result, nil
}

// Render resolves the configuration and builds its invocation without
// running it. Used by the dry-run inspector.
func (l *Launcher) Render(cfg domain.JobConfig) (Invocation, error) {
	resolved, err := l.ResolveConfig(cfg)
	if err != nil {
		return Invocation{}, err
	}
	args, err := BuildInvocation(resolved)
	if err != nil {
		return Invocation{}, err
	}
	return Invocation{Command: l.commandFor(resolved.Task), Args: args}, nil
}

// commandFor picks the engine binary for a task kind.
func (l *Launcher) commandFor(task domain.TaskKind) string {
	if task == domain.TaskGenerate {
		return l.generateCommand
	}
	return l.trainCommand
}

// lineCallback merges the raw-line and decoded-record callbacks into one
// stdout line handler, or nil when neither is set so the engine inherits
// the launcher's streams.
func lineCallback(req Request) func(string) {
	if req.OnLine == nil && req.OnRecord == nil {
		return nil
	}
	return func(line string) {
		if req.OnLine != nil {
			req.OnLine(line)
		}
		if req.OnRecord != nil {
			if rec, ok := enginelog.ParseLine(line); ok {
				req.OnRecord(rec)
			}
		}
	}
}

// emitStage forwards stage updates when a callback is configured.
func emitStage(cb func(stage string), stage string) {
	if cb != nil {
		cb(stage)
	}
}

// NewLauncherForTests constructs a launcher with injectable dependencies.
func NewLauncherForTests(
	trainCommand string,
	generateCommand string,
	runner engineRunner,
	stat func(name string) (os.FileInfo, error),
	mkdirAll func(path string, perm os.FileMode) error,
	expandEnv func(s string) string,
) *Launcher {
	return &Launcher{
		trainCommand:    trainCommand,
		generateCommand: generateCommand,
		runner:          runner,
		stat:            stat,
		mkdirAll:        mkdirAll,
		expandEnv:       expandEnv,
	}
}

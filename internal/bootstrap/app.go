// Package bootstrap wires settings, diagnostics, the job manager, and the
// launcher into the application object the CLI commands drive.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"longdoc-trainer/internal/config"
	"longdoc-trainer/internal/diagnostics"
	"longdoc-trainer/internal/domain"
	"longdoc-trainer/internal/enginelog"
	"longdoc-trainer/internal/jobs"
	"longdoc-trainer/internal/launch"
)

// App wires configuration, jobs, launcher, and diagnostics together.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Jobs        *jobs.Manager
	Launcher    jobLauncher
	Diagnostics domain.DiagnosticReport

	checker     *diagnostics.Checker
	newLauncher func(domain.Settings) jobLauncher
	events      *jobs.EventBus

	mu          sync.Mutex
	activeJobID string
	cancel      context.CancelFunc
}

// jobLauncher isolates the launch package behind an interface.
type jobLauncher interface {
	Launch(ctx context.Context, req launch.Request) (launch.Result, error)
	Render(cfg domain.JobConfig) (launch.Invocation, error)
}

// RunOptions carries optional per-run callbacks from the CLI surface.
type RunOptions struct {
	OnLine   func(line string)
	OnRecord func(rec enginelog.Record)
}

// New builds the application with persisted settings and startup
// diagnostics.
func New() (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}

	store := config.NewJSONStore(filepath.Join(homeDir, ".longdoc-trainer", "settings.json"))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	checker := diagnostics.NewChecker()
	report := checker.Run(settings)
	newLauncher := func(s domain.Settings) jobLauncher { return launch.NewLauncher(s) }

	return &App{
		Settings:    settings,
		Store:       store,
		Jobs:        jobs.NewManager(),
		Launcher:    newLauncher(settings),
		Diagnostics: report,
		checker:     checker,
		newLauncher: newLauncher,
		events:      jobs.NewEventBus(1000),
	}, nil
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	return a.Diagnostics
}

// RefreshDiagnostics reloads settings and reruns pre-flight checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	a.Settings = settings
	a.Diagnostics = a.checker.Run(settings)
	return a.Diagnostics, nil
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then refreshes the
// diagnostics report and rebuilds the launcher against the new engine
// commands.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(normalized)
	}
	if a.newLauncher != nil {
		a.Launcher = a.newLauncher(normalized)
	}
	a.mu.Unlock()

	return normalized, nil
}

// RunJob executes one engine job synchronously, publishing lifecycle and
// progress events along the way. The returned result carries the engine's
// exit code verbatim; the job is never retried.
func (a *App) RunJob(ctx context.Context, cfg domain.JobConfig, opts RunOptions) (launch.Result, error) {
	jobID := uuid.NewString()
	if err := a.Jobs.Start(jobID, cfg.Task); err != nil {
		return launch.Result{}, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.mu.Lock()
	a.activeJobID = jobID
	a.cancel = cancel
	a.mu.Unlock()

	a.publishStatus(jobID, domain.JobStatusResolving, "Job started")

	req := launch.Request{
		Config: cfg,
		OnStage: func(stage string) {
			status, ok := mapStageToStatus(stage)
			if !ok || a.Jobs.Current().Status == status {
				return
			}
			if err := a.Jobs.Transition(status); err == nil {
				a.publishStatus(jobID, status, "Entering "+stage+" stage")
			}
		},
		OnLine: opts.OnLine,
		OnRecord: func(rec enginelog.Record) {
			a.publishEvent(jobs.Event{
				JobID:      jobID,
				Type:       jobs.EventTypeProgress,
				Epoch:      rec.Epoch,
				NumUpdates: rec.NumUpdates,
				Loss:       rec.Loss,
				LR:         rec.LR,
			})
			if opts.OnRecord != nil {
				opts.OnRecord(rec)
			}
		},
	}
	// Without caller callbacks the engine inherits the launcher's
	// streams; progress decoding would require the stdout pipe.
	if opts.OnRecord == nil && opts.OnLine == nil {
		req.OnRecord = nil
	}

	result, err := a.Launcher.Launch(runCtx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || runCtx.Err() != nil {
			_ = a.Jobs.Transition(domain.JobStatusCancelled)
			a.publishStatus(jobID, domain.JobStatusCancelled, "Job cancelled")
			a.clearActiveJob(jobID)
			return result, err
		}

		_ = a.Jobs.Transition(domain.JobStatusFailed)
		a.publishStatus(jobID, domain.JobStatusFailed, "Job failed")
		event := jobs.Event{
			JobID:   jobID,
			Type:    jobs.EventTypeError,
			Status:  domain.JobStatusFailed,
			Message: err.Error(),
		}
		var engineErr *launch.EngineError
		if errors.As(err, &engineErr) {
			event.Command = engineErr.Command
			event.ExitCode = engineErr.ExitCode
			event.Args = result.Invocation.Args
		}
		a.publishEvent(event)
		a.clearActiveJob(jobID)
		return result, err
	}

	if err := a.Jobs.Transition(domain.JobStatusDone); err == nil {
		a.publishStatus(jobID, domain.JobStatusDone, "Job completed")
	}
	a.publishEvent(jobs.Event{
		JobID:    jobID,
		Type:     jobs.EventTypeResult,
		Status:   domain.JobStatusDone,
		Message:  "Engine finished",
		Command:  result.Invocation.Command,
		Args:     result.Invocation.Args,
		ExitCode: result.ExitCode,
		SaveDir:  cfg.SaveDir,
	})
	a.clearActiveJob(jobID)
	return result, nil
}

// RenderInvocation resolves and renders a configuration without running
// the engine.
func (a *App) RenderInvocation(cfg domain.JobConfig) (launch.Invocation, error) {
	return a.Launcher.Render(cfg)
}

// CancelJob cancels the currently running job, if any.
func (a *App) CancelJob() error {
	a.mu.Lock()
	cancel := a.cancel
	activeJobID := a.activeJobID
	a.mu.Unlock()

	if cancel == nil {
		return jobs.ErrNoRunningJob
	}

	cancel()
	if err := a.Jobs.Cancel(); err != nil && !errors.Is(err, jobs.ErrNoRunningJob) {
		return err
	}

	if activeJobID != "" {
		a.publishStatus(activeJobID, domain.JobStatusCancelled, "Cancellation requested")
	}
	return nil
}

// CurrentJob returns current job metadata and status.
func (a *App) CurrentJob() domain.Job {
	return a.Jobs.Current()
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// publishStatus sends a normalized status event.
func (a *App) publishStatus(jobID string, status domain.JobStatus, message string) {
	a.publishEvent(jobs.Event{
		JobID:   jobID,
		Type:    jobs.EventTypeStatus,
		Status:  status,
		Message: message,
	})
}

// publishEvent stores event history.
func (a *App) publishEvent(event jobs.Event) {
	a.events.Publish(event)
}

// clearActiveJob clears cancellation handles for completed job IDs.
func (a *App) clearActiveJob(jobID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.activeJobID == jobID {
		a.activeJobID = ""
		a.cancel = nil
	}
}

// mapStageToStatus converts launcher stage names to job statuses.
func mapStageToStatus(stage string) (domain.JobStatus, bool) {
	switch stage {
	case "resolving":
		return domain.JobStatusResolving, true
	case "building":
		return domain.JobStatusLaunching, true
	case "running":
		return domain.JobStatusRunning, true
	default:
		return "", false
	}
}

// normalizeSettings trims whitespace and restores required defaults.
func normalizeSettings(settings domain.Settings) domain.Settings {
	defaults := config.DefaultSettings()

	settings.TrainCommand = strings.TrimSpace(settings.TrainCommand)
	settings.GenerateCommand = strings.TrimSpace(settings.GenerateCommand)
	settings.DataDir = strings.TrimSpace(settings.DataDir)
	settings.DictPath = strings.TrimSpace(settings.DictPath)
	settings.SaveDir = strings.TrimSpace(settings.SaveDir)

	if settings.TrainCommand == "" {
		settings.TrainCommand = defaults.TrainCommand
	}
	if settings.GenerateCommand == "" {
		settings.GenerateCommand = defaults.GenerateCommand
	}
	if settings.SaveDir == "" {
		settings.SaveDir = defaults.SaveDir
	}

	return settings
}

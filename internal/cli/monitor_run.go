package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"longdoc-trainer/internal/bootstrap"
	"longdoc-trainer/internal/domain"
	"longdoc-trainer/internal/enginelog"
	"longdoc-trainer/internal/monitor"
)

// runWithMonitor runs one job with engine stdout piped into the live
// progress view. The job itself still runs to completion exactly as a
// plain run would; only the presentation differs.
func runWithMonitor(ctx context.Context, app *bootstrap.App, cfg domain.JobConfig) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(monitor.New(cfg, cancel))

	errCh := make(chan error, 1)
	go func() {
		result, err := app.RunJob(runCtx, cfg, bootstrap.RunOptions{
			OnLine: func(line string) {
				program.Send(monitor.LineMsg(line))
			},
			OnRecord: func(rec enginelog.Record) {
				program.Send(monitor.RecordMsg(rec))
			},
		})
		program.Send(monitor.DoneMsg{ExitCode: result.ExitCode, Err: err})
		errCh <- err
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-errCh
		return err
	}

	return <-errCh
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"longdoc-trainer/internal/bootstrap"
	"longdoc-trainer/internal/config"
	"longdoc-trainer/internal/domain"
)

// newGenerateCommand builds the generate subcommand, which produces
// summaries from a trained checkpoint.
func newGenerateCommand(app *bootstrap.App) *cobra.Command {
	cfg := config.DefaultJobConfig(domain.TaskGenerate)
	cfg.Arch = ""
	var dryRun bool
	var eventLog string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate summaries from a checkpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				inv, err := app.RenderInvocation(cfg)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), inv.String())
				return nil
			}

			_, runErr := app.RunJob(cmd.Context(), cfg, bootstrap.RunOptions{})
			if eventLog != "" {
				if err := writeEventLog(eventLog, app.JobEvents(0)); err != nil && runErr == nil {
					runErr = err
				}
			}
			return runErr
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.DataDir, "data", defaultDataDir(app.Settings), "directory with the binarized dataset")
	flags.StringVar(&cfg.RestoreFile, "checkpoint", "", "trained checkpoint to load")
	flags.StringVar(&cfg.DictPath, "custom-dict", app.Settings.DictPath, "vocabulary file the checkpoint was trained with")
	flags.StringVar(&cfg.SaveDir, "results", app.Settings.SaveDir, "directory for generated output")
	flags.StringVar(&cfg.Subset, "subset", cfg.Subset, "dataset split to decode")
	flags.IntVar(&cfg.MaxSourcePositions, "max-source-positions", cfg.MaxSourcePositions, "maximum source tokens per document")
	flags.IntVar(&cfg.MaxTargetPositions, "max-target-positions", cfg.MaxTargetPositions, "maximum target tokens per document")
	flags.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "sentences per batch")
	flags.IntVar(&cfg.NumWorkers, "num-workers", cfg.NumWorkers, "data loading workers")
	flags.IntVar(&cfg.Beam, "beam", cfg.Beam, "beam search width")
	flags.IntVar(&cfg.MinLen, "min-len", cfg.MinLen, "minimum generated length")
	flags.IntVar(&cfg.MaxLenB, "max-len-b", cfg.MaxLenB, "maximum generated length")
	flags.BoolVar(&dryRun, "dry-run", false, "print the engine invocation instead of running it")
	flags.StringVar(&eventLog, "event-log", "", "append the run's job events to this file as JSON lines")

	return cmd
}

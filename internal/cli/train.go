package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"longdoc-trainer/internal/bootstrap"
	"longdoc-trainer/internal/config"
	"longdoc-trainer/internal/domain"
)

// newTrainCommand builds the train subcommand. Flag defaults mirror the
// engine's long-document fine-tuning recipe.
func newTrainCommand(app *bootstrap.App) *cobra.Command {
	cfg := config.DefaultJobConfig(domain.TaskTrain)
	var dryRun bool
	var withMonitor bool
	var eventLog string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fine-tune a model on a prepared long-document dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				inv, err := app.RenderInvocation(cfg)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), inv.String())
				return nil
			}

			var runErr error
			if withMonitor {
				runErr = runWithMonitor(cmd.Context(), app, cfg)
			} else {
				_, runErr = app.RunJob(cmd.Context(), cfg, bootstrap.RunOptions{})
			}
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
	flags.StringVar(&cfg.Arch, "arch", cfg.Arch, "model architecture (see the archs command)")
	flags.StringVar(&cfg.RestoreFile, "restore-file", "", "checkpoint to resume training from")
	flags.StringVar(&cfg.DictPath, "custom-dict", app.Settings.DictPath, "vocabulary file overriding the dataset's own")
	flags.StringVar(&cfg.SaveDir, "save-dir", app.Settings.SaveDir, "directory for new checkpoints")
	flags.IntVar(&cfg.MaxSourcePositions, "max-source-positions", cfg.MaxSourcePositions, "maximum source tokens per document")
	flags.IntVar(&cfg.MaxTargetPositions, "max-target-positions", cfg.MaxTargetPositions, "maximum target tokens per document")
	flags.Float64Var(&cfg.LearningRate, "lr", cfg.LearningRate, "peak learning rate")
	flags.Float64Var(&cfg.AdamBeta1, "adam-beta1", cfg.AdamBeta1, "Adam first-moment decay")
	flags.Float64Var(&cfg.AdamBeta2, "adam-beta2", cfg.AdamBeta2, "Adam second-moment decay")
	flags.Float64Var(&cfg.AdamEps, "adam-eps", cfg.AdamEps, "Adam epsilon")
	flags.Float64Var(&cfg.ClipNorm, "clip-norm", cfg.ClipNorm, "gradient clipping norm")
	flags.IntVar(&cfg.WarmupUpdates, "warmup-updates", cfg.WarmupUpdates, "linear warmup steps")
	flags.IntVar(&cfg.TotalUpdates, "total-updates", cfg.TotalUpdates, "total optimizer updates")
	flags.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "sentences per batch")
	flags.IntVar(&cfg.UpdateFreq, "update-freq", cfg.UpdateFreq, "gradient accumulation factor")
	flags.IntVar(&cfg.NumWorkers, "num-workers", cfg.NumWorkers, "data loading workers")
	flags.IntVar(&cfg.LogInterval, "log-interval", cfg.LogInterval, "updates between progress lines")
	flags.BoolVar(&dryRun, "dry-run", false, "print the engine invocation instead of running it")
	flags.BoolVar(&withMonitor, "monitor", false, "show a live progress view instead of raw engine output")
	flags.StringVar(&eventLog, "event-log", "", "append the run's job events to this file as JSON lines")

	return cmd
}

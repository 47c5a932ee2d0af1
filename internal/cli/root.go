// Package cli defines the command-line surface of the launcher. It is the
// only place that reads the process environment; everything deeper works
// on explicit configuration values.
package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"longdoc-trainer/internal/bootstrap"
	"longdoc-trainer/internal/domain"
)

// NewRootCommand builds the command tree bound to one app instance.
func NewRootCommand(app *bootstrap.App) *cobra.Command {
	root := &cobra.Command{
		Use:   "longdoc-trainer",
		Short: "Launch long-document seq2seq training and generation jobs",
		Long: "longdoc-trainer validates a job configuration, renders it into the\n" +
			"external engine's argument list, and supervises the engine process.\n" +
			"It forwards the engine's exit code verbatim and never retries a\n" +
			"failed run.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newTrainCommand(app),
		newGenerateCommand(app),
		newCheckCommand(app),
		newArchsCommand(),
		newConfigCommand(app),
	)

	return root
}

// defaultDataDir picks the data directory default at the process
// boundary: the LONGDOC_DATA environment variable wins over persisted
// settings. Nothing below the cli package reads the environment.
func defaultDataDir(settings domain.Settings) string {
	if v := strings.TrimSpace(os.Getenv("LONGDOC_DATA")); v != "" {
		return v
	}
	return settings.DataDir
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"longdoc-trainer/internal/bootstrap"
	"longdoc-trainer/internal/domain"
)

// newCheckCommand builds the pre-flight diagnostics subcommand.
func newCheckCommand(app *bootstrap.App) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify engine binaries and configured paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.RefreshDiagnostics()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, item := range report.Items {
				marker := "ok  "
				if item.Status == domain.DiagnosticStatusFail {
					marker = "FAIL"
				}
				fmt.Fprintf(out, "[%s] %-20s %s\n", marker, item.Name, item.Message)
				if item.Hint != "" && item.Status == domain.DiagnosticStatusFail {
					fmt.Fprintf(out, "       %s\n", item.Hint)
				}
			}

			if report.HasFailures {
				return fmt.Errorf("pre-flight checks failed")
			}
			return nil
		},
	}
}

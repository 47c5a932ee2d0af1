package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"longdoc-trainer/internal/bootstrap"
	"longdoc-trainer/internal/domain"
)

// newConfigCommand builds the settings inspection and edit subcommands.
func newConfigCommand(app *bootstrap.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change persisted launcher settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print current settings as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := app.GetSettings()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(settings, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Update one settings field",
		Long: "Keys: train-command, generate-command, data-dir, dict-path, save-dir.\n" +
			"An empty value clears the field (commands fall back to defaults).",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := app.GetSettings()
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			switch key {
			case "train-command":
				settings.TrainCommand = value
			case "generate-command":
				settings.GenerateCommand = value
			case "data-dir":
				settings.DataDir = value
			case "dict-path":
				settings.DictPath = value
			case "save-dir":
				settings.SaveDir = value
			default:
				return fmt.Errorf("unknown settings key: %q", key)
			}

			saved, err := app.SaveSettings(settings)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %q\n", key, fieldValue(saved, key))
			return nil
		},
	})

	return cmd
}

// fieldValue reads one settings field back by its CLI key.
func fieldValue(settings domain.Settings, key string) string {
	switch key {
	case "train-command":
		return settings.TrainCommand
	case "generate-command":
		return settings.GenerateCommand
	case "data-dir":
		return settings.DataDir
	case "dict-path":
		return settings.DictPath
	case "save-dir":
		return settings.SaveDir
	default:
		return ""
	}
}

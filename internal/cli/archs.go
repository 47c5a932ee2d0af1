package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"longdoc-trainer/internal/domain"
)

// newArchsCommand lists the model architectures the engine accepts.
func newArchsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "archs",
		Short: "List known model architectures and their positional limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSOURCE\tTARGET\tDESCRIPTION")
			for _, arch := range domain.Architectures() {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
					arch.ID, arch.Name, arch.MaxSourcePositions, arch.MaxTargetPositions, arch.Description)
			}
			return w.Flush()
		},
	}
}

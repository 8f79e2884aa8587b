package cli

import (
	"github.com/spf13/cobra"

	"hfquant/internal/quant"
)

func newMethodsCmd() *cobra.Command {
	var table bool
	cmd := &cobra.Command{
		Use:   "methods",
		Short: "List the quantization methods offered at the prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if table {
				return quant.WriteTable(cmd.OutOrStdout())
			}
			return quant.WriteList(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&table, "table", false, "Render as a table with output file suffixes")
	return cmd
}

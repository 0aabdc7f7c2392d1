package commands

import (
	"webcivil-assist/lib/workbook"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newIdsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ids",
		Short: "Prints the index numbers a session would go through.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := workbook.NewSource(a.config.Input, a.config.InputSheet).Identifiers(cmd.Context())
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"#", "IndexNumber"})
			for i, id := range ids {
				t.AppendRow(table.Row{i + 1, id})
			}
			t.AppendFooter(table.Row{"Total", len(ids)})
			t.Render()
			return nil
		},
	}
}

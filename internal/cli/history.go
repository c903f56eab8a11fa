package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/routemgr/internal/fsops"
	"github.com/danieljhkim/routemgr/internal/state"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent move attempts",
	Long: `List the most recent move attempts recorded in the journal, newest first.
Failed attempts show how many directory moves completed before the failure.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := resolvePaths()
		if err != nil {
			return err
		}

		journal := state.NewFileJournalStore(fsops.NewRealFS(), paths.Journal)
		entries, err := journal.List(historyLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return outputJSON(out, entries)
		}

		PrintSection(out, "Move history")
		if len(entries) == 0 {
			PrintEmptyState(out, "No moves recorded")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			status := "ok"
			if !e.Succeeded() {
				status = "failed"
			}
			rows = append(rows, []string{
				e.StartedAt.Local().Format(time.DateTime),
				e.Route,
				e.From + " → " + e.To,
				fmt.Sprintf("%d/%d", e.Completed, e.Planned),
				status,
			})
		}
		PrintTable(out, []string{"TIME", "ROUTE", "MOVE", "STEPS", "STATUS"}, rows, func(row, col int) *color.Color {
			if col != 4 {
				return nil
			}
			if entries[row].Succeeded() {
				return successColor
			}
			return errorColor
		})

		for _, e := range entries {
			if e.Error != "" {
				fmt.Fprintln(out)
				PrintError(out, fmt.Sprintf("%s (%s): %s", e.Route, e.ID, e.Error))
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of entries to show (0 for all)")
}

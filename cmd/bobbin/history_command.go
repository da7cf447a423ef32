package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"bobbin/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int
	var itemsFlag string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent batch runs recorded in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(store *journal.Store) error {
				if itemsFlag != "" {
					return printRunItems(cmd, store, itemsFlag)
				}

				runs, err := store.RecentRuns(cmd.Context(), limitFlag)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet")
					return nil
				}

				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortRunID(run.ID),
						run.Command,
						run.StartedAt.Local().Format("2006-01-02 15:04"),
						runDuration(run),
						strconv.Itoa(run.Succeeded),
						strconv.Itoa(run.Failed),
						strconv.Itoa(run.Skipped),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]column{
						{title: "Run"},
						{title: "Command"},
						{title: "Started"},
						{title: "Duration", numeric: true},
						{title: "OK", numeric: true},
						{title: "Failed", numeric: true},
						{title: "Skipped", numeric: true},
					},
					rows,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().StringVar(&itemsFlag, "items", "", "Show the files of one run by its ID prefix")

	return cmd
}

func printRunItems(cmd *cobra.Command, store *journal.Store, idPrefix string) error {
	run, err := store.FindRun(cmd.Context(), idPrefix)
	if err != nil {
		return err
	}

	items, err := store.RunItems(cmd.Context(), run.ID)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		note := item.Detail
		if item.FallbackUsed {
			if note != "" {
				note += "; "
			}
			note += "cpu fallback"
		}
		rows = append(rows, []string{
			item.Source,
			item.Status,
			item.Elapsed.Round(time.Second).String(),
			note,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]column{
			{title: "Source"},
			{title: "Status"},
			{title: "Elapsed", numeric: true},
			{title: "Notes"},
		},
		rows,
	))
	return nil
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runDuration(run journal.Run) string {
	if run.EndedAt.IsZero() {
		return "-"
	}
	return run.EndedAt.Sub(run.StartedAt).Round(time.Second).String()
}

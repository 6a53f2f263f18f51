package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"lectern/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue health and dependency status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			health, err := store.Health(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, heading("Queue"))
			fmt.Fprintln(out, renderTable(
				[]string{"Total", "Pending", "Processing", "Completed", "Failed"},
				[][]string{{
					strconv.Itoa(health.Total),
					strconv.Itoa(health.Pending),
					strconv.Itoa(health.Processing),
					strconv.Itoa(health.Completed),
					strconv.Itoa(health.Failed),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
			))

			fmt.Fprintln(out, heading("Dependencies"))
			var depRows [][]string
			for _, status := range preflight.CheckSystemDeps(cfg) {
				state := "ok"
				if !status.Available {
					state = "missing"
					if status.Optional {
						state = "missing (optional)"
					}
				}
				depRows = append(depRows, []string{status.Name, status.Command, state})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Tool", "Command", "State"},
				depRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			fmt.Fprintln(out, heading("Directories"))
			var dirRows [][]string
			for _, result := range preflight.CheckDirectories(cfg) {
				state := "ok"
				if !result.Passed {
					state = "error"
				}
				dirRows = append(dirRows, []string{result.Name, state, result.Detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Directory", "State", "Detail"},
				dirRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

// heading bolds section titles when stdout is a terminal.
func heading(title string) string {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return text.Bold.Sprint(title)
	}
	return title
}

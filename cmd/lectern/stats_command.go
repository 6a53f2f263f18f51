package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lectern/internal/dashboard"
	"lectern/internal/manifest"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var topWords int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print dataset statistics from the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			entries, err := manifest.Read(cfg.Paths.ManifestPath)
			if err != nil {
				return err
			}
			stats := dashboard.Compute(entries)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, heading("Dataset"))
			fmt.Fprintln(out, renderTable(
				[]string{"Utterances", "Hours", "Mean (s)", "Words", "Vocab", "Alphabet"},
				[][]string{{
					strconv.Itoa(stats.Utterances),
					fmt.Sprintf("%.3f", stats.TotalHours),
					fmt.Sprintf("%.2f", stats.MeanDuration),
					strconv.Itoa(stats.TotalWords),
					strconv.Itoa(stats.VocabSize),
					strconv.Itoa(stats.AlphabetSize),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
			))

			if topWords > 0 && len(stats.TopWords) > 0 {
				limit := topWords
				if limit > len(stats.TopWords) {
					limit = len(stats.TopWords)
				}
				rows := make([][]string, 0, limit)
				for _, word := range stats.TopWords[:limit] {
					rows = append(rows, []string{word.Word, strconv.Itoa(word.Count)})
				}
				fmt.Fprintln(out, heading("Most frequent words"))
				fmt.Fprintln(out, renderTable(
					[]string{"Word", "Count"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&topWords, "top-words", 10, "How many frequent words to list (0 disables)")
	return cmd
}

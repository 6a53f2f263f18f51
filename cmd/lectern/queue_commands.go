package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lectern/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the lecture queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued lectures",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var statuses []queue.Status
			if statusFilter != "" {
				status, ok := queue.ParseStatus(statusFilter)
				if !ok {
					return fmt.Errorf("unknown status %q (known: %v)", statusFilter, queue.AllStatuses())
				}
				statuses = append(statuses, status)
			}

			items, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					item.VideoID,
					string(item.Status),
					item.ErrorMessage,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Video", "Status", "Error"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Only show items with this status")
	return cmd
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id...]",
		Short: "Move failed lectures back to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid item id %q", arg)
				}
				ids = append(ids, id)
			}

			retried, err := store.RetryFailed(cmd.Context(), ids...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d failed lectures\n", retried)
			return nil
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var completedOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove items from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var removed int64
			if completedOnly {
				removed, err = store.ClearCompleted(cmd.Context())
			} else {
				removed, err = store.Clear(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d items\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&completedOnly, "completed", false, "Only remove completed items")
	return cmd
}

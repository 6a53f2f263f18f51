package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lectern/internal/catalog"
	"lectern/internal/queue"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var courseURL string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Discover course lectures and add them to the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.componentLogger("fetch")
			if err != nil {
				return err
			}

			url := strings.TrimSpace(courseURL)
			if url == "" {
				url = cfg.Course.URL
			}
			if url == "" {
				return errors.New("no course URL configured; set course.url or pass --url")
			}

			ids, err := catalog.NewClient().FetchVideoIDs(cmd.Context(), url)
			if err != nil {
				return err
			}
			logger.Info("discovered lectures", "count", len(ids), "url", url)

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			added, err := enqueueLectures(cmd.Context(), store, ids)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Found %d lectures, added %d new to the queue\n", len(ids), added)
			return nil
		},
	}

	cmd.Flags().StringVar(&courseURL, "url", "", "Course page URL (defaults to config)")
	return cmd
}

// enqueueLectures adds any video IDs not already tracked by the queue
// and returns how many were new.
func enqueueLectures(ctx context.Context, store *queue.Store, ids []string) (int, error) {
	added := 0
	for _, id := range ids {
		existing, err := store.FindByVideoID(ctx, id)
		if err != nil {
			return added, err
		}
		if existing != nil {
			continue
		}
		if _, err := store.NewLecture(ctx, id, ""); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

package queue

import (
	"context"
	"fmt"
	"time"
)

// ResetStuckProcessing returns items left in processing states by a
// crashed run back to the start of their current stage.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE lecture_items
         SET status = CASE status
             WHEN ? THEN ?
             WHEN ? THEN ?
             WHEN ? THEN ?
             WHEN ? THEN ?
             ELSE status
         END,
             updated_at = ?
         WHERE status IN (?, ?, ?, ?)`,
		StatusDownloading, StatusPending,
		StatusConverting, StatusDownloaded,
		StatusTrimming, StatusConverted,
		StatusCleaning, StatusTrimmed,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusDownloading,
		StatusConverting,
		StatusTrimming,
		StatusCleaning,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck items: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves failed items back to pending for reprocessing. With
// no IDs, every failed item is retried.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if len(ids) == 0 {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE lecture_items
            SET status = ?, error_message = NULL, updated_at = ?
            WHERE status = ?`,
			StatusPending,
			timestamp,
			StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed items: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+3)
	args = append(args, StatusPending, timestamp, StatusFailed)
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE lecture_items
        SET status = ?, error_message = NULL, updated_at = ?
        WHERE status = ? AND id IN (` + placeholders + `)`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected items: %w", err)
	}
	return res.RowsAffected()
}

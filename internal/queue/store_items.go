package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const itemColumns = "id, video_id, title, status, raw_audio_path, audio_path, final_audio_path, subtitle_path, transcript_path, error_message, created_at, updated_at"

// NewLecture inserts a pending item for a lecture video. When the video
// ID is already tracked the existing item is returned unchanged, so
// re-running fetch against the same course page is safe.
func (s *Store) NewLecture(ctx context.Context, videoID, title string) (*Item, error) {
	if existing, err := s.FindByVideoID(ctx, videoID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO lecture_items (video_id, title, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		videoID,
		nullableString(title),
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert lecture: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a lecture item by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+itemColumns+` FROM lecture_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// FindByVideoID returns the item tracking a video, or nil.
func (s *Store) FindByVideoID(ctx context.Context, videoID string) (*Item, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+itemColumns+` FROM lecture_items WHERE video_id = ? LIMIT 1`,
		videoID,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by video id: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing lecture item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE lecture_items
         SET video_id = ?, title = ?, status = ?, raw_audio_path = ?,
             audio_path = ?, final_audio_path = ?, subtitle_path = ?,
             transcript_path = ?, error_message = ?, updated_at = ?
         WHERE id = ?`,
		item.VideoID,
		nullableString(item.Title),
		item.Status,
		nullableString(item.RawAudioPath),
		nullableString(item.AudioPath),
		nullableString(item.FinalAudioPath),
		nullableString(item.SubtitlePath),
		nullableString(item.TranscriptPath),
		nullableString(item.ErrorMessage),
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// List returns lecture items filtered by status set, or all items when
// no status is provided, ordered by creation time.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	ctx = ensureContext(ctx)

	var (
		rows *sql.Rows
		err  error
	)
	baseQuery := `SELECT ` + itemColumns + ` FROM lecture_items`
	orderClause := ` ORDER BY created_at, id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list lecture items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// NextForStatuses returns the oldest item matching any of the provided statuses.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Item, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}

	query := `SELECT ` + itemColumns + ` FROM lecture_items WHERE status IN (` + placeholders + `) ORDER BY created_at, id LIMIT 1`
	row := s.db.QueryRowContext(ensureContext(ctx), query, args...)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Remove deletes an item by identifier.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM lecture_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes all items from the queue.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM lecture_items`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}

// ClearCompleted removes only completed items from the queue.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM lecture_items WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id           int64
		videoID      string
		title        sql.NullString
		statusStr    string
		rawAudio     sql.NullString
		audio        sql.NullString
		finalAudio   sql.NullString
		subtitle     sql.NullString
		transcript   sql.NullString
		errorMessage sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&videoID,
		&title,
		&statusStr,
		&rawAudio,
		&audio,
		&finalAudio,
		&subtitle,
		&transcript,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:             id,
		VideoID:        videoID,
		Title:          title.String,
		Status:         Status(statusStr),
		RawAudioPath:   rawAudio.String,
		AudioPath:      audio.String,
		FinalAudioPath: finalAudio.String,
		SubtitlePath:   subtitle.String,
		TranscriptPath: transcript.String,
		ErrorMessage:   errorMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

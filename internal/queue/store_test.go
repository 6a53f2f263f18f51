package queue

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "lectern.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewLectureAndLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, err := store.NewLecture(ctx, "AAAABBBBCC1", "Lecture 1")
	if err != nil {
		t.Fatalf("NewLecture returned error: %v", err)
	}
	if item.ID == 0 || item.Status != StatusPending {
		t.Fatalf("unexpected item: %+v", item)
	}

	// Inserting the same video again must return the existing row.
	dup, err := store.NewLecture(ctx, "AAAABBBBCC1", "Lecture 1 again")
	if err != nil {
		t.Fatalf("duplicate NewLecture returned error: %v", err)
	}
	if dup.ID != item.ID || dup.Title != "Lecture 1" {
		t.Fatalf("duplicate insert created a new row: %+v", dup)
	}

	found, err := store.FindByVideoID(ctx, "AAAABBBBCC1")
	if err != nil {
		t.Fatalf("FindByVideoID returned error: %v", err)
	}
	if found == nil || found.ID != item.ID {
		t.Fatalf("FindByVideoID mismatch: %+v", found)
	}

	missing, err := store.FindByVideoID(ctx, "nope")
	if err != nil {
		t.Fatalf("FindByVideoID returned error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown video, got %+v", missing)
	}
}

func TestUpdatePersistsFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, err := store.NewLecture(ctx, "AAAABBBBCC1", "")
	if err != nil {
		t.Fatal(err)
	}

	item.Status = StatusDownloaded
	item.RawAudioPath = "/data/raw/AAAABBBBCC1.wav"
	item.SubtitlePath = "/data/subs/AAAABBBBCC1.srt"
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	reloaded, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Status != StatusDownloaded || reloaded.RawAudioPath != "/data/raw/AAAABBBBCC1.wav" {
		t.Fatalf("update not persisted: %+v", reloaded)
	}
	if reloaded.SubtitlePath != "/data/subs/AAAABBBBCC1.srt" {
		t.Fatalf("subtitle path not persisted: %+v", reloaded)
	}
}

func TestNextForStatusesOrdering(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.NewLecture(ctx, "AAAABBBBCC1", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.NewLecture(ctx, "AAAABBBBCC2", ""); err != nil {
		t.Fatal(err)
	}

	next, err := store.NextForStatuses(ctx, StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses returned error: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest pending item, got %+v", next)
	}

	none, err := store.NextForStatuses(ctx, StatusCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if none != nil {
		t.Fatalf("expected nil for empty status, got %+v", none)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, err := store.NewLecture(ctx, "AAAABBBBCC1", "")
	if err != nil {
		t.Fatal(err)
	}
	item.Status = StatusConverting
	if err := store.Update(ctx, item); err != nil {
		t.Fatal(err)
	}

	reset, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing returned error: %v", err)
	}
	if reset != 1 {
		t.Fatalf("reset %d items, want 1", reset)
	}

	reloaded, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Status != StatusDownloaded {
		t.Fatalf("status = %s, want %s", reloaded.Status, StatusDownloaded)
	}
}

func TestRetryFailed(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, err := store.NewLecture(ctx, "AAAABBBBCC1", "")
	if err != nil {
		t.Fatal(err)
	}
	item.SetFailed("download timed out")
	if err := store.Update(ctx, item); err != nil {
		t.Fatal(err)
	}

	retried, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed returned error: %v", err)
	}
	if retried != 1 {
		t.Fatalf("retried %d items, want 1", retried)
	}

	reloaded, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Status != StatusPending || reloaded.ErrorMessage != "" {
		t.Fatalf("retry did not reset item: %+v", reloaded)
	}
}

func TestHealthSummary(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	statuses := []Status{StatusPending, StatusConverting, StatusCompleted, StatusFailed}
	for i, status := range statuses {
		item, err := store.NewLecture(ctx, "AAAABBBBCC"+string(rune('1'+i)), "")
		if err != nil {
			t.Fatal(err)
		}
		item.Status = status
		if err := store.Update(ctx, item); err != nil {
			t.Fatal(err)
		}
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	want := HealthSummary{Total: 4, Pending: 1, Processing: 1, Failed: 1, Completed: 1}
	if health != want {
		t.Fatalf("health = %+v, want %+v", health, want)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := ParseStatus(" Converting "); !ok || status != StatusConverting {
		t.Fatalf("ParseStatus failed: %v %v", status, ok)
	}
	if _, ok := ParseStatus("bogus"); ok {
		t.Fatal("expected bogus status to be rejected")
	}
}

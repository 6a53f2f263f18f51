package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a lecture item.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusDownloaded  Status = "downloaded"
	StatusConverting  Status = "converting"
	StatusConverted   Status = "converted"
	StatusTrimming    Status = "trimming"
	StatusTrimmed     Status = "trimmed"
	StatusCleaning    Status = "cleaning"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusDownloading,
	StatusDownloaded,
	StatusConverting,
	StatusConverted,
	StatusTrimming,
	StatusTrimmed,
	StatusCleaning,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusDownloading: {},
	StatusConverting:  {},
	StatusTrimming:    {},
	StatusCleaning:    {},
}

// Item represents a lecture tracked by the pipeline.
type Item struct {
	ID             int64
	VideoID        string
	Title          string
	Status         Status
	RawAudioPath   string
	AudioPath      string
	FinalAudioPath string
	SubtitlePath   string
	TranscriptPath string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (i Item) IsProcessing() bool {
	return IsProcessingStatus(i.Status)
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
}

// HealthSummary aggregates queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}

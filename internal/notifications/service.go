package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lectern/internal/config"
)

const userAgent = "Lectern/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyRunStarted(ctx context.Context, lectures int) error
	NotifyRunCompleted(ctx context.Context, processed, failed int, duration time.Duration) error
	NotifyLectureFailed(ctx context.Context, videoID, stage string, cause error) error
	NotifyManifestBuilt(ctx context.Context, entries int, manifestPath string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, lectures int) error {
	data := payload{
		title:   "Lectern - Run Started",
		message: fmt.Sprintf("Processing %d lectures", lectures),
		tags:    []string{"lectern", "run", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	data := payload{
		title:   "Lectern - Run Complete",
		message: fmt.Sprintf("Processed %d lectures (%d failed) in %s", processed, failed, duration.Round(time.Second)),
		tags:    []string{"lectern", "run", "completed"},
	}
	if failed > 0 {
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyLectureFailed(ctx context.Context, videoID, stage string, cause error) error {
	data := payload{
		title:    "Lectern - Lecture Failed",
		message:  fmt.Sprintf("Lecture %s failed during %s: %v", videoID, stage, cause),
		tags:     []string{"lectern", "lecture", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyManifestBuilt(ctx context.Context, entries int, manifestPath string) error {
	data := payload{
		title:   "Lectern - Manifest Built",
		message: fmt.Sprintf("Wrote %d entries to %s", entries, manifestPath),
		tags:    []string{"lectern", "manifest", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, context string) error {
	context = strings.TrimSpace(context)
	message := fmt.Sprintf("Error: %v", err)
	if context != "" {
		message = fmt.Sprintf("Error in %s: %v", context, err)
	}
	data := payload{
		title:    "Lectern - Error",
		message:  message,
		tags:     []string{"lectern", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:   "Lectern - Test",
		message: "Notifications are configured correctly",
		tags:    []string{"lectern", "test"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, int) error                       { return nil }
func (noopService) NotifyRunCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyLectureFailed(context.Context, string, string, error) error  { return nil }
func (noopService) NotifyManifestBuilt(context.Context, int, string) error            { return nil }
func (noopService) NotifyError(context.Context, error, string) error                  { return nil }
func (noopService) TestNotification(context.Context) error                            { return nil }

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"lectern/internal/config"
	"lectern/internal/notifications"
	"lectern/internal/queue"
)

// ErrAlreadyRunning indicates another lectern process holds the run lock.
var ErrAlreadyRunning = errors.New("another lectern run is already in progress")

// Report summarizes a pipeline run.
type Report struct {
	SessionID string
	Started   time.Time
	Duration  time.Duration
	Processed int
	Failed    int
}

// Runner executes the stage sequence over every queued lecture.
type Runner struct {
	cfg      *config.Config
	store    *queue.Store
	stages   []Stage
	logger   *slog.Logger
	notifier notifications.Service
	lockPath string
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithNotifier sets the notification service for run events.
func WithNotifier(notifier notifications.Service) RunnerOption {
	return func(r *Runner) {
		if notifier != nil {
			r.notifier = notifier
		}
	}
}

// NewRunner constructs a pipeline runner.
func NewRunner(cfg *config.Config, store *queue.Store, stages []Stage, opts ...RunnerOption) (*Runner, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("pipeline requires config and store")
	}
	if len(stages) == 0 {
		return nil, errors.New("pipeline requires at least one stage")
	}

	runner := &Runner{
		cfg:      cfg,
		store:    store,
		stages:   stages,
		logger:   slog.Default(),
		notifier: notifications.NewService(cfg),
		lockPath: filepath.Join(cfg.Paths.LogDir, "lectern.lock"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(runner)
		}
	}
	return runner, nil
}

// Run sweeps every stage in order, processing all ready items
// sequentially. Items that fail a stage are marked failed and excluded
// from later stages; the run itself only errors on infrastructure
// failures or cancellation.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	lock := flock.New(r.lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return Report{}, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return Report{}, ErrAlreadyRunning
	}
	defer func() { _ = lock.Unlock() }()

	report := Report{
		SessionID: uuid.NewString(),
		Started:   time.Now(),
	}
	logger := r.logger.With("session_id", report.SessionID)

	// Items stranded in-flight by a crashed run go back to their stage start.
	if reset, err := r.store.ResetStuckProcessing(ctx); err != nil {
		return report, fmt.Errorf("reset stuck items: %w", err)
	} else if reset > 0 {
		logger.Warn("reset interrupted items", "count", reset)
	}

	pending, err := r.store.List(ctx, r.readyStatuses()...)
	if err != nil {
		return report, fmt.Errorf("list queue: %w", err)
	}
	if len(pending) == 0 {
		logger.Info("queue is empty, nothing to do")
		return report, nil
	}

	logger.Info("run started", "lectures", len(pending))
	if err := r.notifier.NotifyRunStarted(ctx, len(pending)); err != nil {
		logger.Warn("failed to send run started notification", "error", err)
	}

	for _, stage := range r.stages {
		if err := r.runStage(ctx, logger, stage, &report); err != nil {
			return report, err
		}
	}

	report.Duration = time.Since(report.Started)
	logger.Info("run complete",
		"processed", report.Processed,
		"failed", report.Failed,
		"duration", report.Duration.Round(time.Millisecond))
	if err := r.notifier.NotifyRunCompleted(ctx, report.Processed, report.Failed, report.Duration); err != nil {
		logger.Warn("failed to send run completed notification", "error", err)
	}
	return report, nil
}

func (r *Runner) runStage(ctx context.Context, logger *slog.Logger, stage Stage, report *Report) error {
	stageLogger := logger.With("stage", stage.Name)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		item, err := r.store.NextForStatuses(ctx, stage.Ready)
		if err != nil {
			return fmt.Errorf("next item for %s: %w", stage.Name, err)
		}
		if item == nil {
			return nil
		}

		item.Status = stage.InFlight
		if err := r.store.Update(ctx, item); err != nil {
			return fmt.Errorf("mark %s in flight: %w", stage.Name, err)
		}

		stageLogger.Info("processing lecture", "video_id", item.VideoID)
		if execErr := stage.Handler.Execute(ctx, item); execErr != nil {
			if errors.Is(execErr, context.Canceled) {
				return execErr
			}
			item.SetFailed(execErr.Error())
			if err := r.store.Update(ctx, item); err != nil {
				return fmt.Errorf("persist failure: %w", err)
			}
			report.Failed++
			stageLogger.Error("lecture failed", "video_id", item.VideoID, "error", execErr)
			if err := r.notifier.NotifyLectureFailed(ctx, item.VideoID, stage.Name, execErr); err != nil {
				stageLogger.Warn("failed to send failure notification", "error", err)
			}
			continue
		}

		item.Status = stage.Done
		item.ErrorMessage = ""
		if err := r.store.Update(ctx, item); err != nil {
			return fmt.Errorf("mark %s done: %w", stage.Name, err)
		}
		if stage.Done == queue.StatusCompleted {
			report.Processed++
		}
	}
}

func (r *Runner) readyStatuses() []queue.Status {
	statuses := make([]queue.Status, 0, len(r.stages))
	for _, stage := range r.stages {
		statuses = append(statuses, stage.Ready)
	}
	return statuses
}

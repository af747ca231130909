package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prfix/prfix/internal/domain"
)

// recentActivities is how many activities are reported per poll.
const recentActivities = 3

// ErrWatchBudget is returned when status fetches keep failing.
var ErrWatchBudget = errors.New("session status unavailable")

// WatchUpdate is reported after every successful status poll.
type WatchUpdate struct {
	Poll       int                  `json:"poll"`
	Status     domain.JobStatus     `json:"status"`
	Activities []domain.JobActivity `json:"activities"`
}

// WatchService polls an external long-running session until it stops.
type WatchService struct {
	tracker     domain.JobTracker
	interval    time.Duration
	maxFailures int
	logger      *slog.Logger
}

func NewWatchService(tracker domain.JobTracker, cfg domain.WatchConfig, logger *slog.Logger) *WatchService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &WatchService{
		tracker:     tracker,
		interval:    interval,
		maxFailures: cfg.MaxFailures,
		logger:      logger,
	}
}

// Watch polls the session every interval until it reaches a terminal state.
// It gives up once more than maxFailures status fetches have failed in total;
// a successful poll does not reset the count.
// Activity fetch failures are ignored.
func (s *WatchService) Watch(ctx context.Context, sessionID string, onUpdate func(WatchUpdate)) (domain.JobStatus, error) {
	failures := 0
	for poll := 1; ; poll++ {
		status, err := s.tracker.Status(ctx, sessionID)
		if err != nil {
			failures++
			s.logger.Warn("fetching session status", "session", sessionID, "attempt", failures, "error", err)
			if failures > s.maxFailures {
				return domain.JobStatus{ID: sessionID}, fmt.Errorf("%w after %d attempts: %w", ErrWatchBudget, failures, err)
			}
		} else {
			if status.State == "" {
				status.State = "IN_PROGRESS"
			}
			update := WatchUpdate{Poll: poll, Status: status}
			if acts, err := s.tracker.Activities(ctx, sessionID); err == nil {
				if len(acts) > recentActivities {
					acts = acts[:recentActivities]
				}
				update.Activities = acts
			} else {
				s.logger.Debug("fetching session activities", "session", sessionID, "error", err)
			}
			if onUpdate != nil {
				onUpdate(update)
			}
			if status.Terminal() {
				return status, nil
			}
		}

		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-time.After(s.interval):
		}
	}
}

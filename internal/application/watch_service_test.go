package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prfix/prfix/internal/application"
	"github.com/prfix/prfix/internal/domain"
)

// scriptedTracker replays states in order; an empty state string means the
// fetch fails.
type scriptedTracker struct {
	states     []string
	activities []domain.JobActivity
	actErr     error
	calls      int
}

func (s *scriptedTracker) Status(_ context.Context, id string) (domain.JobStatus, error) {
	i := min(s.calls, len(s.states)-1)
	s.calls++
	if s.states[i] == "" {
		return domain.JobStatus{}, errors.New("503")
	}
	if s.states[i] == "-" {
		return domain.JobStatus{ID: id}, nil
	}
	return domain.JobStatus{ID: id, State: s.states[i]}, nil
}

func (s *scriptedTracker) Activities(context.Context, string) ([]domain.JobActivity, error) {
	return s.activities, s.actErr
}

func fastWatch(tr domain.JobTracker, maxFailures int) *application.WatchService {
	return application.NewWatchService(tr, domain.WatchConfig{Interval: time.Millisecond, MaxFailures: maxFailures}, nil)
}

func TestWatchService_StopsOnTerminalState(t *testing.T) {
	tr := &scriptedTracker{states: []string{"PENDING", "-", "SUCCEEDED"}}
	var updates []application.WatchUpdate

	status, err := fastWatch(tr, 3).Watch(context.Background(), "s1", func(u application.WatchUpdate) {
		updates = append(updates, u)
	})
	require.NoError(t, err)
	assert.Equal(t, "SUCCEEDED", status.State)
	require.Len(t, updates, 3)
	assert.Equal(t, "IN_PROGRESS", updates[1].Status.State, "missing state reads as in progress")
	assert.Equal(t, 3, updates[2].Poll)
}

func TestWatchService_FailedIsTerminal(t *testing.T) {
	status, err := fastWatch(&scriptedTracker{states: []string{"FAILED"}}, 3).Watch(context.Background(), "s1", nil)
	require.NoError(t, err)
	assert.Equal(t, "FAILED", status.State)
}

func TestWatchService_CapsActivities(t *testing.T) {
	tr := &scriptedTracker{
		states: []string{"ENDED"},
		activities: []domain.JobActivity{
			{Type: "a"}, {Type: "b"}, {Type: "c"}, {Type: "d"},
		},
	}
	var got application.WatchUpdate
	_, err := fastWatch(tr, 3).Watch(context.Background(), "s1", func(u application.WatchUpdate) { got = u })
	require.NoError(t, err)
	require.Len(t, got.Activities, 3)
	assert.Equal(t, "a", got.Activities[0].Type)
}

func TestWatchService_IgnoresActivityErrors(t *testing.T) {
	tr := &scriptedTracker{states: []string{"SUCCEEDED"}, actErr: errors.New("boom")}
	var got application.WatchUpdate
	_, err := fastWatch(tr, 3).Watch(context.Background(), "s1", func(u application.WatchUpdate) { got = u })
	require.NoError(t, err)
	assert.Empty(t, got.Activities)
}

func TestWatchService_GivesUpAfterFailureBudget(t *testing.T) {
	tr := &scriptedTracker{states: []string{""}}
	_, err := fastWatch(tr, 3).Watch(context.Background(), "s1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, application.ErrWatchBudget)
	assert.Equal(t, 4, tr.calls)
}

func TestWatchService_RecoversWithinBudget(t *testing.T) {
	tr := &scriptedTracker{states: []string{"", "", "RUNNING", "", "SUCCEEDED"}}
	status, err := fastWatch(tr, 3).Watch(context.Background(), "s1", nil)
	require.NoError(t, err)
	assert.Equal(t, "SUCCEEDED", status.State)
}

func TestWatchService_FailureCountIsCumulative(t *testing.T) {
	tr := &scriptedTracker{states: []string{"", "", "RUNNING", "", "", "SUCCEEDED"}}
	status, err := fastWatch(tr, 3).Watch(context.Background(), "s1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, application.ErrWatchBudget)
	assert.Empty(t, status.State)
}

func TestWatchService_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tr := &scriptedTracker{states: []string{"RUNNING"}}
	svc := application.NewWatchService(tr, domain.WatchConfig{Interval: time.Hour, MaxFailures: 3}, nil)

	_, err := svc.Watch(ctx, "s1", func(application.WatchUpdate) { cancel() })
	assert.ErrorIs(t, err, context.Canceled)
}

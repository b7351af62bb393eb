package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	calls     atomic.Int32
	cancelled atomic.Bool
	block     bool
	started   chan struct{}
}

func (f *fakeRefresher) RefreshAll(ctx context.Context) error {
	f.calls.Add(1)
	if f.started != nil {
		close(f.started)
		f.started = nil
	}
	if f.block {
		<-ctx.Done()
		f.cancelled.Store(true)
		return ctx.Err()
	}
	return nil
}

func (f *fakeRefresher) RefreshFeeds(context.Context, []int64) error { return nil }
func (f *fakeRefresher) RefreshFeed(context.Context, int64) error    { return nil }
func (f *fakeRefresher) RefreshForUser(context.Context, int64) error { return nil }
func (f *fakeRefresher) IsRefreshing() bool                          { return false }

type fakeIcons struct {
	backfills atomic.Int32
}

func (f *fakeIcons) DiscoverFavicon(context.Context, string) (string, error) { return "", nil }
func (f *fakeIcons) BackfillIcons(context.Context) error {
	f.backfills.Add(1)
	return nil
}

func TestScheduler_RunsImmediately(t *testing.T) {
	refresher := &fakeRefresher{}
	icons := &fakeIcons{}
	s, err := New(refresher, icons, "@every 1h", time.Minute)
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return icons.backfills.Load() == 1 }, time.Second, 10*time.Millisecond)
	s.Stop()

	require.Equal(t, int32(1), refresher.calls.Load())
}

func TestScheduler_StopCancelsRunningRefresh(t *testing.T) {
	started := make(chan struct{})
	refresher := &fakeRefresher{block: true, started: started}
	s, err := New(refresher, nil, "@every 1h", time.Hour)
	require.NoError(t, err)

	s.Start()
	<-started
	s.Stop()

	require.True(t, refresher.cancelled.Load())
}

func TestScheduler_TimeoutBoundsRun(t *testing.T) {
	started := make(chan struct{})
	refresher := &fakeRefresher{block: true, started: started}
	s, err := New(refresher, nil, "@every 1h", 20*time.Millisecond)
	require.NoError(t, err)

	s.Start()
	<-started
	require.Eventually(t, refresher.cancelled.Load, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	_, err := New(&fakeRefresher{}, nil, "every now and then", time.Minute)
	require.Error(t, err)
}

package livefeed_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/pastoralhub/internal/app/system/livefeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// source is a mutable in-memory collection.
type source struct {
	mu    sync.Mutex
	items []string
	loads int
}

func (s *source) set(items ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]string(nil), items...)
}

func (s *source) load(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return append([]string(nil), s.items...), nil
}

func newFeed(src *source, poll time.Duration) *livefeed.Feed[string] {
	return livefeed.New[string]("test", nil, src.load, poll, zap.NewNop())
}

func TestCurrent_BeforeLoad(t *testing.T) {
	f := newFeed(&source{}, time.Second)
	s := f.Current()
	assert.False(t, s.Loaded())
	assert.Empty(t, s.Items)
}

func TestRefresh_VersionsOnlyOnChange(t *testing.T) {
	src := &source{}
	src.set("a")
	f := newFeed(src, time.Second)
	ctx := context.Background()

	require.NoError(t, f.Refresh(ctx))
	assert.Equal(t, uint64(1), f.Current().Version)

	require.NoError(t, f.Refresh(ctx))
	assert.Equal(t, uint64(1), f.Current().Version, "unchanged data must not bump the version")

	src.set("a", "b")
	require.NoError(t, f.Refresh(ctx))
	assert.Equal(t, uint64(2), f.Current().Version)
	assert.Equal(t, []string{"a", "b"}, f.Current().Items)
}

func TestSnapshot_LoadsOnce(t *testing.T) {
	src := &source{}
	src.set("x")
	f := newFeed(src, time.Second)

	s, err := f.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, s.Items)

	_, _ = f.Snapshot(context.Background())
	assert.Equal(t, 1, src.loads)
}

func TestSubscribe_LatestWins(t *testing.T) {
	src := &source{}
	f := newFeed(src, time.Second)
	ctx := context.Background()

	ch, cancel := f.Subscribe()
	defer cancel()

	for _, v := range []string{"one", "two", "three"} {
		src.set(v)
		require.NoError(t, f.Refresh(ctx))
	}

	// A consumer that was not reading sees only the newest snapshot.
	got := <-ch
	assert.Equal(t, []string{"three"}, got.Items)
	assert.Equal(t, uint64(3), got.Version)

	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra snapshot: %+v", extra)
	default:
	}
}

func TestSubscribe_ReceivesCurrentImmediately(t *testing.T) {
	src := &source{}
	src.set("seed")
	f := newFeed(src, time.Second)
	require.NoError(t, f.Refresh(context.Background()))

	ch, cancel := f.Subscribe()
	defer cancel()

	select {
	case s := <-ch:
		assert.Equal(t, []string{"seed"}, s.Items)
	case <-time.After(time.Second):
		t.Fatal("expected the current snapshot on subscribe")
	}
}

func TestSubscribe_CancelStopsDelivery(t *testing.T) {
	src := &source{}
	f := newFeed(src, time.Second)

	ch, cancel := f.Subscribe()
	assert.Equal(t, 1, f.Subscribers())
	cancel()
	cancel()
	assert.Equal(t, 0, f.Subscribers())

	src.set("after")
	require.NoError(t, f.Refresh(context.Background()))

	_, open := <-ch
	assert.False(t, open, "channel must be closed after cancel")
}

func TestRun_PollsWithoutChangeStreams(t *testing.T) {
	src := &source{}
	src.set("first")
	f := newFeed(src, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		f.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return f.Current().Loaded() }, time.Second, 5*time.Millisecond)

	src.set("second")
	require.Eventually(t, func() bool {
		items := f.Current().Items
		return len(items) == 1 && items[0] == "second"
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

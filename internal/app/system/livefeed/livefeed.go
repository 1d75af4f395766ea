// Package livefeed keeps an in-memory, always-current snapshot of one
// collection and pushes every new snapshot to subscribers.
//
// A Feed loads the whole collection, then follows a MongoDB change stream
// and reloads after each change. Deployments without change streams
// (standalone servers) fall back to polling. Readers never block: Current
// returns the latest complete snapshot, and each subscriber channel holds at
// most one pending snapshot, so a slow consumer only skips intermediate
// versions and never sees a partial one.
package livefeed

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Snapshot is one complete, immutable view of a collection.
// Version starts at 1 for the first load and increases on every change.
type Snapshot[T any] struct {
	Items   []T       `json:"items"`
	Version uint64    `json:"version"`
	At      time.Time `json:"at"`
}

// Loaded reports whether the snapshot came from a completed load.
func (s Snapshot[T]) Loaded() bool { return s.Version > 0 }

// Loader reads the full collection.
type Loader[T any] func(ctx context.Context) ([]T, error)

var errNoChangeStream = errors.New("change streams unavailable")

// Feed follows one collection.
type Feed[T any] struct {
	name string
	coll *mongo.Collection
	load Loader[T]
	poll time.Duration
	log  *zap.Logger

	current atomic.Pointer[Snapshot[T]]

	loadMu sync.Mutex // serializes loads so versions stay ordered

	mu      sync.Mutex // guards subs and nextSub
	subs    map[uint64]chan Snapshot[T]
	nextSub uint64
}

// New builds a feed. coll may be nil, in which case the feed only polls.
func New[T any](name string, coll *mongo.Collection, load Loader[T], poll time.Duration, log *zap.Logger) *Feed[T] {
	if poll <= 0 {
		poll = 5 * time.Second
	}
	return &Feed[T]{
		name: name,
		coll: coll,
		load: load,
		poll: poll,
		log:  log.With(zap.String("feed", name)),
		subs: make(map[uint64]chan Snapshot[T]),
	}
}

func (f *Feed[T]) Name() string { return f.name }

// Current returns the latest snapshot without blocking. Before the first
// load it returns an empty snapshot with Version 0.
func (f *Feed[T]) Current() Snapshot[T] {
	if s := f.current.Load(); s != nil {
		return *s
	}
	return Snapshot[T]{Items: []T{}}
}

// Snapshot returns the current snapshot, loading it first if the feed has
// never loaded.
func (f *Feed[T]) Snapshot(ctx context.Context) (Snapshot[T], error) {
	if s := f.current.Load(); s != nil {
		return *s, nil
	}
	if err := f.Refresh(ctx); err != nil {
		return Snapshot[T]{Items: []T{}}, err
	}
	return f.Current(), nil
}

// Refresh reloads the collection and publishes the result if it differs
// from the current snapshot. Writers call it after local mutations so their
// next read reflects the write.
func (f *Feed[T]) Refresh(ctx context.Context) error {
	f.loadMu.Lock()
	defer f.loadMu.Unlock()

	items, err := f.load(ctx)
	if err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}

	prev := f.current.Load()
	if prev != nil && reflect.DeepEqual(prev.Items, items) {
		return nil
	}
	next := &Snapshot[T]{Items: items, Version: 1, At: time.Now().UTC()}
	if prev != nil {
		next.Version = prev.Version + 1
	}
	f.current.Store(next)
	f.publish(*next)
	return nil
}

func (f *Feed[T]) refreshLogged(ctx context.Context) {
	if err := f.Refresh(ctx); err != nil && ctx.Err() == nil {
		f.log.Warn("feed reload failed", zap.Error(err))
	}
}

// publish hands s to every subscriber, replacing any snapshot the
// subscriber has not consumed yet.
func (f *Feed[T]) publish(s Snapshot[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}

// Subscribe registers a consumer. The channel immediately holds the current
// snapshot when one exists. The returned cancel stops delivery and closes
// the channel; it is safe to call more than once.
func (f *Feed[T]) Subscribe() (<-chan Snapshot[T], func()) {
	ch := make(chan Snapshot[T], 1)

	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch
	if s := f.current.Load(); s != nil {
		ch <- *s
	}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			close(ch)
			f.mu.Unlock()
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (f *Feed[T]) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Run keeps the snapshot current until ctx is done.
func (f *Feed[T]) Run(ctx context.Context) {
	f.refreshLogged(ctx)

	for {
		err := f.watch(ctx)
		if ctx.Err() != nil {
			return
		}
		if changeStreamUnsupported(err) {
			f.log.Info("change streams unavailable; polling", zap.Duration("interval", f.poll))
			f.pollLoop(ctx)
			return
		}
		f.log.Warn("change stream ended; reopening", zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(f.poll):
		}
	}
}

func (f *Feed[T]) watch(ctx context.Context) error {
	if f.coll == nil {
		return errNoChangeStream
	}
	cs, err := f.coll.Watch(ctx, mongo.Pipeline{}, options.ChangeStream().SetMaxAwaitTime(f.poll))
	if err != nil {
		return err
	}
	defer cs.Close(context.Background())

	// Changes made between the initial load and opening the stream.
	f.refreshLogged(ctx)

	for cs.Next(ctx) {
		// Coalesce a burst of events into one reload.
		for cs.RemainingBatchLength() > 0 {
			if !cs.Next(ctx) {
				break
			}
		}
		f.refreshLogged(ctx)
	}
	return cs.Err()
}

func (f *Feed[T]) pollLoop(ctx context.Context) {
	t := time.NewTicker(f.poll)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			f.refreshLogged(ctx)
		}
	}
}

// changeStreamUnsupported matches the server errors returned when
// $changeStream is not available (standalone server, old version).
func changeStreamUnsupported(err error) bool {
	if errors.Is(err, errNoChangeStream) {
		return true
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 40573, 40324, 115:
			return true
		}
	}
	return false
}

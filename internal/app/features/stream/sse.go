// internal/app/features/stream/sse.go
package stream

import (
	"errors"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/system/livefeed"
	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/sse"
	"go.uber.org/zap"
)

const eventSnapshot = "snapshot"

func (h *Handler) ServeCommunities(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.Dir.CommunitiesFeed, nil)
}

// ServeMembers streams Active members only, like the member list.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.Dir.MembersFeed, models.Member.Listed)
}

func (h *Handler) ServeTeams(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.Dir.TeamsFeed, nil)
}

func (h *Handler) ServeTrainings(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.Dir.TrainingsFeed, nil)
}

// ServeUsers streams Active profiles, like the default user list.
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.Dir.UsersFeed, activeUser)
}

func activeUser(u models.User) bool { return u.Status == models.StatusActive }

// serve joins the client to the feed's channel and hands it the current
// snapshot; later snapshots arrive through the feed's pump. keep filters
// items; nil keeps all.
func serve[T any](h *Handler, w http.ResponseWriter, r *http.Request, feed *livefeed.Feed[T], keep func(T) bool) {
	// Make sure the first event carries data even if nothing changed yet.
	loadCtx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "stream initial load")
	loaded, err := feed.Snapshot(loadCtx)
	cancel()
	if err != nil {
		h.ErrLog.LogServerError(w, r, "stream initial load failed", err, "could not load "+feed.Name())
		return
	}

	if err := startPump(h, feed, keep); err != nil {
		uierrors.RenderError(w, http.StatusServiceUnavailable, "live updates are shutting down")
		return
	}

	h.Broker.HandleRequest(w, r, func(c *sse.Client) {
		c.Subscribe(feed.Name())
		cur := feed.Current()
		if cur.Version < loaded.Version {
			cur = loaded
		}
		ev, err := snapshotEvent(filter(cur, keep))
		if err != nil {
			h.Log.Warn("stream snapshot encode failed", zap.String("feed", feed.Name()), zap.Error(err))
			return
		}
		c.Send(ev)
	})
}

var errClosed = errors.New("stream handler closed")

// startPump begins broadcasting feed's snapshots to its channel, once per
// feed. The snapshot current at start is skipped: every client receives it
// when it joins.
func startPump[T any](h *Handler, feed *livefeed.Feed[T], keep func(T) bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errClosed
	}
	if _, ok := h.pumps[feed.Name()]; ok {
		return nil
	}

	last := feed.Current().Version
	snaps, cancel := feed.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		ch := h.Broker.GetChannel(feed.Name())
		for s := range snaps {
			if s.Version <= last {
				continue
			}
			last = s.Version
			ev, err := snapshotEvent(filter(s, keep))
			if err != nil {
				h.Log.Warn("stream snapshot encode failed", zap.String("feed", feed.Name()), zap.Error(err))
				continue
			}
			ch.Broadcast(ev)
		}
	}()

	h.pumps[feed.Name()] = func() {
		cancel()
		<-done
	}
	return nil
}

func filter[T any](s livefeed.Snapshot[T], keep func(T) bool) livefeed.Snapshot[T] {
	if keep == nil {
		return s
	}
	items := make([]T, 0, len(s.Items))
	for _, it := range s.Items {
		if keep(it) {
			items = append(items, it)
		}
	}
	s.Items = items
	return s
}

func snapshotEvent[T any](s livefeed.Snapshot[T]) (*sse.Event, error) {
	ev, err := sse.NewJSONEvent(eventSnapshot, s)
	if err != nil {
		return nil, err
	}
	return ev.WithID(strconv.FormatUint(s.Version, 10)), nil
}

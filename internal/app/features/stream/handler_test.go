package stream_test

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/pastoralhub/internal/app/directory"
	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/features/stream"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/dalemusser/pastoralhub/internal/testutil"
	"go.uber.org/zap"
)

type testEnv struct {
	srv *httptest.Server
	h   *stream.Handler
	dir *directory.Directory
	fx  *testutil.Fixtures
}

func newServer(t *testing.T, u models.User) testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	dir := directory.New(db, time.Second, logger)
	h := stream.NewHandler(dir, uierrors.NewErrorLogger(logger), logger)
	router := stream.Routes(h)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.ServeHTTP(w, testutil.WithUser(r, u))
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(h.Close)
	return testEnv{srv: srv, h: h, dir: dir, fx: testutil.NewFixtures(t, db)}
}

type memberSnapshot struct {
	Items   []models.Member `json:"items"`
	Version uint64          `json:"version"`
}

// nextSnapshot reads lines until one complete snapshot event was seen.
func nextSnapshot(t *testing.T, rd *bufio.Reader) memberSnapshot {
	t.Helper()
	var event, data string
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && event == "snapshot":
			var s memberSnapshot
			if err := json.Unmarshal([]byte(data), &s); err != nil {
				t.Fatalf("decode snapshot: %v", err)
			}
			return s
		}
	}
}

func TestStreamMembers_SnapshotThenUpdate(t *testing.T) {
	env := newServer(t, testutil.RegularUser())
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fx.CreateCommunity(ctx, "matriz", "Matriz")
	env.fx.CreateMember(ctx, "Ana", "matriz")
	env.fx.CreatePendingMember(ctx, "Oculto", "matriz")

	resp, err := http.Get(env.srv.URL + "/members")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	rd := bufio.NewReader(resp.Body)

	first := nextSnapshot(t, rd)
	if len(first.Items) != 1 || first.Items[0].Name != "Ana" {
		t.Fatalf("first snapshot = %+v, want only the active member", first.Items)
	}

	env.fx.CreateMember(ctx, "Bruno", "matriz")
	env.dir.Touched(ctx, env.dir.MembersFeed)

	second := nextSnapshot(t, rd)
	if len(second.Items) != 2 || second.Version <= first.Version {
		t.Errorf("second snapshot = v%d %+v", second.Version, second.Items)
	}
}

func TestStream_GatedByView(t *testing.T) {
	env := newServer(t, testutil.RegularUser(models.ModuleEducation))

	for _, path := range []string{"/teams", "/sound_trainings", "/users"} {
		resp, err := http.Get(env.srv.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("%s status = %d, want 403", path, resp.StatusCode)
		}
	}
}

func TestStream_TwoClientsShareOneChannel(t *testing.T) {
	env := newServer(t, testutil.RegularUser())
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fx.CreateCommunity(ctx, "matriz", "Matriz")
	env.fx.CreateMember(ctx, "Ana", "matriz")

	var readers []*bufio.Reader
	for i := 0; i < 2; i++ {
		resp, err := http.Get(env.srv.URL + "/members")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		defer resp.Body.Close()
		rd := bufio.NewReader(resp.Body)
		nextSnapshot(t, rd)
		readers = append(readers, rd)
	}

	env.fx.CreateMember(ctx, "Bruno", "matriz")
	env.dir.Touched(ctx, env.dir.MembersFeed)

	for i, rd := range readers {
		if s := nextSnapshot(t, rd); len(s.Items) != 2 {
			t.Errorf("client %d got %d members, want 2", i, len(s.Items))
		}
	}
	if ch := env.h.Broker.Channel(env.dir.MembersFeed.Name()); ch == nil || ch.Size() != 2 {
		t.Errorf("members channel should hold both clients")
	}
}

func TestHandlerClose_EndsStreams(t *testing.T) {
	env := newServer(t, testutil.RegularUser())
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fx.CreateCommunity(ctx, "matriz", "Matriz")

	resp, err := http.Get(env.srv.URL + "/communities")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	rd := bufio.NewReader(resp.Body)
	nextSnapshot(t, rd)

	env.h.Close()

	if _, err := io.ReadAll(rd); err != nil {
		t.Fatalf("stream should end cleanly after Close: %v", err)
	}

	resp, err = http.Get(env.srv.URL + "/communities")
	if err != nil {
		t.Fatalf("get after close: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status after close = %d, want 503", resp.StatusCode)
	}
}

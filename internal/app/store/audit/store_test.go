package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/pastoralhub/internal/app/store/audit"
	"github.com/dalemusser/pastoralhub/internal/testutil"
)

func TestStore_LogAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	events := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, ActorID: "u1", Success: true},
		{Category: audit.CategoryAdmin, EventType: audit.EventDeletionRequested, ActorID: "u1", EntityKind: "member", EntityID: "m1", Success: true},
		{Category: audit.CategoryAdmin, EventType: audit.EventDeleted, ActorID: "u2", EntityKind: "member", EntityID: "m1", Success: true},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	got, err := store.Query(ctx, audit.QueryFilter{EntityID: "m1"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 events for m1, got %d", len(got))
	}

	n, err := store.CountByFilter(ctx, audit.QueryFilter{ActorID: "u1"})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 events by u1, got %d", n)
	}
}

func TestStore_PurgeBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	old := time.Now().UTC().Add(-100 * 24 * time.Hour)
	if err := store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLogout, Timestamp: old}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLogout}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	removed, err := store.PurgeBefore(ctx, time.Now().UTC().Add(-90*24*time.Hour))
	if err != nil {
		t.Fatalf("PurgeBefore failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 purged event, got %d", removed)
	}
}

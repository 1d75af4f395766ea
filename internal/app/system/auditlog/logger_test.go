package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/pastoralhub/internal/app/store/audit"
	"github.com/dalemusser/pastoralhub/internal/app/system/auditlog"
	"github.com/dalemusser/pastoralhub/internal/testutil"
	"go.uber.org/zap"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, "uid", "a@b.org")
	logger.Deleted(ctx, req, "uid", "member", "m1")
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "off", Admin: "off"})
	req := httptest.NewRequest("POST", "/session/login", nil)
	logger.LoginSuccess(ctx, req, "u1", "a@b.org")
	logger.DeletionRequested(ctx, req, "u1", "member", "m1")

	n, err := store.CountByFilter(ctx, audit.QueryFilter{ActorID: "u1"})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no events when config is 'off', got %d", n)
	}
}

func TestLogger_Log_PerCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "log", Admin: "db"})
	req := httptest.NewRequest("POST", "/members/m1/delete", nil)
	logger.LoginSuccess(ctx, req, "u1", "a@b.org")
	logger.Restored(ctx, req, "u1", "member", "m1")

	events, err := store.Query(ctx, audit.QueryFilter{ActorID: "u1"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected only the admin event stored, got %d", len(events))
	}
	if events[0].EventType != audit.EventRestored || events[0].EntityID != "m1" {
		t.Errorf("unexpected event stored: %+v", events[0])
	}
}

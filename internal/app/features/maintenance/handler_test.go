package maintenance_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/pastoralhub/internal/app/directory"
	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/features/maintenance"
	"github.com/dalemusser/pastoralhub/internal/app/features/shared/deletion"
	"github.com/dalemusser/pastoralhub/internal/app/policy/deletionpolicy"
	"github.com/dalemusser/pastoralhub/internal/app/system/confirm"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/dalemusser/pastoralhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*maintenance.Handler, *directory.Directory, *confirm.Queue, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	dir := directory.New(db, time.Second, logger)
	queue := confirm.NewQueue(confirm.NewMemoryStore(), time.Minute)
	h := maintenance.NewHandler(dir, deletion.NewRequester(queue, errLog, logger), errLog, nil, logger)
	return h, dir, queue, testutil.NewFixtures(t, db)
}

type queueBody struct {
	Users   []struct{ ID string } `json:"users"`
	Members []struct{ ID string } `json:"members"`
	Total   int                   `json:"total"`
}

func TestServeQueue_ListsOnlyPending(t *testing.T) {
	h, _, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateCommunity(ctx, "matriz", "Matriz")
	fx.CreateMember(ctx, "Ativa", "matriz")
	pm := fx.CreatePendingMember(ctx, "Pendente", "matriz")
	fx.CreateUser(ctx, "u-active", "a@paroquia.org", false, false)
	pu := fx.CreatePendingUser(ctx, "u-pending", "p@paroquia.org")

	rec := testutil.NewRecorder()
	h.ServeQueue(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/maintenance"), testutil.MasterUser()))

	rec.AssertStatus(t, http.StatusOK)
	var body queueBody
	rec.DecodeJSON(t, &body)
	if body.Total != 2 || len(body.Users) != 1 || len(body.Members) != 1 {
		t.Fatalf("queue = %+v", body)
	}
	if body.Users[0].ID != pu.ID || body.Members[0].ID != pm.ID {
		t.Errorf("queue = %+v", body)
	}
}

func TestHandleRestore_Idempotent(t *testing.T) {
	h, dir, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateCommunity(ctx, "matriz", "Matriz")
	m := fx.CreatePendingMember(ctx, "Pendente", "matriz")

	for i := 0; i < 2; i++ {
		req := testutil.NewRequest(http.MethodPost, "/maintenance/member/"+m.ID+"/restore")
		req = testutil.WithChiURLParam(req, "kind", "member")
		req = testutil.WithChiURLParam(req, "id", m.ID)
		rec := testutil.NewRecorder()
		h.HandleRestore(rec, testutil.WithUser(req, testutil.MasterUser()))
		rec.AssertStatus(t, http.StatusOK)
	}

	got, err := dir.Members.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != models.StatusActive {
		t.Errorf("status = %q", got.Status)
	}
}

func TestHandleRestore_UnknownKind(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	req := testutil.NewRequest(http.MethodPost, "/maintenance/team/x/restore")
	req = testutil.WithChiURLParam(req, "kind", "team")
	req = testutil.WithChiURLParam(req, "id", "x")
	rec := testutil.NewRecorder()
	h.HandleRestore(rec, testutil.WithUser(req, testutil.MasterUser()))

	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleApprove_ParksHardDelete(t *testing.T) {
	h, _, queue, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := fx.CreatePendingUser(ctx, "u-pending", "p@paroquia.org")
	master := testutil.MasterUser()

	req := testutil.NewRequest(http.MethodPost, "/maintenance/user/"+u.ID+"/approve")
	req = testutil.WithChiURLParam(req, "kind", "user")
	req = testutil.WithChiURLParam(req, "id", u.ID)
	rec := testutil.NewRecorder()
	h.HandleApprove(rec, testutil.WithUser(req, master))

	rec.AssertStatus(t, http.StatusAccepted)
	a, err := queue.Peek(ctx, master.ID)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if a.Tier != deletionpolicy.HardDelete || a.Kind != deletionpolicy.KindUser || a.TargetID != u.ID {
		t.Errorf("parked action = %+v", a)
	}
}

func TestHandleApprove_ActiveEntryConflicts(t *testing.T) {
	h, _, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateCommunity(ctx, "matriz", "Matriz")
	m := fx.CreateMember(ctx, "Ativa", "matriz")

	req := testutil.NewRequest(http.MethodPost, "/maintenance/member/"+m.ID+"/approve")
	req = testutil.WithChiURLParam(req, "kind", "member")
	req = testutil.WithChiURLParam(req, "id", m.ID)
	rec := testutil.NewRecorder()
	h.HandleApprove(rec, testutil.WithUser(req, testutil.MasterUser()))

	rec.AssertStatus(t, http.StatusConflict)
}

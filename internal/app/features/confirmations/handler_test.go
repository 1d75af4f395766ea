package confirmations_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/pastoralhub/internal/app/features/confirmations"
	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/policy/deletionpolicy"
	"github.com/dalemusser/pastoralhub/internal/app/system/confirm"
	"github.com/dalemusser/pastoralhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type recorder struct {
	ran []confirm.Action
	err error
}

func (r *recorder) exec(_ context.Context, a confirm.Action) error {
	r.ran = append(r.ran, a)
	return r.err
}

func newTestHandler(t *testing.T) (*confirmations.Handler, *confirm.Queue, *recorder) {
	t.Helper()
	logger := zap.NewNop()
	q := confirm.NewQueue(confirm.NewMemoryStore(), time.Minute)
	rec := &recorder{}
	d := confirm.NewDispatcher()
	d.Register(deletionpolicy.KindTeam, rec.exec)
	return confirmations.NewHandler(q, d, uierrors.NewErrorLogger(logger), logger), q, rec
}

func park(t *testing.T, q *confirm.Queue, actor string) confirm.Action {
	t.Helper()
	a, err := q.Offer(context.Background(), actor, deletionpolicy.KindTeam, "t1", deletionpolicy.HardDelete, "Delete?")
	require.NoError(t, err)
	return a
}

func confirmReq(token string) *http.Request {
	req := testutil.NewRequest(http.MethodPost, "/confirm/"+token)
	return testutil.WithUser(testutil.WithChiURLParam(req, "token", token), testutil.AdminUser())
}

func TestHandleConfirm_RunsOnce(t *testing.T) {
	h, q, ex := newTestHandler(t)
	a := park(t, q, testutil.AdminUser().ID)

	rec := testutil.NewRecorder()
	h.HandleConfirm(rec, confirmReq(a.Token))
	rec.AssertStatus(t, http.StatusOK)
	require.Len(t, ex.ran, 1)
	assert.Equal(t, "t1", ex.ran[0].TargetID)

	rec = testutil.NewRecorder()
	h.HandleConfirm(rec, confirmReq(a.Token))
	rec.AssertStatus(t, http.StatusNotFound)
	assert.Len(t, ex.ran, 1)
}

func TestHandleConfirm_WrongTokenKeepsPending(t *testing.T) {
	h, q, ex := newTestHandler(t)
	a := park(t, q, testutil.AdminUser().ID)

	rec := testutil.NewRecorder()
	h.HandleConfirm(rec, confirmReq("not-the-token"))
	rec.AssertStatus(t, http.StatusConflict)
	assert.Empty(t, ex.ran)

	still, err := q.Peek(context.Background(), testutil.AdminUser().ID)
	require.NoError(t, err)
	assert.Equal(t, a.Token, still.Token)
}

func TestHandleConfirm_OtherActorsTokenIsNotUsable(t *testing.T) {
	h, q, ex := newTestHandler(t)
	a := park(t, q, "someone-else")

	rec := testutil.NewRecorder()
	h.HandleConfirm(rec, confirmReq(a.Token))
	rec.AssertStatus(t, http.StatusNotFound)
	assert.Empty(t, ex.ran)
}

func TestHandleConfirm_DemotedActorIsForbidden(t *testing.T) {
	h, q, ex := newTestHandler(t)
	regular := testutil.RegularUser()
	// Parked while the actor still held admin rights.
	a := park(t, q, regular.ID)

	req := testutil.NewRequest(http.MethodPost, "/confirm/"+a.Token)
	req = testutil.WithUser(testutil.WithChiURLParam(req, "token", a.Token), regular)

	rec := testutil.NewRecorder()
	h.HandleConfirm(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)
	assert.Empty(t, ex.ran)
}

func TestHandleConfirm_TierChangedIsConflict(t *testing.T) {
	h, q, ex := newTestHandler(t)
	admin := testutil.AdminUser()
	// A hard user delete is only granted to the master; the actor is now a plain admin.
	a, err := q.Offer(context.Background(), admin.ID, deletionpolicy.KindUser, "u1", deletionpolicy.HardDelete, "Delete?")
	require.NoError(t, err)

	rec := testutil.NewRecorder()
	h.HandleConfirm(rec, confirmReq(a.Token))
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "permissions changed")
	assert.Empty(t, ex.ran)
}

func TestHandleConfirm_ExecutorErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"refused", confirm.Refuse(deletionpolicy.ReasonCommunityHasUsers), http.StatusConflict},
		{"gone", mongo.ErrNoDocuments, http.StatusNotFound},
		{"failure", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, q, ex := newTestHandler(t)
			ex.err = tt.err
			a := park(t, q, testutil.AdminUser().ID)

			rec := testutil.NewRecorder()
			h.HandleConfirm(rec, confirmReq(a.Token))
			rec.AssertStatus(t, tt.status)
		})
	}
}

func TestServePendingAndCancel(t *testing.T) {
	h, q, _ := newTestHandler(t)
	admin := testutil.AdminUser()

	rec := testutil.NewRecorder()
	h.ServePending(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/confirm"), admin))
	rec.AssertStatus(t, http.StatusNotFound)

	park(t, q, admin.ID)
	rec = testutil.NewRecorder()
	h.ServePending(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/confirm"), admin))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Delete?")

	rec = testutil.NewRecorder()
	h.HandleCancel(rec, testutil.WithUser(testutil.NewRequest(http.MethodDelete, "/confirm"), admin))
	rec.AssertStatus(t, http.StatusNoContent)

	_, err := q.Peek(context.Background(), admin.ID)
	assert.ErrorIs(t, err, confirm.ErrNoPending)
}

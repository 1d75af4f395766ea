package soundtrainings_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/pastoralhub/internal/app/directory"
	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/features/shared/deletion"
	"github.com/dalemusser/pastoralhub/internal/app/features/soundtrainings"
	"github.com/dalemusser/pastoralhub/internal/app/policy/deletionpolicy"
	"github.com/dalemusser/pastoralhub/internal/app/system/confirm"
	"github.com/dalemusser/pastoralhub/internal/testutil"
	"go.uber.org/zap"
)

type trainingBody struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Participants []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"participants"`
}

func newTestHandler(t *testing.T) (*soundtrainings.Handler, *directory.Directory, *confirm.Queue, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	dir := directory.New(db, time.Second, logger)
	queue := confirm.NewQueue(confirm.NewMemoryStore(), time.Minute)
	h := soundtrainings.NewHandler(dir, deletion.NewRequester(queue, errLog, logger), errLog, nil, logger)
	return h, dir, queue, testutil.NewFixtures(t, db)
}

func TestServeList_NewestFirst(t *testing.T) {
	h, _, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateCommunity(ctx, "matriz", "Matriz")
	ana := fx.CreateMember(ctx, "Ana", "matriz")
	fx.CreateTraining(ctx, "2024-03-10", "matriz", ana.ID, "gone")
	fx.CreateTraining(ctx, "2024-11-02", "matriz")
	fx.CreateTraining(ctx, "2023-12-31", "matriz")

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/sound-trainings"), testutil.RegularUser()))

	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Items []trainingBody `json:"items"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(body.Items))
	}
	want := []string{"2024-11-02", "2024-03-10", "2023-12-31"}
	for i, d := range want {
		if body.Items[i].Date != d {
			t.Errorf("item %d date = %s, want %s", i, body.Items[i].Date, d)
		}
	}
	if p := body.Items[1].Participants; len(p) != 1 || p[0].Name != "Ana" {
		t.Errorf("participants = %+v", p)
	}
}

func TestHandleCreate_Validation(t *testing.T) {
	h, _, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateCommunity(ctx, "matriz", "Matriz")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing date", map[string]any{"community_id": "matriz"}},
		{"bad format", map[string]any{"date": "10/03/2024", "community_id": "matriz"}},
		{"impossible date", map[string]any{"date": "2024-02-30", "community_id": "matriz"}},
		{"unknown community", map[string]any{"date": "2024-02-10", "community_id": "nowhere"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/sound-trainings", tt.body), testutil.RegularUser()))
			rec.AssertStatus(t, http.StatusUnprocessableEntity)
		})
	}
}

func TestHandleCreateAndUpdate(t *testing.T) {
	h, dir, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateCommunity(ctx, "matriz", "Matriz")
	ana := fx.CreateMember(ctx, "Ana", "matriz")

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/sound-trainings", map[string]any{
		"date": "2024-05-01", "community_id": "matriz", "member_ids": []string{ana.ID},
	}), testutil.RegularUser()))
	rec.AssertStatus(t, http.StatusCreated)
	var created trainingBody
	rec.DecodeJSON(t, &created)

	req := testutil.NewJSONRequest(http.MethodPut, "/sound-trainings/"+created.ID, map[string]any{"date": "2024-05-08"})
	req = testutil.WithUser(testutil.WithChiURLParam(req, "id", created.ID), testutil.RegularUser())
	rec = testutil.NewRecorder()
	h.HandleUpdate(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	got, err := dir.Trainings.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Date != "2024-05-08" || got.CommunityID != "matriz" || len(got.MemberIDs) != 1 {
		t.Errorf("merge lost fields: %+v", got)
	}
}

func TestHandleDelete_HardForAnyone(t *testing.T) {
	h, dir, queue, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateCommunity(ctx, "matriz", "Matriz")
	st := fx.CreateTraining(ctx, "2024-05-01", "matriz")
	user := testutil.RegularUser()

	req := testutil.WithUser(testutil.WithChiURLParam(testutil.NewRequest(http.MethodPost, "/sound-trainings/"+st.ID+"/delete"), "id", st.ID), user)
	rec := testutil.NewRecorder()
	h.HandleDelete(rec, req)
	rec.AssertStatus(t, http.StatusAccepted)

	var pending deletion.Pending
	rec.DecodeJSON(t, &pending)
	if pending.Tier != deletionpolicy.HardDelete {
		t.Errorf("tier = %q, want hard", pending.Tier)
	}
	action, err := queue.Take(ctx, user.ID, pending.Token)
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if err := h.Execute(ctx, action); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := dir.Trainings.GetByID(ctx, st.ID); err == nil {
		t.Error("training should be deleted")
	}
}

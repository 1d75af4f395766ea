// internal/app/features/shared/deletion/deletion.go
//
// Package deletion is the request half of the delete workflow shared by
// every entity feature: decide the tier, refuse or park the action for
// confirmation. The confirm feature runs the parked action.
package deletion

import (
	"fmt"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/policy/deletionpolicy"
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/confirm"
	"go.uber.org/zap"
)

// Requester parks delete requests in the confirmation queue.
type Requester struct {
	Queue  *confirm.Queue
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewRequester(q *confirm.Queue, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Requester {
	return &Requester{Queue: q, ErrLog: errLog, Log: logger}
}

// Pending is the 202 body of a delete request.
type Pending struct {
	Token     string              `json:"token"`
	Tier      deletionpolicy.Tier `json:"tier"`
	Message   string              `json:"message"`
	ExpiresAt time.Time           `json:"expires_at"`
}

var kindLabels = map[deletionpolicy.Kind]string{
	deletionpolicy.KindMember:        "member",
	deletionpolicy.KindUser:          "user",
	deletionpolicy.KindTeam:          "team",
	deletionpolicy.KindCommunity:     "community",
	deletionpolicy.KindSoundTraining: "sound training",
}

// Prompt is the human-readable question shown before the action runs.
func Prompt(kind deletionpolicy.Kind, tier deletionpolicy.Tier, label string) string {
	what := fmt.Sprintf("%s %q", kindLabels[kind], label)
	if tier == deletionpolicy.RequestSoftDelete {
		return fmt.Sprintf("Request deletion of %s? It will be hidden until the master approves or restores it.", what)
	}
	if kind == deletionpolicy.KindUser {
		return fmt.Sprintf("Permanently delete the profile of %s? The sign-in account stays with the identity provider but can no longer open the app.", what)
	}
	return fmt.Sprintf("Permanently delete %s? This cannot be undone.", what)
}

// Request decides the tier for the signed-in user and either refuses
// (403, or 409 for the community guard) or parks the action and answers 202
// with the confirmation token and prompt. Nothing is deleted here.
func (q *Requester) Request(w http.ResponseWriter, r *http.Request, kind deletionpolicy.Kind, targetID, label string, target deletionpolicy.Target) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r)
		return
	}

	d := deletionpolicy.Decide(kind, su.Profile, target)
	if !d.Allowed() {
		if d.Reason == deletionpolicy.ReasonCommunityHasUsers {
			uierrors.RenderConflict(w, d.Reason)
			return
		}
		uierrors.RenderForbidden(w, r, d.Reason)
		return
	}

	a, err := q.Queue.Offer(r.Context(), su.ID, kind, targetID, d.Tier, Prompt(kind, d.Tier, label))
	if err != nil {
		q.ErrLog.LogServerError(w, r, "park delete request failed", err, "could not start the deletion; try again")
		return
	}
	q.Log.Debug("delete request parked",
		zap.String("actor_id", su.ID),
		zap.String("kind", string(kind)),
		zap.String("target_id", targetID),
		zap.String("tier", string(d.Tier)))

	uierrors.RenderJSON(w, http.StatusAccepted, Pending{
		Token:     a.Token,
		Tier:      a.Tier,
		Message:   a.Message,
		ExpiresAt: a.ExpiresAt,
	})
}

// internal/app/features/maintenance/queue.go
package maintenance

import (
	"context"
	"errors"
	"net/http"
	"sort"

	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/policy/deletionpolicy"
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// queueItem is one entry awaiting the master's decision.
type queueItem struct {
	Kind        deletionpolicy.Kind `json:"kind"`
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Detail      string              `json:"detail,omitempty"`
	CommunityID string              `json:"community_id"`
}

type queueResponse struct {
	Users   []queueItem `json:"users"`
	Members []queueItem `json:"members"`
	Total   int         `json:"total"`
}

func byName(items []queueItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return text.Fold(items[i].Name) < text.Fold(items[j].Name)
	})
}

// ServeQueue lists pending-deletion users and members from the live feeds.
func (h *Handler) ServeQueue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	users, err := h.Dir.UsersFeed.Snapshot(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "users snapshot failed", err, "could not load the deletion queue")
		return
	}
	members, err := h.Dir.MembersFeed.Snapshot(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "members snapshot failed", err, "could not load the deletion queue")
		return
	}

	resp := queueResponse{Users: []queueItem{}, Members: []queueItem{}}
	for _, u := range users.Items {
		if u.Status.PendingDeletion() {
			resp.Users = append(resp.Users, queueItem{
				Kind: deletionpolicy.KindUser, ID: u.ID, Name: u.Name, Detail: u.Username, CommunityID: u.CommunityID,
			})
		}
	}
	for _, m := range members.Items {
		if m.Status.PendingDeletion() {
			resp.Members = append(resp.Members, queueItem{
				Kind: deletionpolicy.KindMember, ID: m.ID, Name: m.Name, Detail: m.Email, CommunityID: m.CommunityID,
			})
		}
	}
	byName(resp.Users)
	byName(resp.Members)
	resp.Total = len(resp.Users) + len(resp.Members)

	uierrors.RenderJSON(w, http.StatusOK, resp)
}

// kindParam accepts only the kinds that have a pending state.
func kindParam(r *http.Request) (deletionpolicy.Kind, bool) {
	switch k := deletionpolicy.Kind(chi.URLParam(r, "kind")); k {
	case deletionpolicy.KindUser, deletionpolicy.KindMember:
		return k, true
	default:
		return "", false
	}
}

// HandleRestore returns a queued user or member to Active. Idempotent.
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "queue kind")
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var err error
	if kind == deletionpolicy.KindUser {
		err = h.Dir.Users.SetStatus(ctx, id, models.StatusActive)
	} else {
		err = h.Dir.Members.SetStatus(ctx, id, models.StatusActive)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, string(kind))
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "restore failed", err, "could not restore")
		return
	}
	if kind == deletionpolicy.KindUser {
		h.Dir.Touched(ctx, h.Dir.UsersFeed)
	} else {
		h.Dir.Touched(ctx, h.Dir.MembersFeed)
	}
	h.AuditLog.Restored(ctx, r, actorID(r), string(kind), id)

	uierrors.RenderJSON(w, http.StatusOK, map[string]string{"kind": string(kind), "id": id, "status": string(models.StatusActive)})
}

// HandleApprove asks for confirmation of the permanent deletion of a queued
// entry. The confirm endpoint runs it.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "queue kind")
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var (
		label  string
		target deletionpolicy.Target
		status models.Status
		err    error
	)
	if kind == deletionpolicy.KindUser {
		var u models.User
		u, err = h.Dir.Users.GetByID(ctx, id)
		label, status, target.IsMaster = u.Name, u.Status, u.IsMaster
	} else {
		var m models.Member
		m, err = h.Dir.Members.GetByID(ctx, id)
		label, status = m.Name, m.Status
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, string(kind))
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "queue lookup failed", err, "could not load the entry")
		return
	}
	if !status.PendingDeletion() {
		uierrors.RenderConflict(w, "this entry is not awaiting deletion")
		return
	}

	h.Log.Debug("approval requested", zap.String("kind", string(kind)), zap.String("id", id))
	h.Deletions.Request(w, r, kind, id, label, target)
}

func actorID(r *http.Request) string {
	if su, ok := auth.CurrentUser(r); ok {
		return su.ID
	}
	return ""
}

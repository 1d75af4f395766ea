// internal/app/features/users/users.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/policy/deletionpolicy"
	userstore "github.com/dalemusser/pastoralhub/internal/app/store/users"
	"github.com/dalemusser/pastoralhub/internal/app/system/authz"
	"github.com/dalemusser/pastoralhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/pastoralhub/internal/app/system/identity"
	"github.com/dalemusser/pastoralhub/internal/app/system/normalize"
	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type createInput struct {
	Email          string          `json:"email"`
	Password       string          `json:"password"`
	Name           string          `json:"name"`
	CommunityID    string          `json:"community_id"`
	IsAdmin        bool            `json:"is_admin"`
	AllowedModules []models.Module `json:"allowed_modules"`
}

// updateInput carries the only fields an administrator may change.
type updateInput struct {
	Name           *string         `json:"name"`
	CommunityID    *string         `json:"community_id"`
	IsAdmin        *bool           `json:"is_admin"`
	AllowedModules []models.Module `json:"allowed_modules"`
}

type listResponse struct {
	Items   []models.User `json:"items"`
	Total   int           `json:"total"`
	Version uint64        `json:"version"`
}

// ServeList answers the profiles. ?status=pending lists those awaiting
// deletion, ?status=all lists every profile; the default is Active only.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	snap, err := h.Dir.UsersFeed.Snapshot(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "users snapshot failed", err, "could not load users")
		return
	}

	status := strings.ToLower(normalize.QueryParam(r.URL.Query().Get("status")))
	items := make([]models.User, 0, len(snap.Items))
	for _, u := range snap.Items {
		switch status {
		case "all":
		case "pending":
			if !u.Status.PendingDeletion() {
				continue
			}
		default:
			if u.Status != models.StatusActive {
				continue
			}
		}
		items = append(items, u)
	}
	uierrors.RenderJSON(w, http.StatusOK, listResponse{Items: items, Total: len(items), Version: snap.Version})
}

func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Dir.Users.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "user")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "user lookup failed", err, "could not load user")
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, u)
}

func validModules(mods []models.Module) bool {
	for _, m := range mods {
		if !m.Valid() {
			return false
		}
	}
	return true
}

// checkCommunity adds a field error when id does not name a community.
func (h *Handler) checkCommunity(ctx context.Context, id string, bad map[string]string) error {
	ok, err := h.Dir.CommunityExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		bad["community_id"] = "Community does not exist."
	}
	return nil
}

// HandleCreate registers a new identity with the provider and writes its
// profile. The caller's own session is untouched. When the profile write
// fails the fresh identity is removed again so no orphan remains.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if !uierrors.DecodeOr400(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	bad := map[string]string{}
	email := normalize.Email(in.Email)
	name := htmlsanitize.Text(in.Name)
	community := strings.TrimSpace(in.CommunityID)
	if email == "" || !validate.SimpleEmailValid(email) {
		bad["email"] = "Enter a valid email address."
	}
	if err := identity.CheckPassword(in.Password); err != nil {
		bad["password"] = err.Error()
	}
	if name == "" {
		bad["name"] = "Name is required."
	}
	if community == "" {
		bad["community_id"] = "Community is required."
	} else if err := h.checkCommunity(ctx, community, bad); err != nil {
		h.ErrLog.LogServerError(w, r, "community lookup failed", err, "could not create user")
		return
	}
	modules := in.AllowedModules
	if len(modules) == 0 {
		modules = []models.Module{models.AllModules[0]}
	}
	if !validModules(modules) {
		bad["allowed_modules"] = "Unknown module."
	}
	if len(bad) > 0 {
		uierrors.RenderValidation(w, bad)
		return
	}

	id, err := h.Identity.CreateIdentity(ctx, email, in.Password)
	switch {
	case errors.Is(err, identity.ErrEmailAlreadyExists):
		uierrors.RenderConflict(w, identity.ErrEmailAlreadyExists.Error())
		return
	case errors.Is(err, identity.ErrWeakPassword):
		uierrors.RenderValidation(w, map[string]string{"password": err.Error()})
		return
	case err != nil:
		h.ErrLog.Log(w, r, http.StatusBadGateway, "identity creation failed", err, err.Error())
		return
	}

	u, err := h.Dir.Users.Create(ctx, models.User{
		ID:             id.UID,
		Username:       normalize.Username(email),
		Name:           name,
		CommunityID:    community,
		IsAdmin:        in.IsAdmin,
		IsMaster:       false,
		AllowedModules: modules,
		Status:         models.StatusActive,
	})
	if err != nil {
		if derr := h.Identity.DeleteIdentity(context.WithoutCancel(ctx), id.UID); derr != nil {
			h.Log.Error("orphan identity left after profile write failure",
				zap.String("uid", id.UID), zap.Error(derr))
		}
		if errors.Is(err, userstore.ErrDuplicateUser) {
			uierrors.RenderConflict(w, userstore.ErrDuplicateUser.Error())
			return
		}
		h.ErrLog.LogServerError(w, r, "profile write failed", err, "could not create user")
		return
	}
	h.Dir.Touched(ctx, h.Dir.UsersFeed)
	h.AuditLog.UserCreated(ctx, r, actorID(r), u.ID, u.Username)

	uierrors.RenderJSON(w, http.StatusCreated, u)
}

// HandleUpdate merges name, community, admin flag and modules. Only the
// master may edit the master profile, and it always stays an administrator.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in updateInput
	if !uierrors.DecodeOr400(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	target, err := h.Dir.Users.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "user")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "user lookup failed", err, "could not load user")
		return
	}
	if target.IsMaster && !authz.IsMaster(r) {
		uierrors.RenderForbidden(w, r, "only the master can edit the master account")
		return
	}

	bad := map[string]string{}
	if in.Name != nil {
		n := htmlsanitize.Text(*in.Name)
		in.Name = &n
		if n == "" {
			bad["name"] = "Name is required."
		}
	}
	if in.CommunityID != nil {
		c := strings.TrimSpace(*in.CommunityID)
		in.CommunityID = &c
		if c == "" {
			bad["community_id"] = "Community is required."
		} else if err := h.checkCommunity(ctx, c, bad); err != nil {
			h.ErrLog.LogServerError(w, r, "community lookup failed", err, "could not save user")
			return
		}
	}
	if in.AllowedModules != nil && (len(in.AllowedModules) == 0 || !validModules(in.AllowedModules)) {
		bad["allowed_modules"] = "Choose at least one valid module."
	}
	if in.IsAdmin != nil && !*in.IsAdmin && target.IsMaster {
		bad["is_admin"] = userstore.ErrMasterMustBeAdmin.Error()
	}
	if len(bad) > 0 {
		uierrors.RenderValidation(w, bad)
		return
	}

	err = h.Dir.Users.Update(ctx, id, userstore.Patch{
		Name:           in.Name,
		CommunityID:    in.CommunityID,
		IsAdmin:        in.IsAdmin,
		AllowedModules: in.AllowedModules,
	})
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		uierrors.RenderNotFound(w, r, "user")
		return
	case errors.Is(err, userstore.ErrMasterMustBeAdmin):
		uierrors.RenderValidation(w, map[string]string{"is_admin": err.Error()})
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "user update failed", err, "could not save user")
		return
	}
	h.Dir.Touched(ctx, h.Dir.UsersFeed)
	h.AuditLog.UserUpdated(ctx, r, actorID(r), id)

	u, err := h.Dir.Users.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "user reload failed", err, "user saved but could not be reloaded")
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, u)
}

// HandleDelete asks for confirmation of a user deletion. The master
// account can never be deleted and nobody deletes their own account.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if id == actorID(r) {
		uierrors.RenderForbidden(w, r, "you cannot delete your own account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Dir.Users.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "user")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "user lookup failed", err, "could not load user")
		return
	}

	label := u.Name
	if label == "" {
		label = u.Username
	}
	h.Deletions.Request(w, r, deletionpolicy.KindUser, u.ID, label, deletionpolicy.Target{IsMaster: u.IsMaster})
}

// HandleRestore returns a profile to Active. Master only; idempotent.
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	if !authz.IsMaster(r) {
		uierrors.RenderForbidden(w, r, "only the master can restore users")
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Dir.Users.SetStatus(ctx, id, models.StatusActive); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.RenderNotFound(w, r, "user")
			return
		}
		h.ErrLog.LogServerError(w, r, "user restore failed", err, "could not restore user")
		return
	}
	h.Dir.Touched(ctx, h.Dir.UsersFeed)

	h.AuditLog.Restored(ctx, r, actorID(r), string(deletionpolicy.KindUser), id)

	u, err := h.Dir.Users.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "user reload failed", err, "user restored but could not be reloaded")
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, u)
}

// internal/app/system/authz/authz.go
package authz

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
)

// View names a screen (and its API surface) a profile may use.
type View string

const (
	ViewDashboard     View = "dashboard"
	ViewMembers       View = "members"
	ViewTeams         View = "teams"
	ViewSoundTraining View = "sound_training"
	ViewAI            View = "ai"
	ViewUsers         View = "users"
	ViewCommunities   View = "communities"
	ViewMaintenance   View = "maintenance"
)

// Views returns the views permitted to u while operating in module, in
// navigation order.
func Views(u models.User, module models.Module) []View {
	views := []View{ViewDashboard, ViewMembers}
	if module == models.ModuleLiturgy {
		views = append(views, ViewTeams, ViewSoundTraining, ViewAI)
	}
	if u.IsAdmin || u.IsMaster {
		views = append(views, ViewUsers)
	}
	if u.IsMaster {
		views = append(views, ViewCommunities, ViewMaintenance)
	}
	return views
}

// CanView reports whether u may use v in module.
func CanView(u models.User, module models.Module, v View) bool {
	for _, x := range Views(u, module) {
		if x == v {
			return true
		}
	}
	return false
}

// CanViewRequest is CanView for the signed-in user of r. It is false when
// nobody is signed in.
func CanViewRequest(r *http.Request, v View) bool {
	su, ok := auth.CurrentUser(r)
	if !ok {
		return false
	}
	return CanView(su.Profile, su.Module, v)
}

// IsAdmin reports whether the signed-in user is an administrator.
// Masters are always administrators.
func IsAdmin(r *http.Request) bool {
	su, ok := auth.CurrentUser(r)
	return ok && (su.Profile.IsAdmin || su.Profile.IsMaster)
}

// IsMaster reports whether the signed-in user holds the master profile.
func IsMaster(r *http.Request) bool {
	su, ok := auth.CurrentUser(r)
	return ok && su.Profile.IsMaster
}

// RequireView is chi middleware that answers 401 without a user and 403 when
// the user's profile and active module do not include v.
func RequireView(v View) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			su, ok := auth.CurrentUser(r)
			if !ok {
				deny(w, http.StatusUnauthorized, "sign in required")
				return
			}
			if !CanView(su.Profile, su.Module, v) {
				deny(w, http.StatusForbidden, "you do not have access to "+string(v))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

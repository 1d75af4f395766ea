package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/authz"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestViews_RegularEducation(t *testing.T) {
	u := models.User{AllowedModules: []models.Module{models.ModuleEducation}}

	got := authz.Views(u, models.ModuleEducation)

	assert.Equal(t, []authz.View{authz.ViewDashboard, authz.ViewMembers}, got)
}

func TestViews_RegularLiturgy(t *testing.T) {
	u := models.User{AllowedModules: models.AllModules}

	got := authz.Views(u, models.ModuleLiturgy)

	assert.Equal(t, []authz.View{
		authz.ViewDashboard, authz.ViewMembers,
		authz.ViewTeams, authz.ViewSoundTraining, authz.ViewAI,
	}, got)
	assert.NotContains(t, got, authz.ViewUsers)
}

func TestViews_AdminGetsUsers(t *testing.T) {
	u := models.User{IsAdmin: true}

	got := authz.Views(u, models.ModuleEducation)

	assert.Contains(t, got, authz.ViewUsers)
	assert.NotContains(t, got, authz.ViewCommunities)
	assert.NotContains(t, got, authz.ViewMaintenance)
	assert.NotContains(t, got, authz.ViewTeams)
}

func TestViews_MasterGetsEverythingInLiturgy(t *testing.T) {
	u := models.User{IsAdmin: true, IsMaster: true}

	got := authz.Views(u, models.ModuleLiturgy)

	assert.Len(t, got, 8)
	assert.True(t, authz.CanView(u, models.ModuleLiturgy, authz.ViewMaintenance))
	assert.False(t, authz.CanView(u, models.ModuleEducation, authz.ViewAI))
}

func TestRequireView(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := authz.RequireView(authz.ViewTeams)(ok)

	tests := []struct {
		name   string
		user   *auth.SessionUser
		status int
	}{
		{"no user", nil, http.StatusUnauthorized},
		{"education module", &auth.SessionUser{ID: "u1", Module: models.ModuleEducation}, http.StatusForbidden},
		{"liturgy module", &auth.SessionUser{ID: "u1", Module: models.ModuleLiturgy}, http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/teams", nil)
			if tc.user != nil {
				req = auth.WithTestUser(req, tc.user)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestIsAdmin_MasterCounts(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "m", Profile: models.User{IsMaster: true}})

	assert.True(t, authz.IsAdmin(req))
	assert.True(t, authz.IsMaster(req))
	assert.False(t, authz.IsMaster(httptest.NewRequest(http.MethodGet, "/", nil)))
}

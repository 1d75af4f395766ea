package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
)

// MasterUser returns the profile of the master account.
func MasterUser() models.User {
	return models.User{
		ID:             "master-uid",
		Username:       "master@paroquia.org",
		Name:           "Coordenação Geral",
		CommunityID:    models.CoordinationCommunityID,
		IsAdmin:        true,
		IsMaster:       true,
		AllowedModules: []models.Module{models.ModuleLiturgy, models.ModuleEducation},
		Status:         models.StatusActive,
	}
}

// AdminUser returns a non-master administrator profile.
func AdminUser() models.User {
	return models.User{
		ID:             "admin-uid",
		Username:       "admin@paroquia.org",
		Name:           "Admin",
		CommunityID:    "matriz",
		IsAdmin:        true,
		AllowedModules: []models.Module{models.ModuleLiturgy, models.ModuleEducation},
		Status:         models.StatusActive,
	}
}

// RegularUser returns a non-admin profile with the given modules
// (Liturgy when none are given).
func RegularUser(modules ...models.Module) models.User {
	if len(modules) == 0 {
		modules = []models.Module{models.ModuleLiturgy}
	}
	return models.User{
		ID:             "user-uid",
		Username:       "user@paroquia.org",
		Name:           "Usuário",
		CommunityID:    "matriz",
		AllowedModules: modules,
		Status:         models.StatusActive,
	}
}

// WithUser adds a signed-in user to the request context for testing
// authenticated handlers. The active module is the profile's first module.
func WithUser(r *http.Request, u models.User) *http.Request {
	return WithUserModule(r, u, u.DefaultModule())
}

// WithUserModule is WithUser with an explicit active module.
func WithUserModule(r *http.Request, u models.User, m models.Module) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:       u.ID,
		Email:    u.Username,
		Profile:  u,
		Module:   m,
		AuthTime: time.Now(),
	})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is v encoded as JSON.
func NewJSONRequest(method, target string, v any) *http.Request {
	var buf bytes.Buffer
	if v != nil {
		_ = json.NewEncoder(&buf).Encode(v)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// DecodeJSON decodes the response body into v.
func (r *ResponseRecorder) DecodeJSON(t interface{ Fatalf(string, ...any) }, v any) {
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", r.Body.String(), err)
	}
}

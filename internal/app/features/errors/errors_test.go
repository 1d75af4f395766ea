package errors_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogServerError_HidesInternalError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	el := uierrors.NewErrorLogger(zap.New(core))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/members", nil)
	el.LogServerError(rec, req, "list members failed", errors.New("socket closed"), "could not load members")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not load members")
	assert.NotContains(t, rec.Body.String(), "socket closed")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "list members failed", logs.All()[0].Message)
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana"}`))
	require.NoError(t, uierrors.DecodeJSON(req, &v))
	assert.Equal(t, "Ana", v.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nmae":"Ana"}`))
	assert.Error(t, uierrors.DecodeJSON(req, &v))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.Error(t, uierrors.DecodeJSON(req, &v))
}

func TestRenderValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	uierrors.RenderValidation(rec, map[string]string{"name": "required"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"required"`)
}

// internal/app/features/suggestions/handler.go
package suggestions

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/pastoralhub/internal/app/system/ratelimit"
	"github.com/dalemusser/pastoralhub/internal/app/system/suggest"
	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Suggester suggest.Suggester
	Limiter   *ratelimit.Limiter
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
}

// NewHandler wires the suggester. limiter may be nil to disable throttling.
func NewHandler(s suggest.Suggester, limiter *ratelimit.Limiter, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Suggester: s, Limiter: limiter, Log: logger, ErrLog: errLog}
}

type suggestInput struct {
	Celebration string `json:"celebration"`
	Focus       string `json:"focus"`
}

type suggestResponse struct {
	Items []models.SongSuggestion `json:"items"`
}

// HandleSuggest asks the model for songs for one celebration. Any failure
// of the remote call becomes a 502 with a generic message.
func (h *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	var in suggestInput
	if !uierrors.DecodeOr400(w, r, &in) {
		return
	}
	celebration := htmlsanitize.Text(in.Celebration)
	focus := htmlsanitize.Text(in.Focus)

	bad := map[string]string{}
	if celebration == "" {
		bad["celebration"] = "Celebration is required."
	}
	if focus == "" {
		bad["focus"] = "Liturgical focus is required."
	}
	if len(bad) > 0 {
		uierrors.RenderValidation(w, bad)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Generate())
	defer cancel()

	items, err := h.Suggester.Suggest(ctx, celebration, focus)
	if err != nil {
		h.ErrLog.Log(w, r, http.StatusBadGateway, "song suggestion failed", err, "could not get suggestions right now; try again later")
		return
	}
	if items == nil {
		items = []models.SongSuggestion{}
	}
	h.Log.Info("song suggestions generated",
		zap.String("actor_id", userKey(r)),
		zap.Int("count", len(items)))
	uierrors.RenderJSON(w, http.StatusOK, suggestResponse{Items: items})
}

// userKey buckets the throttle per signed-in user.
func userKey(r *http.Request) string {
	if su, ok := auth.CurrentUser(r); ok {
		return su.ID
	}
	return ratelimit.ClientIP(r)
}

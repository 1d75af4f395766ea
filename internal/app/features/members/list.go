// internal/app/features/members/list.go
package members

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	uierrors "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	"github.com/dalemusser/pastoralhub/internal/app/system/csvutil"
	"github.com/dalemusser/pastoralhub/internal/app/system/phone"
	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// communityNames returns a resolver over the current communities snapshot.
// Unknown ids resolve to "".
func (h *Handler) communityNames(ctx context.Context) func(string) string {
	snap, err := h.Dir.CommunitiesFeed.Snapshot(ctx)
	if err != nil {
		h.Log.Warn("communities snapshot unavailable", zap.Error(err))
	}
	names := make(map[string]string, len(snap.Items))
	for _, c := range snap.Items {
		names[c.ID] = c.Name
	}
	return func(id string) string { return names[id] }
}

// filtered loads the members snapshot and applies the request's filter.
func (h *Handler) filtered(r *http.Request) ([]models.Member, uint64, func(string) string, error) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	snap, err := h.Dir.MembersFeed.Snapshot(ctx)
	if err != nil {
		return nil, 0, nil, err
	}
	names := h.communityNames(ctx)
	return ParseFilter(r.URL.Query()).Apply(snap.Items, names), snap.Version, names, nil
}

// ServeList answers the filtered, Active-only member list.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	list, version, names, err := h.filtered(r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "members snapshot failed", err, "could not load members")
		return
	}
	items := make([]listItem, 0, len(list))
	for _, m := range list {
		items = append(items, listItem{Member: m, CommunityName: names(m.CommunityID)})
	}
	uierrors.RenderJSON(w, http.StatusOK, listResponse{Items: items, Total: len(items), Version: version})
}

// ServeExportCSV writes the filtered list as CSV.
func (h *Handler) ServeExportCSV(w http.ResponseWriter, r *http.Request) {
	list, _, names, err := h.filtered(r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "members snapshot failed", err, "could not load members")
		return
	}

	var buf bytes.Buffer
	if err := csvutil.WriteMembers(&buf, list, names); err != nil {
		h.ErrLog.LogServerError(w, r, "members csv failed", err, "could not build the export")
		return
	}

	filename := "membros-" + time.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ServeMember answers one member with its phone split for editing.
// Members pending deletion are still readable by id.
func (h *Handler) ServeMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Dir.Members.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "member")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "member lookup failed", err, "could not load member")
		return
	}

	prefix, body := phone.Split(m.Phone)
	uierrors.RenderJSON(w, http.StatusOK, memberView{
		Member:        m,
		PhonePrefix:   prefix,
		PhoneBody:     body,
		CommunityName: h.communityNames(ctx)(m.CommunityID),
	})
}

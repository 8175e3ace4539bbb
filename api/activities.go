package api

import (
	"net/http"

	"github.com/garnizeh/jobboard/internal/activity"
)

type ActivitiesHandler struct {
	svc *activity.Service
}

func NewActivitiesHandler(svc *activity.Service) *ActivitiesHandler {
	return &ActivitiesHandler{svc: svc}
}

// ListMine returns the caller's own activity, newest first.
func (h *ActivitiesHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)

	p, err := h.svc.ListByUser(r.Context(), CurrentUser(r.Context()).ID, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusOK)
}

func (h *ActivitiesHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)

	items, err := h.svc.ListAll(r.Context(), CurrentUser(r.Context()), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := map[string]any{
		"limit":  limit,
		"offset": offset,
		"items":  items,
	}
	writeJSON(w, resp, http.StatusOK)
}

func (h *ActivitiesHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearAll(r.Context(), CurrentUser(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]int64{"deleted": n}, http.StatusOK)
}

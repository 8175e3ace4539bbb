package api

import (
	"net/http"

	"github.com/garnizeh/jobboard/internal/review"
	"github.com/garnizeh/jobboard/pkg/models"
)

type ReviewsHandler struct {
	svc *review.Service
}

func NewReviewsHandler(svc *review.Service) *ReviewsHandler {
	return &ReviewsHandler{svc: svc}
}

// ListByJob returns the active reviews of a job with its rating summary.
func (h *ReviewsHandler) ListByJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, offset := page(r)

	summary, err := h.svc.Summary(r.Context(), jobID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.svc.ListByJob(r.Context(), jobID, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, map[string]any{
		"summary": summary,
		"items":   items,
		"limit":   limit,
		"offset":  offset,
	}, http.StatusOK)
}

func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req review.Input
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rv, err := h.svc.Create(r.Context(), CurrentUser(r.Context()), jobID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, rv, http.StatusCreated)
}

func (h *ReviewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req review.Input
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rv, err := h.svc.Update(r.Context(), CurrentUser(r.Context()), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, rv, http.StatusOK)
}

func (h *ReviewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), CurrentUser(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type flagRequest struct {
	Reason string `json:"reason"`
}

func (h *ReviewsHandler) Flag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req flagRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	flagged, err := h.svc.Flag(r.Context(), CurrentUser(r.Context()), id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]bool{"flagged": flagged}, http.StatusCreated)
}

type voteRequest struct {
	Helpful bool `json:"helpful"`
}

func (h *ReviewsHandler) Vote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req voteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rv, err := h.svc.Vote(r.Context(), CurrentUser(r.Context()), id, req.Helpful)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, rv, http.StatusOK)
}

type reviewStatusRequest struct {
	Status models.ReviewStatus `json:"status"`
}

func (h *ReviewsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reviewStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rv, err := h.svc.SetStatus(r.Context(), CurrentUser(r.Context()), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, rv, http.StatusOK)
}

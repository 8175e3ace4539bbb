package api

import (
	"net/http"

	"github.com/garnizeh/jobboard/internal/board"
	"github.com/garnizeh/jobboard/pkg/models"
)

// BoardHandler serves job listings and applications.
type BoardHandler struct {
	svc *board.Service
}

func NewBoardHandler(svc *board.Service) *BoardHandler {
	return &BoardHandler{svc: svc}
}

func (h *BoardHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	jobs, err := h.svc.OpenJobs(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"items": jobs, "limit": limit, "offset": offset}, http.StatusOK)
}

func (h *BoardHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	j, err := h.svc.Job(r.Context(), CurrentUser(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, j, http.StatusOK)
}

func (h *BoardHandler) MyJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.EmployerJobs(r.Context(), CurrentUser(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, jobs, http.StatusOK)
}

type applyRequest struct {
	CoverLetter string `json:"cover_letter"`
}

func (h *BoardHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req applyRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	app, err := h.svc.Apply(r.Context(), CurrentUser(r.Context()), id, req.CoverLetter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, app, http.StatusCreated)
}

func (h *BoardHandler) JobApplications(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	apps, err := h.svc.ForJob(r.Context(), CurrentUser(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, apps, http.StatusOK)
}

func (h *BoardHandler) MyApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.Mine(r.Context(), CurrentUser(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, apps, http.StatusOK)
}

type applicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status"`
}

func (h *BoardHandler) SetApplicationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req applicationStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	app, err := h.svc.SetStatus(r.Context(), CurrentUser(r.Context()), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, app, http.StatusOK)
}

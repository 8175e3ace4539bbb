package api

import (
	"net/http"

	"github.com/garnizeh/jobboard/internal/moderation"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/gorilla/mux"
)

// ModerationHandler serves submissions by employers and job seekers and the
// admin review queue.
type ModerationHandler struct {
	svc *moderation.Service
}

func NewModerationHandler(svc *moderation.Service) *ModerationHandler {
	return &ModerationHandler{svc: svc}
}

func (h *ModerationHandler) SubmitEmployerProfile(w http.ResponseWriter, r *http.Request) {
	var req moderation.EmployerInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.svc.SubmitEmployer(r.Context(), CurrentUser(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusCreated)
}

func (h *ModerationHandler) GetEmployerProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.EmployerProfile(r.Context(), CurrentUser(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusOK)
}

func (h *ModerationHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var req moderation.JobInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	j, err := h.svc.SubmitJob(r.Context(), CurrentUser(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, j, http.StatusCreated)
}

func (h *ModerationHandler) SubmitRoleRequest(w http.ResponseWriter, r *http.Request) {
	var req moderation.RoleRequestInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rr, err := h.svc.SubmitRoleRequest(r.Context(), CurrentUser(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, rr, http.StatusCreated)
}

// List serves GET /admin/moderation/{kind}?status=pending.
func (h *ModerationHandler) List(w http.ResponseWriter, r *http.Request) {
	kind := models.SubjectKind(mux.Vars(r)["kind"])
	status := models.ModerationStatus(r.URL.Query().Get("status"))
	limit, offset := page(r)

	items, err := h.svc.ListByStatus(r.Context(), CurrentUser(r.Context()), kind, status, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"items": items, "limit": limit, "offset": offset}, http.StatusOK)
}

// Get serves both the admin view and the owner's own status check.
func (h *ModerationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	s, err := h.svc.Get(r.Context(), CurrentUser(r.Context()), models.SubjectKind(mux.Vars(r)["kind"]), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, s, http.StatusOK)
}

func (h *ModerationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	s, err := h.svc.Approve(r.Context(), CurrentUser(r.Context()), models.SubjectKind(mux.Vars(r)["kind"]), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, s, http.StatusOK)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *ModerationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req rejectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	s, err := h.svc.Reject(r.Context(), CurrentUser(r.Context()), models.SubjectKind(mux.Vars(r)["kind"]), id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, s, http.StatusOK)
}

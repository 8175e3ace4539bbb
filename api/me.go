package api

import (
	"net/http"

	"github.com/garnizeh/jobboard/internal/account"
	"github.com/garnizeh/jobboard/pkg/models"
)

type MeHandler struct {
	accounts *account.Service
}

func NewMeHandler(accounts *account.Service) *MeHandler {
	return &MeHandler{accounts: accounts}
}

func (h *MeHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, CurrentUser(r.Context()), http.StatusOK)
}

func (h *MeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req account.ProfileInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.accounts.UpdateProfile(r.Context(), CurrentUser(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, u, http.StatusOK)
}

type activeRoleRequest struct {
	ActiveRole models.Role `json:"active_role"`
}

func (h *MeHandler) SwitchActiveRole(w http.ResponseWriter, r *http.Request) {
	var req activeRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.accounts.SwitchActiveRole(r.Context(), CurrentUser(r.Context()), req.ActiveRole)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, u, http.StatusOK)
}

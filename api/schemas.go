package api

import (
	"encoding/json"
	"net/http"

	"github.com/garnizeh/jobboard/internal/activity"
	"github.com/gorilla/mux"
)

// SchemasHandler manages the JSON schemas activity metadata is validated
// against.
type SchemasHandler struct {
	svc *activity.Service
}

func NewSchemasHandler(svc *activity.Service) *SchemasHandler {
	return &SchemasHandler{svc: svc}
}

func (h *SchemasHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListSchemas(r.Context(), CurrentUser(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, rows, http.StatusOK)
}

type schemaPayload struct {
	Description string          `json:"description,omitempty"`
	SchemaJSON  json.RawMessage `json:"schema_json"`
}

// Put validates and stores the schema for the {type} route variable.
func (h *SchemasHandler) Put(w http.ResponseWriter, r *http.Request) {
	var p schemaPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if len(p.SchemaJSON) == 0 {
		badRequest(w, r, "schema_json is required")
		return
	}

	if err := h.svc.PutSchema(r.Context(), CurrentUser(r.Context()), mux.Vars(r)["type"], p.Description, p.SchemaJSON); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SchemasHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.GetSchema(r.Context(), CurrentUser(r.Context()), mux.Vars(r)["type"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, s, http.StatusOK)
}

func (h *SchemasHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSchema(r.Context(), CurrentUser(r.Context()), mux.Vars(r)["type"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

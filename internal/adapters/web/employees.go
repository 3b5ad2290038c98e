package web

import (
	"net/http"

	"github.com/Supremeimprints/zellow-backoffice/internal/core"
)

// listEmployees handles GET /api/employees (admin only).
func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, users)
}

// createEmployee handles POST /api/employees (admin only).
func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	var input core.CreateUserInput
	if !decodeJSON(w, r, &input) {
		return
	}
	user, err := h.Users.Create(r.Context(), input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, user)
}

// setEmployeeRole handles POST /api/employees/{id}/role (admin only). An
// admin cannot change their own role; that avoids locking the last admin out.
func (h *Handler) setEmployeeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if claims := authFromContext(r.Context()); claims != nil && claims.UserID == id {
		writeError(w, r, "cannot change your own role", "FORBIDDEN", http.StatusForbidden)
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Users.SetRole(r.Context(), id, req.Role); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deactivateEmployee handles DELETE /api/employees/{id} (admin only).
func (h *Handler) deactivateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if claims := authFromContext(r.Context()); claims != nil && claims.UserID == id {
		writeError(w, r, "cannot deactivate your own account", "FORBIDDEN", http.StatusForbidden)
		return
	}
	if err := h.Users.Deactivate(r.Context(), id); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package web

import (
	"net/http"

	"github.com/Supremeimprints/zellow-backoffice/internal/core"
)

// listSuppliers handles GET /api/suppliers. ?include_inactive=true widens the
// list past the active roster.
func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	suppliers, err := h.Suppliers.List(r.Context(), includeInactive)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, suppliers)
}

// createSupplier handles POST /api/suppliers.
func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var input core.SupplierInput
	if !decodeJSON(w, r, &input) {
		return
	}
	supplier, err := h.Suppliers.Create(r.Context(), input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, supplier)
}

// getSupplier handles GET /api/suppliers/{id}.
func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	supplier, err := h.Suppliers.Get(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, supplier)
}

// updateSupplier handles PUT /api/suppliers/{id}.
func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var input core.SupplierInput
	if !decodeJSON(w, r, &input) {
		return
	}
	supplier, err := h.Suppliers.Update(r.Context(), id, input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, supplier)
}

// deactivateSupplier handles DELETE /api/suppliers/{id}. Soft delete: the
// supplier is retired from new orders but keeps its history.
func (h *Handler) deactivateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Suppliers.Deactivate(r.Context(), id); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

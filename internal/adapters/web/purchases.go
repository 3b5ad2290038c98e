package web

import (
	"net/http"
	"strconv"

	"github.com/Supremeimprints/zellow-backoffice/internal/core"
)

// listPurchaseOrders handles GET /api/purchase-orders.
// Filters: ?status=, ?supplier_id=, ?from=, ?to= (YYYY-MM-DD).
func (h *Handler) listPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.PurchaseOrderFilter{
		Status: q.Get("status"),
		From:   q.Get("from"),
		To:     q.Get("to"),
	}
	if sid := q.Get("supplier_id"); sid != "" {
		n, err := strconv.Atoi(sid)
		if err != nil {
			writeError(w, r, "invalid supplier_id", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		filter.SupplierID = n
	}

	orders, err := h.Purchases.List(r.Context(), filter)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, orders)
}

// createPurchaseOrder handles POST /api/purchase-orders. On success the
// response carries the committed order plus an optional warning when the
// supplier email could not be sent.
func (h *Handler) createPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var input core.CreatePurchaseOrderInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if claims := authFromContext(r.Context()); claims != nil {
		input.CreatedBy = claims.UserID
	}

	po, warning, err := h.Purchases.Create(r.Context(), input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	type response struct {
		Order   *core.PurchaseOrder `json:"order"`
		Warning string              `json:"warning,omitempty"`
	}
	writeJSONStatus(w, http.StatusCreated, response{Order: po, Warning: warning})
}

// getPurchaseOrder handles GET /api/purchase-orders/{id}.
func (h *Handler) getPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	po, err := h.Purchases.Get(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, po)
}

// cancelPurchaseOrder handles POST /api/purchase-orders/{id}/cancel.
func (h *Handler) cancelPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Purchases.Cancel(r.Context(), id); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Goods receiving ───────────────────────────────────────────────────────────

// listOpenReceiving handles GET /api/receiving — purchase orders still
// awaiting stock, with receipt progress.
func (h *Handler) listOpenReceiving(w http.ResponseWriter, r *http.Request) {
	open, err := h.Receiving.ListOpen(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, open)
}

// receivingItems handles GET /api/receiving/{id}/items.
func (h *Handler) receivingItems(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	items, err := h.Receiving.Items(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, items)
}

// receiveItems handles POST /api/receiving/{id}/receive. The body carries
// per-item quantity deltas; the receipt is all-or-nothing.
func (h *Handler) receiveItems(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Lines []core.ReceiptLine `json:"lines"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	po, err := h.Receiving.ReceiveItems(r.Context(), id, req.Lines)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, po)
}

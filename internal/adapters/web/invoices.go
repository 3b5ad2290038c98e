package web

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Supremeimprints/zellow-backoffice/internal/core"
)

// listInvoices handles GET /api/invoices. Filters: ?status=, ?supplier_id=.
func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.InvoiceFilter{Status: q.Get("status")}
	if sid := q.Get("supplier_id"); sid != "" {
		n, err := strconv.Atoi(sid)
		if err != nil {
			writeError(w, r, "invalid supplier_id", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		filter.SupplierID = n
	}

	invoices, err := h.Invoices.List(r.Context(), filter)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, invoices)
}

// getInvoice handles GET /api/invoices/{id}.
func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	invoice, err := h.Invoices.Get(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, invoice)
}

// listInvoicePayments handles GET /api/invoices/{id}/payments.
func (h *Handler) listInvoicePayments(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	payments, err := h.Invoices.Payments(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, payments)
}

// recordInvoicePayment handles POST /api/invoices/{id}/payments. Overpayment
// is rejected; a payment that settles the remainder flips the invoice to Paid.
func (h *Handler) recordInvoicePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	createdBy := 0
	if claims := authFromContext(r.Context()); claims != nil {
		createdBy = claims.UserID
	}

	invoice, err := h.Invoices.RecordPayment(r.Context(), id, req.Amount, createdBy)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, invoice)
}

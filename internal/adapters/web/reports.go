package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// financialSummary handles GET /api/reports/financial-summary?from=&to=.
func (h *Handler) financialSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summary, err := h.Reports.FinancialSummary(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

// exportFinancialSummary handles GET /api/reports/financial-summary/export —
// same aggregates as the JSON endpoint, rendered as a downloadable workbook.
func (h *Handler) exportFinancialSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	book, err := h.Reports.ExportFinancialSummary(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("financial-summary-%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(book)))
	_, _ = w.Write(book)
}

// topProducts handles GET /api/reports/top-products?from=&to=&limit=.
func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, "invalid limit", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		limit = n
	}

	products, err := h.Reports.TopProducts(r.Context(), q.Get("from"), q.Get("to"), limit)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, products)
}

// expenses handles GET /api/reports/expenses?from=&to= — the raw ledger rows
// behind the summary's category totals.
func (h *Handler) expenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.Reports.Expenses(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, rows)
}

// supplierSpend handles GET /api/reports/supplier-spend?from=&to=.
func (h *Handler) supplierSpend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.Reports.SupplierSpend(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, rows)
}

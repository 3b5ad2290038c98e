package web

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Supremeimprints/zellow-backoffice/internal/core"
)

// listCoupons handles GET /api/coupons.
func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.Marketing.ListCoupons(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, coupons)
}

// createCoupon handles POST /api/coupons.
func (h *Handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var input core.CouponInput
	if !decodeJSON(w, r, &input) {
		return
	}
	coupon, err := h.Marketing.CreateCoupon(r.Context(), input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, coupon)
}

// validateCoupon handles POST /api/coupons/validate — a dry run that reports
// the discount a code would grant without consuming a use.
func (h *Handler) validateCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code        string          `json:"code"`
		OrderAmount decimal.Decimal `json:"order_amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	discount, err := h.Marketing.Validate(r.Context(), req.Code, req.OrderAmount)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	type response struct {
		Code     string          `json:"code"`
		Discount decimal.Decimal `json:"discount"`
	}
	writeJSON(w, response{Code: req.Code, Discount: discount})
}

// deactivateCoupon handles DELETE /api/coupons/{id}.
func (h *Handler) deactivateCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Marketing.DeactivateCoupon(r.Context(), id); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Campaigns ─────────────────────────────────────────────────────────────────

func (h *Handler) listCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.Marketing.ListCampaigns(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, campaigns)
}

func (h *Handler) createCampaign(w http.ResponseWriter, r *http.Request) {
	var input core.CampaignInput
	if !decodeJSON(w, r, &input) {
		return
	}
	campaign, err := h.Marketing.CreateCampaign(r.Context(), input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, campaign)
}

// setCampaignStatus handles POST /api/campaigns/{id}/status.
func (h *Handler) setCampaignStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	campaign, err := h.Marketing.SetCampaignStatus(r.Context(), id, req.Status)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, campaign)
}

// recordCampaignSpend handles POST /api/campaigns/{id}/spend. The running
// spend total may never exceed the campaign budget.
func (h *Handler) recordCampaignSpend(w http.ResponseWriter, r *http.Request) {
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

	campaign, err := h.Marketing.RecordCampaignSpend(r.Context(), id, req.Amount)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, campaign)
}

package web

import (
	"net/http"

	"github.com/Supremeimprints/zellow-backoffice/internal/core"
)

// listOrders handles GET /api/orders.
// Filters: ?status=, ?payment_status=, ?q= (customer search), ?from=, ?to=.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.OrderFilter{
		Status:        q.Get("status"),
		PaymentStatus: q.Get("payment_status"),
		Search:        q.Get("q"),
		From:          q.Get("from"),
		To:            q.Get("to"),
	}

	orders, err := h.Orders.List(r.Context(), filter)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, orders)
}

// createOrder handles POST /api/orders — a back-office order entered on a
// customer's behalf. Prices come from the catalog, never the request.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var input core.CreateOrderInput
	if !decodeJSON(w, r, &input) {
		return
	}
	order, err := h.Orders.Create(r.Context(), input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, order)
}

// getOrder handles GET /api/orders/{id}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	order, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

// updateOrderStatus handles POST /api/orders/{id}/status. Shipping and
// delivery are not reachable here; those run through dispatch.
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.Orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

// markOrderPaid handles POST /api/orders/{id}/mark-paid.
func (h *Handler) markOrderPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	order, err := h.Orders.MarkPaid(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

// ── Dispatch ──────────────────────────────────────────────────────────────────

// dispatchBoard handles GET /api/dispatch.
func (h *Handler) dispatchBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.Dispatch.Board(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, board)
}

// assignOrder handles POST /api/orders/{id}/assign.
func (h *Handler) assignOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		DriverID  int `json:"driver_id"`
		VehicleID int `json:"vehicle_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.Dispatch.Assign(r.Context(), id, req.DriverID, req.VehicleID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

// markDelivered handles POST /api/orders/{id}/delivered.
func (h *Handler) markDelivered(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	order, err := h.Dispatch.MarkDelivered(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

// ── Drivers and vehicles ──────────────────────────────────────────────────────

func (h *Handler) listDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.Dispatch.ListDrivers(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, drivers)
}

func (h *Handler) createDriver(w http.ResponseWriter, r *http.Request) {
	var input core.DriverInput
	if !decodeJSON(w, r, &input) {
		return
	}
	driver, err := h.Dispatch.CreateDriver(r.Context(), input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, driver)
}

func (h *Handler) setDriverStatus(w http.ResponseWriter, r *http.Request) {
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
	if err := h.Dispatch.SetDriverStatus(r.Context(), id, req.Status); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Dispatch.ListVehicles(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, vehicles)
}

func (h *Handler) createVehicle(w http.ResponseWriter, r *http.Request) {
	var input core.VehicleInput
	if !decodeJSON(w, r, &input) {
		return
	}
	vehicle, err := h.Dispatch.CreateVehicle(r.Context(), input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, vehicle)
}

func (h *Handler) setVehicleStatus(w http.ResponseWriter, r *http.Request) {
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
	if err := h.Dispatch.SetVehicleStatus(r.Context(), id, req.Status); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

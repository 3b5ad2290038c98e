// Package web is the HTTP adapter: a chi router over the core services with
// JWT cookie auth and role gates. All responses are JSON except the report
// export, which streams an xlsx workbook.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Supremeimprints/zellow-backoffice/internal/core"
)

// Services bundles everything the router needs.
type Services struct {
	Users     core.UserService
	Suppliers core.SupplierService
	Purchases core.PurchaseOrderService
	Receiving core.ReceivingService
	Invoices  core.InvoiceService
	Orders    core.OrderService
	Dispatch  core.DispatchService
	Marketing core.MarketingService
	Reports   core.ReportingService
}

// Handler holds the core services and the chi router.
type Handler struct {
	Services
	jwtSecret string
	log       zerolog.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svcs Services, allowedOrigins, jwtSecret string, log zerolog.Logger) http.Handler {
	h := &Handler{
		Services:  svcs,
		jwtSecret: jwtSecret,
		log:       log,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API (401 JSON if unauthenticated) ──────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		// Suppliers
		r.Get("/api/suppliers", h.listSuppliers)
		r.Post("/api/suppliers", h.createSupplier)
		r.Get("/api/suppliers/{id}", h.getSupplier)
		r.Put("/api/suppliers/{id}", h.updateSupplier)
		r.Delete("/api/suppliers/{id}", h.deactivateSupplier)

		// Purchase orders
		r.Get("/api/purchase-orders", h.listPurchaseOrders)
		r.Post("/api/purchase-orders", h.createPurchaseOrder)
		r.Get("/api/purchase-orders/{id}", h.getPurchaseOrder)
		r.Post("/api/purchase-orders/{id}/cancel", h.cancelPurchaseOrder)

		// Goods receiving
		r.Get("/api/receiving", h.listOpenReceiving)
		r.Get("/api/receiving/{id}/items", h.receivingItems)
		r.Post("/api/receiving/{id}/receive", h.receiveItems)

		// Supplier invoices
		r.Get("/api/invoices", h.listInvoices)
		r.Get("/api/invoices/{id}", h.getInvoice)
		r.Get("/api/invoices/{id}/payments", h.listInvoicePayments)
		r.Post("/api/invoices/{id}/payments", h.recordInvoicePayment)

		// Customer orders
		r.Get("/api/orders", h.listOrders)
		r.Post("/api/orders", h.createOrder)
		r.Get("/api/orders/{id}", h.getOrder)
		r.Post("/api/orders/{id}/status", h.updateOrderStatus)
		r.Post("/api/orders/{id}/mark-paid", h.markOrderPaid)

		// Dispatch
		r.Get("/api/dispatch", h.dispatchBoard)
		r.Post("/api/orders/{id}/assign", h.assignOrder)
		r.Post("/api/orders/{id}/delivered", h.markDelivered)
		r.Get("/api/drivers", h.listDrivers)
		r.Post("/api/drivers", h.createDriver)
		r.Post("/api/drivers/{id}/status", h.setDriverStatus)
		r.Get("/api/vehicles", h.listVehicles)
		r.Post("/api/vehicles", h.createVehicle)
		r.Post("/api/vehicles/{id}/status", h.setVehicleStatus)

		// Marketing
		r.Get("/api/coupons", h.listCoupons)
		r.Post("/api/coupons", h.createCoupon)
		r.Post("/api/coupons/validate", h.validateCoupon)
		r.Delete("/api/coupons/{id}", h.deactivateCoupon)
		r.Get("/api/campaigns", h.listCampaigns)
		r.Post("/api/campaigns", h.createCampaign)
		r.Post("/api/campaigns/{id}/status", h.setCampaignStatus)
		r.Post("/api/campaigns/{id}/spend", h.recordCampaignSpend)

		// Reports (managers and admins)
		r.Group(func(r chi.Router) {
			r.Use(h.RequireRole(core.RoleManager, core.RoleAdmin))
			r.Get("/api/reports/financial-summary", h.financialSummary)
			r.Get("/api/reports/financial-summary/export", h.exportFinancialSummary)
			r.Get("/api/reports/top-products", h.topProducts)
			r.Get("/api/reports/supplier-spend", h.supplierSpend)
			r.Get("/api/reports/expenses", h.expenses)
		})

		// Employee administration (admins only)
		r.Group(func(r chi.Router) {
			r.Use(h.RequireRole(core.RoleAdmin))
			r.Get("/api/employees", h.listEmployees)
			r.Post("/api/employees", h.createEmployee)
			r.Post("/api/employees/{id}/role", h.setEmployeeRole)
			r.Delete("/api/employees/{id}", h.deactivateEmployee)
		})
	})

	return r
}

// health reports liveness.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// idParam extracts the {id} URL parameter as an int. Writes 400 and returns
// false on garbage.
func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

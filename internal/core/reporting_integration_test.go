package core_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Supremeimprints/zellow-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

func TestReporting_FinancialSummary(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	orders := core.NewOrderService(pool, core.NewMarketingService(pool))
	purchases := core.NewPurchaseOrderService(pool, &recordingNotifier{})
	svc := core.NewReportingService(pool)

	// One purchase order books a 500.00 inventory expense and opens a payable.
	if _, _, err := purchases.Create(ctx, core.CreatePurchaseOrderInput{
		SupplierID: 1,
		CreatedBy:  1,
		Lines: []core.PurchaseOrderLineInput{
			{ProductID: 1, Quantity: decimal.NewFromInt(100), UnitPrice: decimal.NewFromInt(5)},
		},
	}); err != nil {
		t.Fatalf("Create PO: %v", err)
	}

	newOrder := func(t *testing.T, productID int, qty int64) *core.CustomerOrder {
		t.Helper()
		o, err := orders.Create(ctx, core.CreateOrderInput{
			CustomerName: "Report Customer",
			Lines:        []core.OrderLineInput{{ProductID: productID, Quantity: decimal.NewFromInt(qty)}},
		})
		if err != nil {
			t.Fatalf("Create order: %v", err)
		}
		return o
	}

	// Paid: 2 shirts, 40.00.
	paid := newOrder(t, 2, 2)
	if _, err := orders.MarkPaid(ctx, paid.ID); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	// Unpaid: 4 mugs, 50.00. Counts for product sales, not revenue.
	newOrder(t, 1, 4)
	// Paid but cancelled: excluded everywhere.
	cancelled := newOrder(t, 3, 1)
	if _, err := orders.MarkPaid(ctx, cancelled.ID); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if _, err := orders.UpdateStatus(ctx, cancelled.ID, core.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	t.Run("Summary", func(t *testing.T) {
		got, err := svc.FinancialSummary(ctx, "", "")
		if err != nil {
			t.Fatalf("FinancialSummary: %v", err)
		}
		if !got.Revenue.Equal(decimal.NewFromInt(40)) {
			t.Errorf("revenue: expected 40 (paid, not cancelled), got %s", got.Revenue)
		}
		if got.OrderCount != 1 {
			t.Errorf("order count: expected 1, got %d", got.OrderCount)
		}
		if !got.TotalExpenses.Equal(decimal.NewFromInt(500)) {
			t.Errorf("expenses: expected 500, got %s", got.TotalExpenses)
		}
		if len(got.ExpensesByCategory) != 1 || got.ExpensesByCategory[0].Category != "Inventory Purchase" {
			t.Errorf("expense categories: %+v", got.ExpensesByCategory)
		}
		if !got.OutstandingPayables.Equal(decimal.NewFromInt(500)) {
			t.Errorf("payables: expected 500 (nothing settled), got %s", got.OutstandingPayables)
		}
		if !got.Net.Equal(decimal.NewFromInt(-460)) {
			t.Errorf("net: expected -460, got %s", got.Net)
		}
	})

	t.Run("EmptyPeriod", func(t *testing.T) {
		got, err := svc.FinancialSummary(ctx, "1999-01-01", "1999-12-31")
		if err != nil {
			t.Fatalf("FinancialSummary: %v", err)
		}
		if !got.Revenue.IsZero() || got.OrderCount != 0 || !got.TotalExpenses.IsZero() {
			t.Errorf("expected zero flows for an empty period: %+v", got)
		}
		// Payables are a balance, not a flow, so the bound does not apply.
		if !got.OutstandingPayables.Equal(decimal.NewFromInt(500)) {
			t.Errorf("payables: expected 500, got %s", got.OutstandingPayables)
		}
	})

	t.Run("InvertedRange_Rejected", func(t *testing.T) {
		_, err := svc.FinancialSummary(ctx, "2026-02-01", "2026-01-01")
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
		_, err = svc.FinancialSummary(ctx, "not-a-date", "")
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("TopProducts", func(t *testing.T) {
		got, err := svc.TopProducts(ctx, "", "", 10)
		if err != nil {
			t.Fatalf("TopProducts: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 products (cancelled order excluded), got %d", len(got))
		}
		if got[0].SKU != "MUG-001" || !got[0].Revenue.Equal(decimal.NewFromInt(50)) {
			t.Errorf("top product: expected MUG-001 at 50, got %s at %s", got[0].SKU, got[0].Revenue)
		}
		if got[1].SKU != "TEE-001" || !got[1].UnitsSold.Equal(decimal.NewFromInt(2)) {
			t.Errorf("second product: expected TEE-001 with 2 units, got %s with %s", got[1].SKU, got[1].UnitsSold)
		}
	})

	t.Run("SupplierSpend", func(t *testing.T) {
		got, err := svc.SupplierSpend(ctx, "", "")
		if err != nil {
			t.Fatalf("SupplierSpend: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 supplier row, got %d", len(got))
		}
		if got[0].SupplierID != 1 || got[0].OrderCount != 1 || !got[0].Total.Equal(decimal.NewFromInt(500)) {
			t.Errorf("supplier spend row: %+v", got[0])
		}
	})

	t.Run("Expenses", func(t *testing.T) {
		got, err := svc.Expenses(ctx, "", "")
		if err != nil {
			t.Fatalf("Expenses: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 ledger row, got %d", len(got))
		}
		if got[0].Category != "Inventory Purchase" || !got[0].Amount.Equal(decimal.NewFromInt(500)) {
			t.Errorf("expense row: %+v", got[0])
		}
		if got[0].Reference == nil {
			t.Error("expense row missing order reference")
		}

		empty, err := svc.Expenses(ctx, "1999-01-01", "1999-12-31")
		if err != nil {
			t.Fatalf("Expenses empty period: %v", err)
		}
		if len(empty) != 0 {
			t.Errorf("expected no rows for an empty period, got %d", len(empty))
		}
	})

	t.Run("Export_IsWorkbook", func(t *testing.T) {
		data, err := svc.ExportFinancialSummary(ctx, "", "")
		if err != nil {
			t.Fatalf("ExportFinancialSummary: %v", err)
		}
		// xlsx is a zip container.
		if !bytes.HasPrefix(data, []byte("PK")) {
			t.Errorf("expected xlsx (zip) magic bytes, got %q", data[:min(4, len(data))])
		}
	})
}

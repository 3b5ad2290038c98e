package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Supremeimprints/zellow-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

func TestOrder_Create(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	marketing := core.NewMarketingService(pool)
	svc := core.NewOrderService(pool, marketing)

	t.Run("CatalogPricing", func(t *testing.T) {
		// 4 mugs at 12.50 plus 2 shirts at 20.00 from the catalog.
		o, err := svc.Create(ctx, core.CreateOrderInput{
			CustomerName:  "Jane Shopper",
			CustomerEmail: "jane@example.test",
			Lines: []core.OrderLineInput{
				{ProductID: 1, Quantity: decimal.NewFromInt(4)},
				{ProductID: 2, Quantity: decimal.NewFromInt(2)},
			},
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if !o.TotalAmount.Equal(decimal.NewFromInt(90)) {
			t.Errorf("total: expected 90, got %s", o.TotalAmount)
		}
		if o.Status != core.OrderStatusPending {
			t.Errorf("status: expected pending, got %s", o.Status)
		}
		if o.PaymentStatus != core.PaymentStatusUnpaid {
			t.Errorf("payment status: expected unpaid, got %s", o.PaymentStatus)
		}
		if len(o.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(o.Items))
		}
		if !o.Items[0].UnitPrice.Equal(decimal.NewFromFloat(12.50)) {
			t.Errorf("item price captured at order time: expected 12.50, got %s", o.Items[0].UnitPrice)
		}
	})

	t.Run("CouponApplied_UseConsumed", func(t *testing.T) {
		coupon, err := marketing.CreateCoupon(ctx, core.CouponInput{
			Code:           "save10",
			DiscountType:   core.DiscountTypePercentage,
			DiscountValue:  decimal.NewFromInt(10),
			MinOrderAmount: decimal.NewFromInt(20),
			ValidFrom:      "2020-01-01",
			ValidUntil:     "2099-12-31",
		})
		if err != nil {
			t.Fatalf("CreateCoupon: %v", err)
		}
		if coupon.Code != "SAVE10" {
			t.Errorf("code should be upcased, got %s", coupon.Code)
		}

		o, err := svc.Create(ctx, core.CreateOrderInput{
			CustomerName: "Bulk Buyer",
			CouponCode:   "SAVE10",
			Lines: []core.OrderLineInput{
				{ProductID: 1, Quantity: decimal.NewFromInt(8)}, // 100.00
			},
		})
		if err != nil {
			t.Fatalf("Create with coupon: %v", err)
		}
		if !o.TotalAmount.Equal(decimal.NewFromInt(90)) {
			t.Errorf("discounted total: expected 90, got %s", o.TotalAmount)
		}
		if o.CouponCode == nil || *o.CouponCode != "SAVE10" {
			t.Errorf("coupon code not stored on the order: %v", o.CouponCode)
		}

		coupons, err := marketing.ListCoupons(ctx)
		if err != nil {
			t.Fatalf("ListCoupons: %v", err)
		}
		if len(coupons) != 1 || coupons[0].TimesUsed != 1 {
			t.Errorf("redemption should consume one use: %+v", coupons)
		}
	})

	t.Run("IneligibleCoupon_RejectsWholeOrder", func(t *testing.T) {
		before, err := svc.List(ctx, core.OrderFilter{})
		if err != nil {
			t.Fatalf("List: %v", err)
		}

		// 5.00 order is below the coupon's 20.00 minimum.
		_, err = svc.Create(ctx, core.CreateOrderInput{
			CustomerName: "Small Spender",
			CouponCode:   "SAVE10",
			Lines: []core.OrderLineInput{
				{ProductID: 3, Quantity: decimal.NewFromInt(1)},
			},
		})
		if !errors.Is(err, core.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}

		after, err := svc.List(ctx, core.OrderFilter{})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(after) != len(before) {
			t.Errorf("rejected order must not be written: %d orders before, %d after", len(before), len(after))
		}
	})

	t.Run("InactiveProduct_Fails", func(t *testing.T) {
		_, err := svc.Create(ctx, core.CreateOrderInput{
			CustomerName: "Anyone",
			Lines: []core.OrderLineInput{
				{ProductID: 4, Quantity: decimal.NewFromInt(1)},
			},
		})
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("expected ErrValidation for inactive product, got %v", err)
		}
	})

	t.Run("NoLines_Fails", func(t *testing.T) {
		_, err := svc.Create(ctx, core.CreateOrderInput{CustomerName: "Anyone"})
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("expected ErrValidation for empty order, got %v", err)
		}
	})
}

func TestOrder_StatusAndPayment(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewOrderService(pool, core.NewMarketingService(pool))

	newOrder := func(t *testing.T) *core.CustomerOrder {
		t.Helper()
		o, err := svc.Create(ctx, core.CreateOrderInput{
			CustomerName: "Status Tester",
			Lines:        []core.OrderLineInput{{ProductID: 1, Quantity: decimal.NewFromInt(1)}},
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		return o
	}

	t.Run("PendingToProcessing", func(t *testing.T) {
		o := newOrder(t)
		got, err := svc.UpdateStatus(ctx, o.ID, core.OrderStatusProcessing)
		if err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
		if got.Status != core.OrderStatusProcessing {
			t.Errorf("expected processing, got %s", got.Status)
		}
	})

	t.Run("PendingStraightToShipped_Rejected", func(t *testing.T) {
		o := newOrder(t)
		_, err := svc.UpdateStatus(ctx, o.ID, core.OrderStatusShipped)
		if !errors.Is(err, core.ErrStateConflict) {
			t.Errorf("shipping bypasses dispatch; expected ErrStateConflict, got %v", err)
		}
	})

	t.Run("CancelledIsTerminal", func(t *testing.T) {
		o := newOrder(t)
		if _, err := svc.UpdateStatus(ctx, o.ID, core.OrderStatusCancelled); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		_, err := svc.UpdateStatus(ctx, o.ID, core.OrderStatusProcessing)
		if !errors.Is(err, core.ErrStateConflict) {
			t.Errorf("expected ErrStateConflict after cancel, got %v", err)
		}
	})

	t.Run("MarkPaid_OnceOnly", func(t *testing.T) {
		o := newOrder(t)
		got, err := svc.MarkPaid(ctx, o.ID)
		if err != nil {
			t.Fatalf("MarkPaid: %v", err)
		}
		if got.PaymentStatus != core.PaymentStatusPaid {
			t.Errorf("expected paid, got %s", got.PaymentStatus)
		}
		if _, err := svc.MarkPaid(ctx, o.ID); !errors.Is(err, core.ErrStateConflict) {
			t.Errorf("second MarkPaid: expected ErrStateConflict, got %v", err)
		}
	})

	t.Run("StatusFilter", func(t *testing.T) {
		cancelled, err := svc.List(ctx, core.OrderFilter{Status: core.OrderStatusCancelled})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(cancelled) != 1 {
			t.Errorf("expected 1 cancelled order, got %d", len(cancelled))
		}
	})
}

func TestDispatch_Lifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	orders := core.NewOrderService(pool, core.NewMarketingService(pool))
	svc := core.NewDispatchService(pool, orders)

	driver, err := svc.CreateDriver(ctx, core.DriverInput{
		Name:          "Dan Wheeler",
		LicenseNumber: "DL-2231",
		Phone:         "0712000001",
	})
	if err != nil {
		t.Fatalf("CreateDriver: %v", err)
	}
	vehicle, err := svc.CreateVehicle(ctx, core.VehicleInput{
		RegistrationNo: "KDA 123X",
		Model:          "Panel Van",
		CapacityKg:     decimal.NewFromInt(800),
	})
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	if vehicle.CapacityKg == nil || !vehicle.CapacityKg.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("vehicle capacity not stored: %+v", vehicle.CapacityKg)
	}
	bike, err := svc.CreateVehicle(ctx, core.VehicleInput{
		RegistrationNo: "KMC 998B",
		Model:          "Cargo Bike",
	})
	if err != nil {
		t.Fatalf("CreateVehicle without capacity: %v", err)
	}
	if bike.CapacityKg != nil {
		t.Fatalf("unset capacity should be NULL, got %s", bike.CapacityKg)
	}

	order, err := orders.Create(ctx, core.CreateOrderInput{
		CustomerName: "Dispatch Customer",
		Lines:        []core.OrderLineInput{{ProductID: 2, Quantity: decimal.NewFromInt(3)}},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	t.Run("AssignPendingOrder_Rejected", func(t *testing.T) {
		_, err := svc.Assign(ctx, order.ID, driver.ID, vehicle.ID)
		if !errors.Is(err, core.ErrStateConflict) {
			t.Errorf("expected ErrStateConflict for pending order, got %v", err)
		}
	})

	if _, err := orders.UpdateStatus(ctx, order.ID, core.OrderStatusProcessing); err != nil {
		t.Fatalf("move to processing: %v", err)
	}

	t.Run("BoardShowsReadyOrder", func(t *testing.T) {
		board, err := svc.Board(ctx)
		if err != nil {
			t.Fatalf("Board: %v", err)
		}
		if len(board.AwaitingDispatch) != 1 {
			t.Errorf("awaiting dispatch: expected 1, got %d", len(board.AwaitingDispatch))
		}
		if len(board.AvailableDrivers) != 1 || len(board.AvailableVehicles) != 2 {
			t.Errorf("expected 1 free driver and 2 free vehicles, got %d and %d",
				len(board.AvailableDrivers), len(board.AvailableVehicles))
		}
	})

	t.Run("Assign_ShipsOrderAndBusiesDriver", func(t *testing.T) {
		got, err := svc.Assign(ctx, order.ID, driver.ID, vehicle.ID)
		if err != nil {
			t.Fatalf("Assign: %v", err)
		}
		if got.Status != core.OrderStatusShipped {
			t.Errorf("expected shipped, got %s", got.Status)
		}
		if got.DispatchedAt == nil {
			t.Error("dispatched_at not set")
		}
		if got.DriverName == nil || *got.DriverName != "Dan Wheeler" {
			t.Errorf("driver name not joined onto order: %v", got.DriverName)
		}

		ds, err := svc.ListDrivers(ctx)
		if err != nil {
			t.Fatalf("ListDrivers: %v", err)
		}
		if ds[0].Status != core.DriverStatusOnDelivery {
			t.Errorf("driver: expected on_delivery, got %s", ds[0].Status)
		}
	})

	t.Run("AssignBusyDriver_Rejected", func(t *testing.T) {
		second, err := orders.Create(ctx, core.CreateOrderInput{
			CustomerName: "Second Customer",
			Lines:        []core.OrderLineInput{{ProductID: 3, Quantity: decimal.NewFromInt(2)}},
		})
		if err != nil {
			t.Fatalf("Create second order: %v", err)
		}
		if _, err := orders.UpdateStatus(ctx, second.ID, core.OrderStatusProcessing); err != nil {
			t.Fatalf("move to processing: %v", err)
		}
		_, err = svc.Assign(ctx, second.ID, driver.ID, vehicle.ID)
		if !errors.Is(err, core.ErrStateConflict) {
			t.Errorf("expected ErrStateConflict for busy driver, got %v", err)
		}
	})

	t.Run("Delivered_FreesDriver", func(t *testing.T) {
		got, err := svc.MarkDelivered(ctx, order.ID)
		if err != nil {
			t.Fatalf("MarkDelivered: %v", err)
		}
		if got.Status != core.OrderStatusDelivered {
			t.Errorf("expected delivered, got %s", got.Status)
		}
		if got.DeliveredAt == nil {
			t.Error("delivered_at not set")
		}

		ds, err := svc.ListDrivers(ctx)
		if err != nil {
			t.Fatalf("ListDrivers: %v", err)
		}
		if ds[0].Status != core.DriverStatusAvailable {
			t.Errorf("driver should be freed, got %s", ds[0].Status)
		}
	})

	t.Run("DeliverTwice_Rejected", func(t *testing.T) {
		_, err := svc.MarkDelivered(ctx, order.ID)
		if !errors.Is(err, core.ErrStateConflict) {
			t.Errorf("expected ErrStateConflict, got %v", err)
		}
	})

	t.Run("RetiredVehicle_Rejected", func(t *testing.T) {
		if err := svc.SetVehicleStatus(ctx, vehicle.ID, core.VehicleStatusRetired); err != nil {
			t.Fatalf("SetVehicleStatus: %v", err)
		}
		third, err := orders.Create(ctx, core.CreateOrderInput{
			CustomerName: "Third Customer",
			Lines:        []core.OrderLineInput{{ProductID: 1, Quantity: decimal.NewFromInt(1)}},
		})
		if err != nil {
			t.Fatalf("Create third order: %v", err)
		}
		if _, err := orders.UpdateStatus(ctx, third.ID, core.OrderStatusProcessing); err != nil {
			t.Fatalf("move to processing: %v", err)
		}
		_, err = svc.Assign(ctx, third.ID, driver.ID, vehicle.ID)
		if !errors.Is(err, core.ErrStateConflict) {
			t.Errorf("expected ErrStateConflict for retired vehicle, got %v", err)
		}
	})
}

package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DispatchService owns delivery logistics: the dispatch board, driver and
// vehicle fleets, and the shipped/delivered order transitions.
type DispatchService interface {
	Board(ctx context.Context) (*DispatchBoard, error)

	// Assign puts a processing order on the road: order → shipped,
	// driver → on_delivery. Driver must be available and vehicle active.
	Assign(ctx context.Context, orderID, driverID, vehicleID int) (*CustomerOrder, error)
	// MarkDelivered completes a shipped order and frees its driver.
	MarkDelivered(ctx context.Context, orderID int) (*CustomerOrder, error)

	CreateDriver(ctx context.Context, input DriverInput) (*Driver, error)
	ListDrivers(ctx context.Context) ([]Driver, error)
	SetDriverStatus(ctx context.Context, driverID int, status string) error

	CreateVehicle(ctx context.Context, input VehicleInput) (*Vehicle, error)
	ListVehicles(ctx context.Context) ([]Vehicle, error)
	SetVehicleStatus(ctx context.Context, vehicleID int, status string) error
}

type dispatchService struct {
	pool   *pgxpool.Pool
	orders OrderService
}

// NewDispatchService constructs a DispatchService backed by PostgreSQL.
func NewDispatchService(pool *pgxpool.Pool, orders OrderService) DispatchService {
	return &dispatchService{pool: pool, orders: orders}
}

func (s *dispatchService) Board(ctx context.Context) (*DispatchBoard, error) {
	awaiting, err := s.orders.List(ctx, OrderFilter{Status: OrderStatusProcessing})
	if err != nil {
		return nil, err
	}
	onRoad, err := s.orders.List(ctx, OrderFilter{Status: OrderStatusShipped})
	if err != nil {
		return nil, err
	}

	drivers, err := s.listDriversWhere(ctx, "WHERE status = 'available'")
	if err != nil {
		return nil, err
	}
	vehicles, err := s.listVehiclesWhere(ctx, "WHERE status = 'active'")
	if err != nil {
		return nil, err
	}

	return &DispatchBoard{
		AwaitingDispatch:  awaiting,
		OutForDelivery:    onRoad,
		AvailableDrivers:  drivers,
		AvailableVehicles: vehicles,
	}, nil
}

func (s *dispatchService) Assign(ctx context.Context, orderID, driverID, vehicleID int) (*CustomerOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var orderStatus string
	if err := tx.QueryRow(ctx,
		"SELECT status FROM customer_orders WHERE id = $1 FOR UPDATE", orderID,
	).Scan(&orderStatus); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("order %d", orderID)
		}
		return nil, fmt.Errorf("fetch order %d: %w", orderID, err)
	}
	if orderStatus != OrderStatusProcessing {
		return nil, conflictf("order %d cannot be dispatched: status is %s (must be processing)", orderID, orderStatus)
	}

	var driverStatus string
	if err := tx.QueryRow(ctx,
		"SELECT status FROM drivers WHERE id = $1 FOR UPDATE", driverID,
	).Scan(&driverStatus); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("driver %d", driverID)
		}
		return nil, fmt.Errorf("fetch driver %d: %w", driverID, err)
	}
	if driverStatus != DriverStatusAvailable {
		return nil, conflictf("driver %d is %s, not available", driverID, driverStatus)
	}

	var vehicleStatus string
	if err := tx.QueryRow(ctx,
		"SELECT status FROM vehicles WHERE id = $1", vehicleID,
	).Scan(&vehicleStatus); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("vehicle %d", vehicleID)
		}
		return nil, fmt.Errorf("fetch vehicle %d: %w", vehicleID, err)
	}
	if vehicleStatus != VehicleStatusActive {
		return nil, conflictf("vehicle %d is %s, not active", vehicleID, vehicleStatus)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE customer_orders
		SET status = 'shipped', driver_id = $1, vehicle_id = $2, dispatched_at = NOW()
		WHERE id = $3`,
		driverID, vehicleID, orderID,
	); err != nil {
		return nil, fmt.Errorf("dispatch order %d: %w", orderID, err)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE drivers SET status = 'on_delivery' WHERE id = $1", driverID,
	); err != nil {
		return nil, fmt.Errorf("update driver %d: %w", driverID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit dispatch: %w", err)
	}
	return s.orders.Get(ctx, orderID)
}

func (s *dispatchService) MarkDelivered(ctx context.Context, orderID int) (*CustomerOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	var driverID *int
	if err := tx.QueryRow(ctx,
		"SELECT status, driver_id FROM customer_orders WHERE id = $1 FOR UPDATE", orderID,
	).Scan(&status, &driverID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("order %d", orderID)
		}
		return nil, fmt.Errorf("fetch order %d: %w", orderID, err)
	}
	if status != OrderStatusShipped {
		return nil, conflictf("order %d cannot be delivered: status is %s (must be shipped)", orderID, status)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE customer_orders SET status = 'delivered', delivered_at = NOW() WHERE id = $1",
		orderID,
	); err != nil {
		return nil, fmt.Errorf("mark order %d delivered: %w", orderID, err)
	}

	// Free the driver unless they have other orders still on the road.
	if driverID != nil {
		if _, err := tx.Exec(ctx, `
			UPDATE drivers SET status = 'available'
			WHERE id = $1 AND NOT EXISTS (
				SELECT 1 FROM customer_orders
				WHERE driver_id = $1 AND status = 'shipped' AND id <> $2
			)`,
			*driverID, orderID,
		); err != nil {
			return nil, fmt.Errorf("release driver %d: %w", *driverID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit delivery: %w", err)
	}
	return s.orders.Get(ctx, orderID)
}

// ── Fleet administration ──────────────────────────────────────────────────────

func (s *dispatchService) CreateDriver(ctx context.Context, input DriverInput) (*Driver, error) {
	if input.Name == "" || input.LicenseNumber == "" {
		return nil, validationf("driver name and license number are required")
	}

	var userID *int
	if input.UserID > 0 {
		userID = &input.UserID
	}
	var phone *string
	if input.Phone != "" {
		phone = &input.Phone
	}

	d := &Driver{}
	if err := s.pool.QueryRow(ctx, `
		INSERT INTO drivers (user_id, name, license_number, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, name, license_number, phone, status, created_at`,
		userID, input.Name, input.LicenseNumber, phone,
	).Scan(&d.ID, &d.UserID, &d.Name, &d.LicenseNumber, &d.Phone, &d.Status, &d.CreatedAt); err != nil {
		return nil, fmt.Errorf("create driver %q: %w", input.Name, err)
	}
	return d, nil
}

func (s *dispatchService) ListDrivers(ctx context.Context) ([]Driver, error) {
	return s.listDriversWhere(ctx, "")
}

func (s *dispatchService) listDriversWhere(ctx context.Context, where string) ([]Driver, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, user_id, name, license_number, phone, status, created_at FROM drivers "+
			where+" ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var drivers []Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.LicenseNumber,
			&d.Phone, &d.Status, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func (s *dispatchService) SetDriverStatus(ctx context.Context, driverID int, status string) error {
	switch status {
	case DriverStatusAvailable, DriverStatusOnDelivery, DriverStatusOffDuty:
	default:
		return validationf("invalid driver status %q", status)
	}
	tag, err := s.pool.Exec(ctx,
		"UPDATE drivers SET status = $1 WHERE id = $2", status, driverID)
	if err != nil {
		return fmt.Errorf("set driver %d status: %w", driverID, err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundf("driver %d", driverID)
	}
	return nil
}

func (s *dispatchService) CreateVehicle(ctx context.Context, input VehicleInput) (*Vehicle, error) {
	if input.RegistrationNo == "" || input.Model == "" {
		return nil, validationf("vehicle registration and model are required")
	}

	var capacity *decimal.Decimal
	if input.CapacityKg.IsPositive() {
		capacity = &input.CapacityKg
	}

	v := &Vehicle{}
	if err := s.pool.QueryRow(ctx, `
		INSERT INTO vehicles (registration_no, model, capacity_kg)
		VALUES ($1, $2, $3)
		RETURNING id, registration_no, model, capacity_kg, status, created_at`,
		input.RegistrationNo, input.Model, capacity,
	).Scan(&v.ID, &v.RegistrationNo, &v.Model, &v.CapacityKg, &v.Status, &v.CreatedAt); err != nil {
		return nil, fmt.Errorf("create vehicle %q: %w", input.RegistrationNo, err)
	}
	return v, nil
}

func (s *dispatchService) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	return s.listVehiclesWhere(ctx, "")
}

func (s *dispatchService) listVehiclesWhere(ctx context.Context, where string) ([]Vehicle, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, registration_no, model, capacity_kg, status, created_at FROM vehicles "+
			where+" ORDER BY registration_no")
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.RegistrationNo, &v.Model,
			&v.CapacityKg, &v.Status, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (s *dispatchService) SetVehicleStatus(ctx context.Context, vehicleID int, status string) error {
	switch status {
	case VehicleStatusActive, VehicleStatusInService, VehicleStatusRetired:
	default:
		return validationf("invalid vehicle status %q", status)
	}
	tag, err := s.pool.Exec(ctx,
		"UPDATE vehicles SET status = $1 WHERE id = $2", status, vehicleID)
	if err != nil {
		return fmt.Errorf("set vehicle %d status: %w", vehicleID, err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundf("vehicle %d", vehicleID)
	}
	return nil
}

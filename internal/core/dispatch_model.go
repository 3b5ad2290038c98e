package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DriverStatusAvailable  = "available"
	DriverStatusOnDelivery = "on_delivery"
	DriverStatusOffDuty    = "off_duty"
)

const (
	VehicleStatusActive    = "active"
	VehicleStatusInService = "in_service"
	VehicleStatusRetired   = "retired"
)

// Driver is a delivery driver. UserID links to the employee account when the
// driver has dashboard access.
type Driver struct {
	ID            int       `json:"id"`
	UserID        *int      `json:"user_id,omitempty"`
	Name          string    `json:"name"`
	LicenseNumber string    `json:"license_number"`
	Phone         *string   `json:"phone,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// DriverInput carries the mutable driver fields.
type DriverInput struct {
	UserID        int    `json:"user_id"`
	Name          string `json:"name"`
	LicenseNumber string `json:"license_number"`
	Phone         string `json:"phone"`
}

// Vehicle is a delivery fleet vehicle.
type Vehicle struct {
	ID             int              `json:"id"`
	RegistrationNo string           `json:"registration_no"`
	Model          string           `json:"model"`
	CapacityKg     *decimal.Decimal `json:"capacity_kg,omitempty"`
	Status         string           `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
}

// VehicleInput carries the mutable vehicle fields.
type VehicleInput struct {
	RegistrationNo string          `json:"registration_no"`
	Model          string          `json:"model"`
	CapacityKg     decimal.Decimal `json:"capacity_kg"`
}

// DispatchBoard is the dispatcher's working view: orders ready to go out,
// orders on the road, and the free drivers and vehicles to assign.
type DispatchBoard struct {
	AwaitingDispatch  []CustomerOrder `json:"awaiting_dispatch"`
	OutForDelivery    []CustomerOrder `json:"out_for_delivery"`
	AvailableDrivers  []Driver        `json:"available_drivers"`
	AvailableVehicles []Vehicle       `json:"available_vehicles"`
}

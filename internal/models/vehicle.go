package models

import "time"

// Vehicle statuses reported by the rental backend.
const (
	VehicleAvailable   = "available"
	VehicleRented      = "rented"
	VehicleMaintenance = "maintenance"
	VehicleReserved    = "reserved"
)

// Vehicle represents a rentable electric vehicle.
type Vehicle struct {
	ID           string       `json:"_id"`
	Name         string       `json:"name,omitempty"`
	LicensePlate string       `json:"license_plate,omitempty"`
	Brand        string       `json:"brand,omitempty"`
	Model        string       `json:"model,omitempty"`
	Type         string       `json:"type,omitempty"` // "scooter", "motorbike", "car"
	Color        string       `json:"color,omitempty"`
	BatteryLevel int          `json:"current_battery,omitempty"`
	Status       string       `json:"status,omitempty"`
	PricePerHour float64      `json:"price_per_hour,omitempty"`
	Images       []string     `json:"images,omitempty"`
	StationID    Ref[Station] `json:"station_id"`
	CreatedAt    time.Time    `json:"created_at,omitempty"`
}

func (v Vehicle) GetID() string { return v.ID }

// Label is the short text an operator recognises a vehicle by.
func (v Vehicle) Label() string {
	switch {
	case v.LicensePlate != "" && v.Name != "":
		return v.Name + " (" + v.LicensePlate + ")"
	case v.LicensePlate != "":
		return v.LicensePlate
	default:
		return v.Name
	}
}

// VehicleStats summarises a vehicle listing.
type VehicleStats struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	Rented      int `json:"rented"`
	Maintenance int `json:"maintenance"`
}

package models

import "time"

// Station is a pickup/return point. The counters are aggregates computed
// by the backend.
type Station struct {
	ID                  string    `json:"_id"`
	Name                string    `json:"name"`
	Code                string    `json:"code,omitempty"`
	Address             string    `json:"address,omitempty"`
	District            string    `json:"district,omitempty"`
	City                string    `json:"city,omitempty"`
	Phone               string    `json:"phone,omitempty"`
	Location            Location  `json:"location"`
	Status              string    `json:"status,omitempty"` // "active", "inactive", "maintenance"
	MaxCapacity         int       `json:"max_capacity,omitempty"`
	OpeningTime         string    `json:"opening_time,omitempty"`
	ClosingTime         string    `json:"closing_time,omitempty"`
	AvailableVehicles   int       `json:"available_vehicles"`
	RentedVehicles      int       `json:"rented_vehicles"`
	MaintenanceVehicles int       `json:"maintenance_vehicles"`
	TotalVehicles       int       `json:"total_vehicles"`
	StaffCount          int       `json:"staff_count"`
	Images              []string  `json:"images,omitempty"`
	CreatedAt           time.Time `json:"created_at,omitempty"`
}

func (s Station) GetID() string { return s.ID }

// StationStats summarises a station listing.
type StationStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// Staff is a station employee.
type Staff struct {
	ID        string       `json:"_id"`
	FullName  string       `json:"fullname"`
	Email     string       `json:"email,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	Role      string       `json:"role,omitempty"`
	IsActive  bool         `json:"is_active"`
	StationID Ref[Station] `json:"station_id"`
}

func (s Staff) GetID() string { return s.ID }

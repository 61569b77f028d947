package models

import "time"

// MaintenanceStatus is the lifecycle of a maintenance report.
type MaintenanceStatus string

const (
	MaintenanceReported MaintenanceStatus = "reported"
	MaintenanceFixed    MaintenanceStatus = "fixed"
)

// MaintenanceReport represents a vehicle maintenance report raised at a station.
type MaintenanceReport struct {
	ID           string            `json:"_id"`
	Code         string            `json:"code"`
	Title        string            `json:"title,omitempty"`
	Description  string            `json:"description,omitempty"`
	Status       MaintenanceStatus `json:"status"`
	Notes        string            `json:"notes,omitempty"`
	BatteryLevel *int              `json:"battery_level,omitempty"`
	Images       []string          `json:"images,omitempty"`
	AfterImages  []string          `json:"after_images,omitempty"`
	VehicleID    Ref[Vehicle]      `json:"vehicle_id"`
	StationID    Ref[Station]      `json:"station_id"`
	ReportedBy   Ref[Staff]        `json:"reported_by"`
	FixedAt      *time.Time        `json:"fixed_at,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func (m MaintenanceReport) GetID() string { return m.ID }

// IsFixed reports whether the report reached its terminal state.
func (m MaintenanceReport) IsFixed() bool {
	return m.Status == MaintenanceFixed
}

// Clone returns a copy that shares no slices or pointers with m.
func (m MaintenanceReport) Clone() MaintenanceReport {
	out := m
	if m.BatteryLevel != nil {
		b := *m.BatteryLevel
		out.BatteryLevel = &b
	}
	if m.Images != nil {
		out.Images = append([]string(nil), m.Images...)
	}
	if m.AfterImages != nil {
		out.AfterImages = append([]string(nil), m.AfterImages...)
	}
	if m.FixedAt != nil {
		t := *m.FixedAt
		out.FixedAt = &t
	}
	return out
}

// MaintenanceStats is the aggregate returned alongside a maintenance listing.
type MaintenanceStats struct {
	Total    int `json:"total"`
	Reported int `json:"reported"`
	Fixed    int `json:"fixed"`
}

// ValidBatteryLevel reports whether level is a percentage reading.
func ValidBatteryLevel(level int) bool {
	return level >= 0 && level <= 100
}

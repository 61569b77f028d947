package models

// Envelope is the wrapper every backend response uses.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// Pagination describes the page a listing returned.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// Page is the payload of a list endpoint.
type Page[T any, S any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
	Stats      S          `json:"stats"`
}

type (
	FeedbackPage    = Page[Feedback, FeedbackStats]
	MaintenancePage = Page[MaintenanceReport, MaintenanceStats]
	StationPage     = Page[Station, StationStats]
	VehiclePage     = Page[Vehicle, VehicleStats]
)

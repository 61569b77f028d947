package client

import (
	"context"
	"net/url"

	"github.com/ukydev/ev-rental-console/internal/models"
)

// MaintenanceFilter holds the recognised maintenance list filters.
type MaintenanceFilter struct {
	Status    models.MaintenanceStatus `json:"status,omitempty"`
	StationID string                   `json:"station_id,omitempty"`
	Sort      string                   `json:"sort,omitempty"` // "newest", "oldest"
}

// MaintenanceUpdate is the body of PUT /api/maintenance/{id}.
type MaintenanceUpdate struct {
	Status       models.MaintenanceStatus `json:"status"`
	Notes        string                   `json:"notes,omitempty"`
	BatteryLevel *int                     `json:"battery_level,omitempty"`
	Images       []string                 `json:"images,omitempty"`
}

// MaintenanceService wraps the maintenance endpoints.
type MaintenanceService struct {
	t *Transport
}

// NewMaintenanceService creates a maintenance service on top of t.
func NewMaintenanceService(t *Transport) *MaintenanceService {
	return &MaintenanceService{t: t}
}

// List returns one page of maintenance reports, scoped to a station when
// the filter names one.
func (s *MaintenanceService) List(ctx context.Context, f MaintenanceFilter, page, limit int) (*models.MaintenancePage, error) {
	q := url.Values{}
	setIf(q, "status", string(f.Status))
	setIf(q, "sort", f.Sort)
	setPaging(q, page, limit)

	path := "/api/maintenance"
	if f.StationID != "" {
		path = "/api/stations/" + escape(f.StationID) + "/maintenance"
	}

	var out models.MaintenancePage
	if err := s.t.get(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a single maintenance report.
func (s *MaintenanceService) Get(ctx context.Context, id string) (*models.MaintenanceReport, error) {
	var out models.MaintenanceReport
	if err := s.t.get(ctx, "/api/maintenance/"+escape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update changes a report and returns the server's copy.
func (s *MaintenanceService) Update(ctx context.Context, id string, u MaintenanceUpdate) (*models.MaintenanceReport, error) {
	var out models.MaintenanceReport
	if err := s.t.put(ctx, "/api/maintenance/"+escape(id), u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a report permanently.
func (s *MaintenanceService) Delete(ctx context.Context, id string) error {
	return s.t.delete(ctx, "/api/maintenance/"+escape(id))
}

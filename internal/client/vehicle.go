package client

import (
	"context"
	"net/url"

	"github.com/ukydev/ev-rental-console/internal/models"
)

// VehicleFilter holds the vehicle list filters.
type VehicleFilter struct {
	Status    string `json:"status,omitempty"`
	Type      string `json:"type,omitempty"`
	StationID string `json:"station_id,omitempty"`
}

// VehicleService wraps the vehicle endpoints.
type VehicleService struct {
	t *Transport
}

// NewVehicleService creates a vehicle service on top of t.
func NewVehicleService(t *Transport) *VehicleService {
	return &VehicleService{t: t}
}

// List returns one page of vehicles.
func (s *VehicleService) List(ctx context.Context, f VehicleFilter, page, limit int) (*models.VehiclePage, error) {
	q := url.Values{}
	setIf(q, "status", f.Status)
	setIf(q, "type", f.Type)
	setIf(q, "station_id", f.StationID)
	setPaging(q, page, limit)

	var out models.VehiclePage
	if err := s.t.get(ctx, "/api/vehicles", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a single vehicle.
func (s *VehicleService) Get(ctx context.Context, id string) (*models.Vehicle, error) {
	var out models.Vehicle
	if err := s.t.get(ctx, "/api/vehicles/"+escape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

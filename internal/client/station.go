package client

import (
	"context"
	"net/url"

	"github.com/ukydev/ev-rental-console/internal/models"
)

// StationFilter holds the station list filters.
type StationFilter struct {
	Status string `json:"status,omitempty"`
	City   string `json:"city,omitempty"`
	Search string `json:"search,omitempty"`
}

// StationService wraps the station endpoints.
type StationService struct {
	t *Transport
}

// NewStationService creates a station service on top of t.
func NewStationService(t *Transport) *StationService {
	return &StationService{t: t}
}

// List returns one page of stations.
func (s *StationService) List(ctx context.Context, f StationFilter, page, limit int) (*models.StationPage, error) {
	q := url.Values{}
	setIf(q, "status", f.Status)
	setIf(q, "city", f.City)
	setIf(q, "search", f.Search)
	setPaging(q, page, limit)

	var out models.StationPage
	if err := s.t.get(ctx, "/api/stations", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a station with its counters.
func (s *StationService) Get(ctx context.Context, id string) (*models.Station, error) {
	var out models.Station
	if err := s.t.get(ctx, "/api/stations/"+escape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Vehicles returns the vehicles parked at a station.
func (s *StationService) Vehicles(ctx context.Context, id string) ([]models.Vehicle, error) {
	var out []models.Vehicle
	if err := s.t.get(ctx, "/api/stations/"+escape(id)+"/vehicles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Staff returns the staff assigned to a station.
func (s *StationService) Staff(ctx context.Context, id string) ([]models.Staff, error) {
	var out []models.Staff
	if err := s.t.get(ctx, "/api/stations/"+escape(id)+"/staff", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

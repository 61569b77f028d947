package console

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ev-rental-console/internal/client"
	"github.com/ukydev/ev-rental-console/internal/models"
)

// StationList is the list view type of the stations page.
type StationList = ListView[models.Station, models.StationStats, client.StationFilter]

// VehicleList is the list view type of the fleet page.
type VehicleList = ListView[models.Vehicle, models.VehicleStats, client.VehicleFilter]

// StationDetail is the detail modal of one station with its vehicles and staff.
type StationDetail struct {
	mu       sync.Mutex
	id       string
	api      StationAPI
	env      env
	station  models.Station
	loaded   bool
	vehicles []models.Vehicle
	staff    []models.Staff
	errMsg   string
}

// StationDetailView is the JSON form of the detail modal.
type StationDetailView struct {
	Station  models.Station   `json:"station"`
	Loaded   bool             `json:"loaded"`
	Vehicles []models.Vehicle `json:"vehicles"`
	Staff    []models.Staff   `json:"staff"`
	Counts   map[string]int   `json:"vehicle_counts"`
	Error    string           `json:"error,omitempty"`
}

func newStationDetail(seed models.Station, api StationAPI, e env) *StationDetail {
	return &StationDetail{id: seed.ID, api: api, env: e, station: seed, loaded: seed.Name != ""}
}

// ID returns the station id.
func (d *StationDetail) ID() string { return d.id }

// Load fetches the station record.
func (d *StationDetail) Load(ctx context.Context) error {
	st, err := d.api.Get(ctx, d.id)
	if err != nil {
		d.setErr(err)
		d.env.fail(err)
		return err
	}
	d.mu.Lock()
	d.station = *st
	d.loaded = true
	d.errMsg = ""
	d.mu.Unlock()
	return nil
}

// LoadVehicles fetches the vehicles parked at the station.
func (d *StationDetail) LoadVehicles(ctx context.Context) error {
	vs, err := d.api.Vehicles(ctx, d.id)
	if err != nil {
		d.setErr(err)
		d.env.fail(err)
		return err
	}
	d.mu.Lock()
	d.vehicles = vs
	d.mu.Unlock()
	return nil
}

// LoadStaff fetches the staff list. Operators without access to staff still
// get the rest of the modal, so a failure is only logged.
func (d *StationDetail) LoadStaff(ctx context.Context) error {
	staff, err := d.api.Staff(ctx, d.id)
	if err != nil {
		log.WithError(err).WithField("station_id", d.id).Warn("Failed to load station staff")
		return err
	}
	d.mu.Lock()
	d.staff = staff
	d.mu.Unlock()
	return nil
}

// LoadAll loads the station, its vehicles and its staff, returning the
// first error.
func (d *StationDetail) LoadAll(ctx context.Context) error {
	if err := d.Load(ctx); err != nil {
		return err
	}
	if err := d.LoadVehicles(ctx); err != nil {
		return err
	}
	_ = d.LoadStaff(ctx)
	return nil
}

// View renders the detail state.
func (d *StationDetail) View() StationDetailView {
	d.mu.Lock()
	defer d.mu.Unlock()
	counts := map[string]int{}
	for _, v := range d.vehicles {
		counts[v.Status]++
	}
	return StationDetailView{
		Station:  d.station,
		Loaded:   d.loaded,
		Vehicles: append([]models.Vehicle(nil), d.vehicles...),
		Staff:    append([]models.Staff(nil), d.staff...),
		Counts:   counts,
		Error:    d.errMsg,
	}
}

func (d *StationDetail) setErr(err error) {
	d.mu.Lock()
	d.errMsg = userMessage(d.env.tr, err)
	d.mu.Unlock()
}

package console

import (
	"context"
	"errors"
	"strings"

	"github.com/ukydev/ev-rental-console/internal/client"
	"github.com/ukydev/ev-rental-console/internal/locales"
	"github.com/ukydev/ev-rental-console/internal/models"
	"github.com/ukydev/ev-rental-console/internal/mutation"
)

// MaintenanceInput is what the operator submits from the update form.
type MaintenanceInput struct {
	Status       models.MaintenanceStatus `json:"status"`
	Notes        string                   `json:"notes"`
	BatteryLevel *int                     `json:"battery_level"`
	Images       []string                 `json:"images"`
}

// MaintenanceModal is the detail/action modal of one maintenance report.
type MaintenanceModal struct {
	id        string
	api       MaintenanceAPI
	env       env
	onChanged ChangedFunc
	state     *mutation.Mutation[models.MaintenanceReport]
	del       *DeleteConfirm
}

// MaintenanceModalView is the JSON form of the modal.
type MaintenanceModalView struct {
	Report       models.MaintenanceReport `json:"report"`
	State        mutation.State           `json:"state"`
	Submitting   bool                     `json:"submitting"`
	DeleteState  ConfirmState             `json:"delete_state"`
	VehicleLabel string                   `json:"vehicle_label,omitempty"`
	StationName  string                   `json:"station_name,omitempty"`
	ReporterName string                   `json:"reporter_name,omitempty"`
}

func newMaintenanceModal(snapshot models.MaintenanceReport, api MaintenanceAPI, e env, onChanged ChangedFunc) *MaintenanceModal {
	m := &MaintenanceModal{
		id:        snapshot.ID,
		api:       api,
		env:       e,
		onChanged: onChanged,
		state:     mutation.New(snapshot, models.MaintenanceReport.Clone),
	}
	m.del = NewDeleteConfirm(m.delete)
	return m
}

// ID returns the report id.
func (m *MaintenanceModal) ID() string { return m.id }

// Current returns the modal's copy of the report.
func (m *MaintenanceModal) Current() models.MaintenanceReport {
	return m.state.Value()
}

// reseed rebinds an idle modal to a list row that is at least as recent
// as its own copy.
func (m *MaintenanceModal) reseed(row models.MaintenanceReport) {
	if m.state.Pending() || m.del.State() != ConfirmIdle {
		return
	}
	if row.UpdatedAt.Before(m.state.Value().UpdatedAt) {
		return
	}
	_ = m.state.Replace(row)
}

// View renders the modal state.
func (m *MaintenanceModal) View() MaintenanceModalView {
	r := m.state.Value()
	return MaintenanceModalView{
		Report:       r,
		State:        m.state.State(),
		Submitting:   m.state.Pending(),
		DeleteState:  m.del.State(),
		VehicleLabel: models.ResolveObject(r.VehicleID).Label(),
		StationName:  models.ResolveObject(r.StationID).Name,
		ReporterName: models.ResolveObject(r.ReportedBy).FullName,
	}
}

// Refresh replaces the local copy with the server's.
func (m *MaintenanceModal) Refresh(ctx context.Context) error {
	r, err := m.api.Get(ctx, m.id)
	if err != nil {
		m.env.fail(err)
		return err
	}
	return m.state.Replace(*r)
}

// Update submits the form. Marking a reported vehicle fixed requires a
// battery reading in [0,100].
func (m *MaintenanceModal) Update(ctx context.Context, in MaintenanceInput) error {
	cur := m.state.Value()
	target := in.Status
	if target == "" {
		target = models.MaintenanceFixed
	}
	switch target {
	case models.MaintenanceReported, models.MaintenanceFixed:
	default:
		return m.env.validation(locales.MsgMaintenanceStatusInvalid)
	}
	if cur.IsFixed() && target == models.MaintenanceReported {
		return m.env.validation(locales.MsgMaintenanceAlreadyFixed)
	}
	needsBattery := target == models.MaintenanceFixed && !cur.IsFixed()
	if (needsBattery && in.BatteryLevel == nil) ||
		(in.BatteryLevel != nil && !models.ValidBatteryLevel(*in.BatteryLevel)) {
		return m.env.validation(locales.MsgBatteryLevelInvalid)
	}

	notes := strings.TrimSpace(in.Notes)
	update := client.MaintenanceUpdate{
		Status:       target,
		Notes:        notes,
		BatteryLevel: in.BatteryLevel,
		Images:       in.Images,
	}
	_, err := m.state.Submit(ctx,
		func(r *models.MaintenanceReport) {
			r.Status = target
			if notes != "" {
				r.Notes = notes
			}
			if in.BatteryLevel != nil {
				level := *in.BatteryLevel
				r.BatteryLevel = &level
			}
			r.AfterImages = append(r.AfterImages, in.Images...)
		},
		func(ctx context.Context, _ models.MaintenanceReport) (models.MaintenanceReport, error) {
			r, err := m.api.Update(ctx, m.id, update)
			if err != nil {
				return models.MaintenanceReport{}, err
			}
			return *r, nil
		})
	if errors.Is(err, mutation.ErrInFlight) {
		return err
	}
	m.env.record(ctx, models.ActionUpdateMaintenance, "maintenance", m.id, err)
	if err != nil {
		m.env.fail(err)
		return err
	}
	m.env.succeed(locales.MsgMaintenanceUpdated)
	m.changed(ctx)
	return nil
}

// RequestDelete is the first step of a delete.
func (m *MaintenanceModal) RequestDelete() error { return m.del.Request() }

// CancelDelete withdraws a delete request.
func (m *MaintenanceModal) CancelDelete() error { return m.del.Cancel() }

// ConfirmDelete permanently removes the report after a prior RequestDelete.
func (m *MaintenanceModal) ConfirmDelete(ctx context.Context) error { return m.del.Confirm(ctx) }

// Deleted reports whether the report was deleted through this modal.
func (m *MaintenanceModal) Deleted() bool { return m.del.State() == ConfirmDeleted }

func (m *MaintenanceModal) delete(ctx context.Context) error {
	err := m.api.Delete(ctx, m.id)
	m.env.record(ctx, models.ActionDeleteMaintenance, "maintenance", m.id, err)
	if err != nil {
		m.env.fail(err)
		return err
	}
	m.env.succeed(locales.MsgMaintenanceDeleted)
	m.changed(ctx)
	return nil
}

func (m *MaintenanceModal) changed(ctx context.Context) {
	if m.onChanged != nil {
		m.onChanged(ctx)
	}
}

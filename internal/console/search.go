package console

import (
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ukydev/ev-rental-console/internal/client"
	"github.com/ukydev/ev-rental-console/internal/models"
)

// DefaultSearchDebounce is the quiet period before a typed query is applied.
const DefaultSearchDebounce = 600 * time.Millisecond

// Debouncer runs the last triggered function once triggers stop for delay.
type Debouncer struct {
	mu    sync.Mutex
	clock clock.Clock
	delay time.Duration
	timer *clock.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer driven by c.
func NewDebouncer(c clock.Clock, delay time.Duration) *Debouncer {
	if c == nil {
		c = clock.New()
	}
	return &Debouncer{clock: c, delay: delay}
}

// Trigger schedules fn, cancelling any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := gen == d.gen
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Stop cancels a pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
}

// MaintenanceList is the list view type backing the maintenance board.
type MaintenanceList = ListView[models.MaintenanceReport, models.MaintenanceStats, client.MaintenanceFilter]

// MaintenanceSnapshot adds the search state to the list snapshot.
type MaintenanceSnapshot struct {
	ListSnapshot[models.MaintenanceReport, models.MaintenanceStats, client.MaintenanceFilter]
	Query   string                     `json:"query"`
	Typed   string                     `json:"typed"`
	Visible []models.MaintenanceReport `json:"visible"`
}

// MaintenanceBoard is the maintenance list plus a debounced text search.
// The search filters the page already fetched and never fetches; results
// from other pages are not searched.
type MaintenanceBoard struct {
	*MaintenanceList

	mu       sync.Mutex
	typed    string
	applied  string
	debounce *Debouncer
}

func newMaintenanceBoard(list *MaintenanceList, d *Debouncer) *MaintenanceBoard {
	return &MaintenanceBoard{MaintenanceList: list, debounce: d}
}

// Search records the typed text and applies it after the debounce delay.
func (b *MaintenanceBoard) Search(text string) {
	b.mu.Lock()
	b.typed = text
	b.mu.Unlock()

	b.debounce.Trigger(func() {
		b.mu.Lock()
		b.applied = b.typed
		b.mu.Unlock()
	})
}

// Query returns the search text currently applied.
func (b *MaintenanceBoard) Query() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.applied
}

// Board returns the list snapshot and the rows matching the applied query.
func (b *MaintenanceBoard) Board() MaintenanceSnapshot {
	snap := b.Snapshot()
	b.mu.Lock()
	query, typed := b.applied, b.typed
	b.mu.Unlock()

	return MaintenanceSnapshot{
		ListSnapshot: snap,
		Query:        query,
		Typed:        typed,
		Visible:      FilterReports(snap.Items, query),
	}
}

// Stop cancels a pending search.
func (b *MaintenanceBoard) Stop() {
	b.debounce.Stop()
}

// FilterReports returns the reports matching query, case-insensitively, on
// code, title, description, vehicle and station.
func FilterReports(reports []models.MaintenanceReport, query string) []models.MaintenanceReport {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]models.MaintenanceReport(nil), reports...)
	}
	out := make([]models.MaintenanceReport, 0, len(reports))
	for _, r := range reports {
		if reportMatches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func reportMatches(r models.MaintenanceReport, q string) bool {
	vehicle := models.ResolveObject(r.VehicleID)
	station := models.ResolveObject(r.StationID)
	fields := []string{
		r.Code,
		r.Title,
		r.Description,
		vehicle.Name,
		vehicle.LicensePlate,
		station.Name,
	}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

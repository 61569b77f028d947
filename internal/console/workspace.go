package console

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ev-rental-console/internal/client"
	"github.com/ukydev/ev-rental-console/internal/models"
	"github.com/ukydev/ev-rental-console/internal/notify"
)

// ErrClosed is returned by a Registry after Close.
var ErrClosed = errors.New("console registry closed")

// Services are the backend services a workspace talks to.
type Services struct {
	Feedback    FeedbackAPI
	Maintenance MaintenanceAPI
	Stations    StationAPI
	Vehicles    VehicleAPI
	Chatbot     ChatAPI
}

// Options tune every workspace created by a Registry.
type Options struct {
	PageSize       int
	SearchDebounce time.Duration
	ToastTTL       time.Duration
	Clock          clock.Clock
	Sinks          []notify.Sink
	Translator     Translator
	Auditor        Auditor
}

type identity struct{}

func (identity) T(id string) string { return id }

// Workspace is the console state of one operator.
type Workspace struct {
	OperatorID    string
	Notifications *notify.Center
	Feedback      *FeedbackList
	Maintenance   *MaintenanceBoard
	Stations      *StationList
	Vehicles      *VehicleList // nil without a vehicle service
	Chat          *ChatWidget

	svc Services
	env env

	mu          sync.Mutex
	feedback    map[string]*FeedbackModal
	maintenance map[string]*MaintenanceModal
	stations    map[string]*StationDetail
}

// NewWorkspace builds the console state for operatorID.
func NewWorkspace(operatorID string, svc Services, opts Options) *Workspace {
	c := opts.Clock
	if c == nil {
		c = clock.New()
	}
	tr := opts.Translator
	if tr == nil {
		tr = identity{}
	}
	debounce := opts.SearchDebounce
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}

	centerOpts := []notify.Option{notify.WithClock(c), notify.WithScope(operatorID)}
	for _, s := range opts.Sinks {
		centerOpts = append(centerOpts, notify.WithSink(s))
	}
	center := notify.NewCenter(opts.ToastTTL, centerOpts...)

	e := env{operatorID: operatorID, notifier: center, tr: tr, audit: opts.Auditor, clock: c}
	w := &Workspace{
		OperatorID:    operatorID,
		Notifications: center,
		svc:           svc,
		env:           e,
		feedback:      make(map[string]*FeedbackModal),
		maintenance:   make(map[string]*MaintenanceModal),
		stations:      make(map[string]*StationDetail),
	}
	w.Feedback = newListView("feedback", svc.Feedback.List, client.FeedbackFilter{}, opts.PageSize, e)
	w.Maintenance = newMaintenanceBoard(
		newListView("maintenance", svc.Maintenance.List, client.MaintenanceFilter{}, opts.PageSize, e),
		NewDebouncer(c, debounce),
	)
	w.Stations = newListView("stations", svc.Stations.List, client.StationFilter{}, opts.PageSize, e)
	if svc.Vehicles != nil {
		w.Vehicles = newListView("vehicles", svc.Vehicles.List, client.VehicleFilter{}, opts.PageSize, e)
	}
	w.Chat = newChatWidget(svc.Chatbot, e, c)
	return w
}

// OpenFeedback opens the modal of feedback id, seeding it from the list
// when the row is on the current page. An already open, idle modal is
// rebound to the list row when the list holds newer data.
func (w *Workspace) OpenFeedback(ctx context.Context, id string) (*FeedbackModal, error) {
	seed, ok := w.Feedback.Find(func(f models.Feedback) bool { return f.ID == id })
	if m := w.FeedbackModal(id); m != nil {
		if ok {
			m.reseed(seed)
		}
		return m, nil
	}
	if !ok {
		fb, err := w.svc.Feedback.Get(ctx, id)
		if err != nil {
			w.env.fail(err)
			return nil, err
		}
		seed = *fb
	}
	m := newFeedbackModal(seed, w.svc.Feedback, w.env, w.reloadFeedback)

	w.mu.Lock()
	defer w.mu.Unlock()
	if existing, ok := w.feedback[id]; ok {
		return existing, nil
	}
	w.feedback[id] = m
	return m, nil
}

// FeedbackModal returns the open modal of feedback id, or nil.
func (w *Workspace) FeedbackModal(id string) *FeedbackModal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.feedback[id]
}

// CloseFeedback discards the modal of feedback id.
func (w *Workspace) CloseFeedback(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.feedback, id)
}

// OpenMaintenance opens the modal of report id.
func (w *Workspace) OpenMaintenance(ctx context.Context, id string) (*MaintenanceModal, error) {
	seed, ok := w.Maintenance.Find(func(r models.MaintenanceReport) bool { return r.ID == id })
	if m := w.MaintenanceModal(id); m != nil {
		if ok {
			m.reseed(seed)
		}
		return m, nil
	}
	if !ok {
		r, err := w.svc.Maintenance.Get(ctx, id)
		if err != nil {
			w.env.fail(err)
			return nil, err
		}
		seed = *r
	}
	m := newMaintenanceModal(seed, w.svc.Maintenance, w.env, w.reloadMaintenance)

	w.mu.Lock()
	defer w.mu.Unlock()
	if existing, ok := w.maintenance[id]; ok {
		return existing, nil
	}
	w.maintenance[id] = m
	return m, nil
}

// MaintenanceModal returns the open modal of report id, or nil.
func (w *Workspace) MaintenanceModal(id string) *MaintenanceModal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maintenance[id]
}

// CloseMaintenance discards the modal of report id.
func (w *Workspace) CloseMaintenance(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.maintenance, id)
}

// OpenStation opens the detail of station id and loads its tabs.
func (w *Workspace) OpenStation(ctx context.Context, id string) (*StationDetail, error) {
	w.mu.Lock()
	d, ok := w.stations[id]
	if !ok {
		seed, found := w.Stations.Find(func(s models.Station) bool { return s.ID == id })
		if !found {
			seed = models.Station{ID: id}
		}
		d = newStationDetail(seed, w.svc.Stations, w.env)
		w.stations[id] = d
	}
	w.mu.Unlock()

	if err := d.LoadAll(ctx); err != nil {
		return d, err
	}
	return d, nil
}

// CloseStation discards the detail of station id.
func (w *Workspace) CloseStation(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.stations, id)
}

// Close stops pending timers and clears the notification registry.
func (w *Workspace) Close() {
	w.Maintenance.Stop()
	w.Notifications.Close()
}

func (w *Workspace) reloadFeedback(ctx context.Context) {
	_ = w.Feedback.Reload(ctx)
}

func (w *Workspace) reloadMaintenance(ctx context.Context) {
	_ = w.Maintenance.Reload(ctx)
}

// Registry holds one workspace per signed-in operator.
type Registry struct {
	mu         sync.Mutex
	svc        Services
	opts       Options
	workspaces map[string]*Workspace
	closed     bool
}

// NewRegistry creates an empty registry.
func NewRegistry(svc Services, opts Options) *Registry {
	return &Registry{svc: svc, opts: opts, workspaces: make(map[string]*Workspace)}
}

// Get returns the workspace of operatorID, creating it on first use.
func (r *Registry) Get(operatorID string) (*Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	if w, ok := r.workspaces[operatorID]; ok {
		return w, nil
	}
	w := NewWorkspace(operatorID, r.svc, r.opts)
	r.workspaces[operatorID] = w
	log.WithField("operator_id", operatorID).Info("Console workspace created")
	return w, nil
}

// Drop closes and forgets the workspace of operatorID.
func (r *Registry) Drop(operatorID string) {
	r.mu.Lock()
	w, ok := r.workspaces[operatorID]
	delete(r.workspaces, operatorID)
	r.mu.Unlock()
	if ok {
		w.Close()
	}
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Close closes every workspace.
func (r *Registry) Close() {
	r.mu.Lock()
	ws := r.workspaces
	r.workspaces = make(map[string]*Workspace)
	r.closed = true
	r.mu.Unlock()
	for _, w := range ws {
		w.Close()
	}
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ev-rental-console/internal/client"
	"github.com/ukydev/ev-rental-console/internal/console"
	"github.com/ukydev/ev-rental-console/internal/db"
	"github.com/ukydev/ev-rental-console/internal/middleware"
	"github.com/ukydev/ev-rental-console/internal/models"
	"github.com/ukydev/ev-rental-console/internal/mutation"
	"github.com/ukydev/ev-rental-console/internal/notify"
)

// Workspaces hands out the console state of an operator.
type Workspaces interface {
	Get(operatorID string) (*console.Workspace, error)
	Drop(operatorID string)
}

// ConsoleHandler exposes operator console state over HTTP. Backend failures
// have already been shown as toasts, so they are answered with the current
// state rather than a 5xx.
type ConsoleHandler struct {
	workspaces Workspaces
	audit      db.AuditLog
}

// NewConsoleHandler creates a console handler. audit may be nil.
func NewConsoleHandler(workspaces Workspaces, audit db.AuditLog) *ConsoleHandler {
	return &ConsoleHandler{workspaces: workspaces, audit: audit}
}

// ConsoleResponse is the body of every console route.
type ConsoleResponse struct {
	State         interface{}    `json:"state"`
	Notifications []notify.Toast `json:"notifications"`
	Error         string         `json:"error,omitempty"`
}

func (h *ConsoleHandler) workspace(w http.ResponseWriter, r *http.Request) (*console.Workspace, bool) {
	claims, ok := middleware.GetOperatorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Operator context not found")
		return nil, false
	}
	ws, err := h.workspaces.Get(claims.OperatorID)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Console is shutting down")
		return nil, false
	}
	return ws, true
}

// respond writes state along with the visible toasts.
func respond(w http.ResponseWriter, ws *console.Workspace, state interface{}, err error) {
	body := ConsoleResponse{State: state, Notifications: ws.Notifications.Visible()}
	status := http.StatusOK
	if err != nil {
		body.Error = err.Error()
		status = statusFor(err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := jsonEncode(w, body); encErr != nil {
		log.WithError(encErr).Warn("Failed to encode console response")
	}
}

func statusFor(err error) int {
	var ce *client.Error
	switch {
	case errors.Is(err, console.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, console.ErrNotRequested), errors.Is(err, mutation.ErrInFlight):
		return http.StatusConflict
	case errors.As(err, &ce) && ce.Kind == client.KindForbidden:
		return http.StatusForbidden
	case errors.As(err, &ce) && ce.Kind == client.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusOK
	}
}

func pageParams(r *http.Request) (page, limit int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	limit, _ = strconv.Atoi(q.Get("limit"))
	return page, limit
}

func idParam(r *http.Request) string {
	return r.URL.Query().Get(":id")
}

// ListFeedback applies the query to the feedback list and returns it.
func (h *ConsoleHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := client.FeedbackFilter{
		Type:      models.FeedbackType(q.Get("type")),
		Status:    models.FeedbackStatus(q.Get("status")),
		Category:  q.Get("category"),
		StationID: q.Get("station_id"),
		Search:    strings.TrimSpace(q.Get("search")),
	}
	page, limit := pageParams(r)
	err := ws.Feedback.Load(r.Context(), filter, page, limit)
	respond(w, ws, console.NewFeedbackView(ws.Feedback.Snapshot()), err)
}

// withFeedback opens the feedback modal named by the route and runs fn.
func (h *ConsoleHandler) withFeedback(w http.ResponseWriter, r *http.Request, fn func(context.Context, *console.FeedbackModal) error) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	m, err := ws.OpenFeedback(r.Context(), idParam(r))
	if err != nil {
		respond(w, ws, nil, err)
		return
	}
	if fn != nil {
		err = fn(r.Context(), m)
	}
	view := m.View()
	if m.Deleted() {
		ws.CloseFeedback(m.ID())
	}
	respond(w, ws, view, err)
}

// GetFeedback returns the feedback modal.
func (h *ConsoleHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	h.withFeedback(w, r, nil)
}

// RefreshFeedback re-fetches the feedback.
func (h *ConsoleHandler) RefreshFeedback(w http.ResponseWriter, r *http.Request) {
	h.withFeedback(w, r, func(ctx context.Context, m *console.FeedbackModal) error {
		return m.Refresh(ctx)
	})
}

type resolveRequest struct {
	Response string `json:"response"`
}

// ResolveFeedback answers a complaint.
func (h *ConsoleHandler) ResolveFeedback(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	h.withFeedback(w, r, func(ctx context.Context, m *console.FeedbackModal) error {
		return m.Resolve(ctx, req.Response)
	})
}

// RequestFeedbackDelete asks for delete confirmation.
func (h *ConsoleHandler) RequestFeedbackDelete(w http.ResponseWriter, r *http.Request) {
	h.withFeedback(w, r, func(_ context.Context, m *console.FeedbackModal) error {
		return m.RequestDelete()
	})
}

// ConfirmFeedbackDelete deletes after a prior request.
func (h *ConsoleHandler) ConfirmFeedbackDelete(w http.ResponseWriter, r *http.Request) {
	h.withFeedback(w, r, func(ctx context.Context, m *console.FeedbackModal) error {
		return m.ConfirmDelete(ctx)
	})
}

// CancelFeedbackDelete withdraws a delete request.
func (h *ConsoleHandler) CancelFeedbackDelete(w http.ResponseWriter, r *http.Request) {
	h.withFeedback(w, r, func(_ context.Context, m *console.FeedbackModal) error {
		return m.CancelDelete()
	})
}

// CloseFeedback discards the feedback modal, dropping any unconfirmed delete.
func (h *ConsoleHandler) CloseFeedback(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	ws.CloseFeedback(idParam(r))
	w.WriteHeader(http.StatusNoContent)
}

// ListMaintenance applies the query to the maintenance board. q is the
// debounced client-side search and never refetches.
func (h *ConsoleHandler) ListMaintenance(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	if text, searching := q["q"]; searching {
		ws.Maintenance.Search(strings.Join(text, " "))
		if len(q) == 1 {
			respond(w, ws, ws.Maintenance.Board(), nil)
			return
		}
	}
	filter := client.MaintenanceFilter{
		Status:    models.MaintenanceStatus(q.Get("status")),
		StationID: q.Get("station_id"),
		Sort:      q.Get("sort"),
	}
	page, limit := pageParams(r)
	err := ws.Maintenance.Load(r.Context(), filter, page, limit)
	respond(w, ws, ws.Maintenance.Board(), err)
}

func (h *ConsoleHandler) withMaintenance(w http.ResponseWriter, r *http.Request, fn func(context.Context, *console.MaintenanceModal) error) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	m, err := ws.OpenMaintenance(r.Context(), idParam(r))
	if err != nil {
		respond(w, ws, nil, err)
		return
	}
	if fn != nil {
		err = fn(r.Context(), m)
	}
	view := m.View()
	if m.Deleted() {
		ws.CloseMaintenance(m.ID())
	}
	respond(w, ws, view, err)
}

// GetMaintenance returns the maintenance modal.
func (h *ConsoleHandler) GetMaintenance(w http.ResponseWriter, r *http.Request) {
	h.withMaintenance(w, r, nil)
}

// RefreshMaintenance re-fetches the report.
func (h *ConsoleHandler) RefreshMaintenance(w http.ResponseWriter, r *http.Request) {
	h.withMaintenance(w, r, func(ctx context.Context, m *console.MaintenanceModal) error {
		return m.Refresh(ctx)
	})
}

// UpdateMaintenance submits the update form.
func (h *ConsoleHandler) UpdateMaintenance(w http.ResponseWriter, r *http.Request) {
	var in console.MaintenanceInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	h.withMaintenance(w, r, func(ctx context.Context, m *console.MaintenanceModal) error {
		return m.Update(ctx, in)
	})
}

// RequestMaintenanceDelete asks for delete confirmation.
func (h *ConsoleHandler) RequestMaintenanceDelete(w http.ResponseWriter, r *http.Request) {
	h.withMaintenance(w, r, func(_ context.Context, m *console.MaintenanceModal) error {
		return m.RequestDelete()
	})
}

// ConfirmMaintenanceDelete deletes after a prior request.
func (h *ConsoleHandler) ConfirmMaintenanceDelete(w http.ResponseWriter, r *http.Request) {
	h.withMaintenance(w, r, func(ctx context.Context, m *console.MaintenanceModal) error {
		return m.ConfirmDelete(ctx)
	})
}

// CancelMaintenanceDelete withdraws a delete request.
func (h *ConsoleHandler) CancelMaintenanceDelete(w http.ResponseWriter, r *http.Request) {
	h.withMaintenance(w, r, func(_ context.Context, m *console.MaintenanceModal) error {
		return m.CancelDelete()
	})
}

// CloseMaintenance discards the maintenance modal, dropping any unconfirmed delete.
func (h *ConsoleHandler) CloseMaintenance(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	ws.CloseMaintenance(idParam(r))
	w.WriteHeader(http.StatusNoContent)
}

// ListStations applies the query to the station list.
func (h *ConsoleHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := client.StationFilter{
		Status: q.Get("status"),
		City:   q.Get("city"),
		Search: strings.TrimSpace(q.Get("search")),
	}
	page, limit := pageParams(r)
	err := ws.Stations.Load(r.Context(), filter, page, limit)
	respond(w, ws, ws.Stations.Snapshot(), err)
}

// ListVehicles applies the query to the fleet list.
func (h *ConsoleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	if ws.Vehicles == nil {
		writeError(w, http.StatusNotFound, "Vehicle listing is not configured")
		return
	}
	q := r.URL.Query()
	filter := client.VehicleFilter{
		Status:    q.Get("status"),
		Type:      q.Get("type"),
		StationID: q.Get("station_id"),
	}
	page, limit := pageParams(r)
	err := ws.Vehicles.Load(r.Context(), filter, page, limit)
	respond(w, ws, ws.Vehicles.Snapshot(), err)
}

// GetStation loads the station detail with its vehicles and staff.
func (h *ConsoleHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	d, err := ws.OpenStation(r.Context(), idParam(r))
	respond(w, ws, d.View(), err)
}

// OpenChat opens the chat widget.
func (h *ConsoleHandler) OpenChat(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	err := ws.Chat.Open(r.Context())
	respond(w, ws, ws.Chat.View(), err)
}

// CloseChat hides the chat widget.
func (h *ConsoleHandler) CloseChat(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	ws.Chat.Close()
	respond(w, ws, ws.Chat.View(), nil)
}

type chatRequest struct {
	Message string `json:"message"`
}

// SendChat posts a message to the assistant.
func (h *ConsoleHandler) SendChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	err := ws.Chat.Send(r.Context(), req.Message)
	respond(w, ws, ws.Chat.View(), err)
}

// NewChat starts a fresh conversation.
func (h *ConsoleHandler) NewChat(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	err := ws.Chat.NewConversation(r.Context())
	respond(w, ws, ws.Chat.View(), err)
}

// GetChat returns the chat widget; ?history=1 reloads the messages first.
func (h *ConsoleHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	var err error
	if r.URL.Query().Get("history") != "" {
		err = ws.Chat.LoadHistory(r.Context())
	}
	respond(w, ws, ws.Chat.View(), err)
}

// ListNotifications returns the visible toasts.
func (h *ConsoleHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	respond(w, ws, nil, nil)
}

// DismissNotification closes a toast.
func (h *ConsoleHandler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	if !ws.Notifications.Dismiss(idParam(r)) {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}
	respond(w, ws, nil, nil)
}

// Logout discards the operator's console state.
func (h *ConsoleHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetOperatorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Operator context not found")
		return
	}
	h.workspaces.Drop(claims.OperatorID)
	w.WriteHeader(http.StatusNoContent)
}

// ListAudit returns recent audit entries.
func (h *ConsoleHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		writeError(w, http.StatusServiceUnavailable, "Audit log is not configured")
		return
	}
	q := r.URL.Query()
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	entries, err := h.audit.Find(r.Context(), db.AuditFilter{
		OperatorID: q.Get("operator_id"),
		Resource:   q.Get("resource"),
		ResourceID: q.Get("resource_id"),
		Limit:      limit,
	})
	if err != nil {
		log.WithError(err).Error("Failed to read audit log")
		writeError(w, http.StatusInternalServerError, "Failed to read audit log")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

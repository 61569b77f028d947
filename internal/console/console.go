// Package console holds the server-side state of an operator's console:
// list views, detail/action modals, the chat widget and toast notifications.
// Every user-triggered action converts a failure into exactly one toast.
package console

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ev-rental-console/internal/client"
	"github.com/ukydev/ev-rental-console/internal/locales"
	"github.com/ukydev/ev-rental-console/internal/models"
	"github.com/ukydev/ev-rental-console/internal/notify"
)

var (
	// ErrValidation marks input rejected before any backend call.
	ErrValidation = errors.New("validation failed")
	// ErrNotRequested is returned when a delete is confirmed without being requested.
	ErrNotRequested = errors.New("delete was not requested")
)

// FeedbackAPI is the subset of the feedback service the console uses.
type FeedbackAPI interface {
	List(ctx context.Context, f client.FeedbackFilter, page, limit int) (*models.FeedbackPage, error)
	Get(ctx context.Context, id string) (*models.Feedback, error)
	Update(ctx context.Context, id string, u client.FeedbackUpdate) (*models.Feedback, error)
	Delete(ctx context.Context, id string) error
}

// MaintenanceAPI is the subset of the maintenance service the console uses.
type MaintenanceAPI interface {
	List(ctx context.Context, f client.MaintenanceFilter, page, limit int) (*models.MaintenancePage, error)
	Get(ctx context.Context, id string) (*models.MaintenanceReport, error)
	Update(ctx context.Context, id string, u client.MaintenanceUpdate) (*models.MaintenanceReport, error)
	Delete(ctx context.Context, id string) error
}

// StationAPI is the subset of the station service the console uses.
type StationAPI interface {
	List(ctx context.Context, f client.StationFilter, page, limit int) (*models.StationPage, error)
	Get(ctx context.Context, id string) (*models.Station, error)
	Vehicles(ctx context.Context, id string) ([]models.Vehicle, error)
	Staff(ctx context.Context, id string) ([]models.Staff, error)
}

// VehicleAPI is the subset of the vehicle service the console uses.
type VehicleAPI interface {
	List(ctx context.Context, f client.VehicleFilter, page, limit int) (*models.VehiclePage, error)
}

// ChatAPI is the subset of the chatbot service the console uses.
type ChatAPI interface {
	CreateSession(ctx context.Context) (string, error)
	Send(ctx context.Context, message, sessionID string) (*models.ChatReply, error)
	History(ctx context.Context, sessionID string) (*models.ChatHistory, error)
}

// Notifier shows toasts.
type Notifier interface {
	Notify(severity notify.Severity, message string) notify.Toast
}

// Translator resolves message IDs.
type Translator interface {
	T(id string) string
}

// Auditor records mutating actions.
type Auditor interface {
	Record(ctx context.Context, entry models.AuditEntry) error
}

// env bundles what every view and modal needs to talk back to the operator.
type env struct {
	operatorID string
	notifier   Notifier
	tr         Translator
	audit      Auditor
	clock      clock.Clock
}

func (e env) now() time.Time {
	if e.clock == nil {
		return time.Now()
	}
	return e.clock.Now()
}

// validation toasts msgID as a warning and returns an ErrValidation.
func (e env) validation(msgID string) error {
	msg := e.tr.T(msgID)
	e.notifier.Notify(notify.SeverityWarning, msg)
	return &ValidationError{Message: msg}
}

// fail toasts the user-facing form of err and reports unexpected failures.
func (e env) fail(err error) {
	e.notifier.Notify(notify.SeverityError, userMessage(e.tr, err))
	report(e.operatorID, err)
}

func (e env) succeed(msgID string) {
	e.notifier.Notify(notify.SeveritySuccess, e.tr.T(msgID))
}

func (e env) record(ctx context.Context, action, resource, id string, err error) {
	if e.audit == nil {
		return
	}
	entry := models.AuditEntry{
		OperatorID: e.operatorID,
		Action:     action,
		Resource:   resource,
		ResourceID: id,
		Outcome:    models.AuditSucceeded,
		CreatedAt:  e.now(),
	}
	if err != nil {
		entry.Outcome = models.AuditFailed
		entry.Message = client.MessageOf(err)
	}
	if aerr := e.audit.Record(ctx, entry); aerr != nil {
		log.WithError(aerr).WithFields(log.Fields{
			"action":      action,
			"resource_id": id,
		}).Warn("Failed to write audit entry")
	}
}

// ValidationError is returned for input rejected locally.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// userMessage maps a backend failure to the text shown to the operator.
func userMessage(tr Translator, err error) string {
	switch client.KindOf(err) {
	case client.KindForbidden:
		return tr.T(locales.MsgErrForbidden)
	case client.KindNotFound:
		return tr.T(locales.MsgErrNotFound)
	case client.KindServer:
		return tr.T(locales.MsgErrServer)
	}
	if msg := client.MessageOf(err); msg != "" {
		return msg
	}
	return tr.T(locales.MsgErrUnknown)
}

func report(operatorID string, err error) {
	kind := client.KindOf(err)
	if kind != client.KindServer && kind != client.KindTransport {
		return
	}
	log.WithError(err).WithFields(log.Fields{
		"operator_id": operatorID,
		"kind":        kind,
	}).Error("Console action failed")

	hub := sentry.CurrentHub().Clone()
	hub.Scope().SetTag("operator_id", operatorID)
	hub.Scope().SetTag("error_kind", string(kind))
	hub.CaptureException(err)
}

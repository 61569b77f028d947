package console

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/mock"
	"github.com/ukydev/ev-rental-console/internal/client"
	"github.com/ukydev/ev-rental-console/internal/locales"
	"github.com/ukydev/ev-rental-console/internal/models"
	"github.com/ukydev/ev-rental-console/internal/notify"
)

type MockFeedbackAPI struct {
	mock.Mock
}

func (m *MockFeedbackAPI) List(ctx context.Context, f client.FeedbackFilter, page, limit int) (*models.FeedbackPage, error) {
	args := m.Called(ctx, f, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeedbackPage), args.Error(1)
}

func (m *MockFeedbackAPI) Get(ctx context.Context, id string) (*models.Feedback, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feedback), args.Error(1)
}

func (m *MockFeedbackAPI) Update(ctx context.Context, id string, u client.FeedbackUpdate) (*models.Feedback, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feedback), args.Error(1)
}

func (m *MockFeedbackAPI) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMaintenanceAPI struct {
	mock.Mock
}

func (m *MockMaintenanceAPI) List(ctx context.Context, f client.MaintenanceFilter, page, limit int) (*models.MaintenancePage, error) {
	args := m.Called(ctx, f, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenancePage), args.Error(1)
}

func (m *MockMaintenanceAPI) Get(ctx context.Context, id string) (*models.MaintenanceReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceReport), args.Error(1)
}

func (m *MockMaintenanceAPI) Update(ctx context.Context, id string, u client.MaintenanceUpdate) (*models.MaintenanceReport, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceReport), args.Error(1)
}

func (m *MockMaintenanceAPI) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockStationAPI struct {
	mock.Mock
}

func (m *MockStationAPI) List(ctx context.Context, f client.StationFilter, page, limit int) (*models.StationPage, error) {
	args := m.Called(ctx, f, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StationPage), args.Error(1)
}

func (m *MockStationAPI) Get(ctx context.Context, id string) (*models.Station, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Station), args.Error(1)
}

func (m *MockStationAPI) Vehicles(ctx context.Context, id string) ([]models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *MockStationAPI) Staff(ctx context.Context, id string) ([]models.Staff, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Staff), args.Error(1)
}

type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) CreateSession(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockChatAPI) Send(ctx context.Context, message, sessionID string) (*models.ChatReply, error) {
	args := m.Called(ctx, message, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatReply), args.Error(1)
}

func (m *MockChatAPI) History(ctx context.Context, sessionID string) (*models.ChatHistory, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatHistory), args.Error(1)
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (a *recordingAuditor) Record(_ context.Context, e models.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

func (a *recordingAuditor) all() []models.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.AuditEntry(nil), a.entries...)
}

var catalog = locales.MustNew("vi")

// testEnv returns an env backed by a real notification center on a mock clock.
func testEnv() (env, *notify.Center, *recordingAuditor) {
	c := clock.NewMock()
	center := notify.NewCenter(notify.DefaultTTL, notify.WithClock(c))
	audit := &recordingAuditor{}
	return env{operatorID: "op-1", notifier: center, tr: catalog, audit: audit, clock: c}, center, audit
}

func messages(c *notify.Center) []string {
	var out []string
	for _, t := range c.Visible() {
		out = append(out, t.Message)
	}
	return out
}

func serverError() error {
	return &client.Error{Kind: client.KindServer, Status: 500, Message: "boom"}
}

func rejected(msg string) error {
	return &client.Error{Kind: client.KindRejected, Status: 200, Message: msg}
}

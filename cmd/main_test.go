package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/ev-rental-console/internal/auth"
	"github.com/ukydev/ev-rental-console/internal/client"
	"github.com/ukydev/ev-rental-console/internal/config"
	"github.com/ukydev/ev-rental-console/internal/console"
	"github.com/ukydev/ev-rental-console/internal/db"
	"github.com/ukydev/ev-rental-console/internal/handlers"
	"github.com/ukydev/ev-rental-console/internal/middleware"
	"github.com/ukydev/ev-rental-console/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryAuditLog struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (m *memoryAuditLog) Record(_ context.Context, e models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memoryAuditLog) Find(_ context.Context, f db.AuditFilter) ([]models.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AuditEntry
	for _, e := range m.entries {
		if f.Resource != "" && e.Resource != f.Resource {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type noOperators struct{}

func (noOperators) InsertOperator(context.Context, models.Operator) error { return nil }
func (noOperators) FindOperatorByID(context.Context, string) (*models.Operator, error) {
	return nil, db.ErrOperatorNotFound
}
func (noOperators) FindOperatorByUsername(context.Context, string) (*models.Operator, error) {
	return nil, db.ErrOperatorNotFound
}
func (noOperators) FindOperatorByEmail(context.Context, string) (*models.Operator, error) {
	return nil, db.ErrOperatorNotFound
}
func (noOperators) UpdateOperator(context.Context, string, models.Operator) error { return nil }
func (noOperators) UpdateLastLogin(context.Context, string) error                 { return nil }

type testApp struct {
	handler http.Handler
	auth    *auth.Service
	audit   *memoryAuditLog
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"items":[],"pagination":{"total":0,"page":1,"limit":10,"pages":0},"stats":{}}}`))
	}))
	t.Cleanup(backend.Close)

	cfg := config.Defaults()
	cfg.CORSOrigins = []string{"https://admin.example.com"}

	transport := client.NewTransport(client.Config{BaseURL: backend.URL, Timeout: 5 * time.Second})
	audit := &memoryAuditLog{}
	reg := console.NewRegistry(console.Services{
		Feedback:    client.NewFeedbackService(transport),
		Maintenance: client.NewMaintenanceService(transport),
		Stations:    client.NewStationService(transport),
		Vehicles:    client.NewVehicleService(transport),
		Chatbot:     client.NewChatbotService(transport),
	}, console.Options{PageSize: 10, Clock: clock.NewMock(), Auditor: audit})
	t.Cleanup(reg.Close)

	authService, err := auth.NewService("test-secret", time.Hour)
	require.NoError(t, err)

	app := &application{
		cfg:            &cfg,
		auth:           middleware.NewAuthMiddleware(authService),
		limiter:        middleware.NewRateLimitMiddleware(),
		authHandler:    handlers.NewAuthHandler(authService, noOperators{}),
		consoleHandler: handlers.NewConsoleHandler(reg, audit),
	}
	return &testApp{handler: app.handler(), auth: authService, audit: audit}
}

func (a *testApp) token(t *testing.T, role models.Role) string {
	t.Helper()
	tok, err := a.auth.GenerateToken(&models.Operator{
		ID:       primitive.NewObjectID(),
		Username: string(role) + "1",
		Role:     role,
		IsActive: true,
	})
	require.NoError(t, err)
	return tok
}

func (a *testApp) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func TestRoutes_Health(t *testing.T) {
	app := newTestApp(t)

	w := app.do("GET", "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRoutes_ConsoleRequiresToken(t *testing.T) {
	app := newTestApp(t)

	w := app.do("GET", "/console/feedback", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutes_PermissionsByRole(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name   string
		role   models.Role
		method string
		path   string
		want   int
	}{
		{"viewer lists feedback", models.RoleViewer, "GET", "/console/feedback", http.StatusOK},
		{"viewer cannot resolve", models.RoleViewer, "POST", "/console/feedback/fb-1/resolve", http.StatusForbidden},
		{"staff cannot delete", models.RoleStaff, "POST", "/console/maintenance/mt-1/delete", http.StatusForbidden},
		{"viewer cannot chat", models.RoleViewer, "POST", "/console/chat/open", http.StatusForbidden},
		{"manager cannot read audit", models.RoleManager, "GET", "/console/audit", http.StatusForbidden},
		{"admin reads audit", models.RoleAdmin, "GET", "/console/audit", http.StatusOK},
		{"viewer lists vehicles", models.RoleViewer, "GET", "/console/vehicles", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(tt.method, tt.path, app.token(t, tt.role))
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRoutes_AuditListing(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.audit.Record(context.Background(), models.AuditEntry{
		OperatorID: "op-1", Action: models.ActionResolveFeedback, Resource: "feedback", Outcome: "success",
	}))

	w := app.do("GET", "/console/audit?resource=feedback", app.token(t, models.RoleAdmin))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool                `json:"success"`
		Data    []models.AuditEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "feedback", body.Data[0].Resource)
}

func TestRoutes_CORSPreflight(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("OPTIONS", "/console/feedback", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	app.handler.ServeHTTP(w, req)

	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetupLogging(t *testing.T) {
	defer log.SetLevel(log.GetLevel())

	setupLogging(&config.Config{LogLevel: "debug", LogJSON: true})
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	setupLogging(&config.Config{LogLevel: "chatty"})
	assert.Equal(t, log.InfoLevel, log.GetLevel())
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bmizerany/pat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/ev-rental-console/internal/client"
	"github.com/ukydev/ev-rental-console/internal/console"
	"github.com/ukydev/ev-rental-console/internal/locales"
	"github.com/ukydev/ev-rental-console/internal/middleware"
	"github.com/ukydev/ev-rental-console/internal/models"
)

// fakeBackend answers the rental API with canned envelopes and counts calls.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]int
}

func (b *fakeBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	b.mu.Lock()
	b.calls[key]++
	status := b.fail[key]
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"success":false,"message":"backend failure"}`))
		return
	}

	var data string
	switch key {
	case "GET /api/feedback":
		data = `{"items":[{"_id":"fb-1","type":"complaint","status":"pending","user_id":{"_id":"u1","fullname":"Nguyễn Văn A"},"station_id":"s1"}],
			"pagination":{"total":1,"page":1,"limit":10,"pages":1},
			"stats":{"total":10,"complaints":4,"resolved":1}}`
	case "PUT /api/feedback/fb-1":
		data = `{"_id":"fb-1","type":"complaint","status":"resolved","response":"Đã hoàn tiền"}`
	case "DELETE /api/feedback/fb-1":
		w.WriteHeader(http.StatusNoContent)
		return
	case "GET /api/maintenance":
		data = `{"items":[
			{"_id":"mt-1","code":"MT-001","title":"Flat tyre","status":"reported"},
			{"_id":"mt-2","code":"MT-002","title":"Brake noise","status":"reported"}],
			"pagination":{"total":2,"page":1,"limit":10,"pages":1},"stats":{"total":2,"reported":2}}`
	case "GET /api/maintenance/mt-1":
		data = `{"_id":"mt-1","code":"MT-001","status":"reported"}`
	case "PUT /api/maintenance/mt-1":
		data = `{"_id":"mt-1","code":"MT-001","status":"fixed","battery_level":90}`
	case "GET /api/vehicles":
		data = `{"items":[{"_id":"v1","name":"VinFast Klara","license_plate":"59X1-12345","status":"available","station_id":"s1"}],
			"pagination":{"total":1,"page":1,"limit":10,"pages":1},"stats":{"total":1,"available":1}}`
	case "POST /api/chatbot/conversations":
		data = `{"session_id":"sess-1"}`
	case "POST /api/chatbot/message":
		data = `{"message":"Xin chào","session_id":"sess-1","suggestions":["Đặt xe"]}`
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"not found"}`))
		return
	}
	_, _ = w.Write([]byte(`{"success":true,"data":` + data + `}`))
}

type testConsole struct {
	backend *fakeBackend
	router  http.Handler
	reg     *console.Registry
}

func newTestConsole(t *testing.T) *testConsole {
	t.Helper()
	backend := &fakeBackend{calls: map[string]int{}, fail: map[string]int{}}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	transport := client.NewTransport(client.Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	reg := console.NewRegistry(console.Services{
		Feedback:    client.NewFeedbackService(transport),
		Maintenance: client.NewMaintenanceService(transport),
		Stations:    client.NewStationService(transport),
		Vehicles:    client.NewVehicleService(transport),
		Chatbot:     client.NewChatbotService(transport),
	}, console.Options{PageSize: 10, Clock: clock.NewMock(), Translator: locales.MustNew("vi")})
	t.Cleanup(reg.Close)

	h := NewConsoleHandler(reg, nil)
	mux := pat.New()
	mux.Get("/console/feedback", http.HandlerFunc(h.ListFeedback))
	mux.Get("/console/feedback/:id", http.HandlerFunc(h.GetFeedback))
	mux.Post("/console/feedback/:id/resolve", http.HandlerFunc(h.ResolveFeedback))
	mux.Post("/console/feedback/:id/delete", http.HandlerFunc(h.RequestFeedbackDelete))
	mux.Post("/console/feedback/:id/delete/confirm", http.HandlerFunc(h.ConfirmFeedbackDelete))
	mux.Post("/console/feedback/:id/close", http.HandlerFunc(h.CloseFeedback))
	mux.Get("/console/maintenance", http.HandlerFunc(h.ListMaintenance))
	mux.Post("/console/maintenance/:id/update", http.HandlerFunc(h.UpdateMaintenance))
	mux.Post("/console/chat/messages", http.HandlerFunc(h.SendChat))
	mux.Get("/console/vehicles", http.HandlerFunc(h.ListVehicles))
	mux.Post("/console/logout", http.HandlerFunc(h.Logout))
	mux.Get("/console/notifications", http.HandlerFunc(h.ListNotifications))
	mux.Del("/console/notifications/:id", http.HandlerFunc(h.DismissNotification))

	return &testConsole{backend: backend, router: mux, reg: reg}
}

func (c *testConsole) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(middleware.WithOperator(req.Context(), &models.Claims{OperatorID: "op-1", Role: models.RoleManager}))
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var out map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func toastMessages(resp map[string]interface{}) []string {
	var out []string
	list, _ := resp["notifications"].([]interface{})
	for _, n := range list {
		out = append(out, n.(map[string]interface{})["message"].(string))
	}
	return out
}

func TestConsoleHandler_ListFeedback(t *testing.T) {
	c := newTestConsole(t)

	w, resp := c.do(t, "GET", "/console/feedback?type=complaint", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	state := resp["state"].(map[string]interface{})
	assert.Equal(t, "success", state["state"])
	assert.Equal(t, float64(40), state["complaint_percentage"])
	assert.Len(t, state["items"], 1)
}

func TestConsoleHandler_ListFailureKeepsData(t *testing.T) {
	c := newTestConsole(t)
	_, _ = c.do(t, "GET", "/console/feedback", nil)

	c.backend.mu.Lock()
	c.backend.fail["GET /api/feedback"] = http.StatusInternalServerError
	c.backend.mu.Unlock()

	w, resp := c.do(t, "GET", "/console/feedback", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	state := resp["state"].(map[string]interface{})
	assert.Equal(t, "error", state["state"])
	assert.Len(t, state["items"], 1)
	assert.Equal(t, []string{"Lỗi máy chủ, vui lòng thử lại sau"}, toastMessages(resp))
}

func TestConsoleHandler_ResolveFeedback(t *testing.T) {
	c := newTestConsole(t)
	_, _ = c.do(t, "GET", "/console/feedback", nil)

	w, resp := c.do(t, "POST", "/console/feedback/fb-1/resolve", map[string]string{"response": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []string{"Vui lòng nhập phản hồi"}, toastMessages(resp))
	assert.Equal(t, 0, c.backend.count("PUT /api/feedback/fb-1"))

	w, resp = c.do(t, "POST", "/console/feedback/fb-1/resolve", map[string]string{"response": "Đã hoàn tiền"})
	assert.Equal(t, http.StatusOK, w.Code)
	state := resp["state"].(map[string]interface{})
	assert.Equal(t, "resolved", state["feedback"].(map[string]interface{})["status"])
	assert.Equal(t, 1, c.backend.count("PUT /api/feedback/fb-1"))
	assert.Equal(t, 2, c.backend.count("GET /api/feedback"))
}

func TestConsoleHandler_DeleteNeedsConfirmation(t *testing.T) {
	c := newTestConsole(t)
	_, _ = c.do(t, "GET", "/console/feedback", nil)

	w, _ := c.do(t, "POST", "/console/feedback/fb-1/delete/confirm", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, c.backend.count("DELETE /api/feedback/fb-1"))

	w, _ = c.do(t, "POST", "/console/feedback/fb-1/delete", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, resp := c.do(t, "POST", "/console/feedback/fb-1/delete/confirm", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "deleted", resp["state"].(map[string]interface{})["delete_state"])
	assert.Equal(t, 1, c.backend.count("DELETE /api/feedback/fb-1"))
	assert.Contains(t, toastMessages(resp), "Đã xóa phản hồi")
}

func TestConsoleHandler_MaintenanceBatteryValidation(t *testing.T) {
	c := newTestConsole(t)

	w, resp := c.do(t, "POST", "/console/maintenance/mt-1/update", map[string]interface{}{"status": "fixed"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []string{"Vui lòng nhập mức pin hợp lệ (0-100)"}, toastMessages(resp))
	assert.Equal(t, 0, c.backend.count("PUT /api/maintenance/mt-1"))

	w, resp = c.do(t, "POST", "/console/maintenance/mt-1/update", map[string]interface{}{"status": "fixed", "battery_level": 90})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fixed", resp["state"].(map[string]interface{})["report"].(map[string]interface{})["status"])
}

func TestConsoleHandler_MaintenanceSearchDoesNotFetch(t *testing.T) {
	c := newTestConsole(t)
	_, _ = c.do(t, "GET", "/console/maintenance", nil)

	w, resp := c.do(t, "GET", "/console/maintenance?q=brake", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "brake", resp["state"].(map[string]interface{})["typed"])
	assert.Equal(t, 1, c.backend.count("GET /api/maintenance"))
}

func TestConsoleHandler_ChatAndNotifications(t *testing.T) {
	c := newTestConsole(t)

	w, resp := c.do(t, "POST", "/console/chat/messages", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusOK, w.Code)
	state := resp["state"].(map[string]interface{})
	assert.Len(t, state["messages"], 2)
	assert.Equal(t, "sess-1", state["session_id"])

	_, resp = c.do(t, "POST", "/console/chat/messages", map[string]string{"message": " "})
	list := resp["notifications"].([]interface{})
	require.Len(t, list, 1)
	id := list[0].(map[string]interface{})["id"].(string)

	w, resp = c.do(t, "DELETE", "/console/notifications/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, toastMessages(resp))

	w, _ = c.do(t, "DELETE", "/console/notifications/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConsoleHandler_ListVehicles(t *testing.T) {
	c := newTestConsole(t)

	w, resp := c.do(t, "GET", "/console/vehicles?status=available&station_id=s1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	state := resp["state"].(map[string]interface{})
	assert.Equal(t, "success", state["state"])
	assert.Len(t, state["items"], 1)
	assert.Equal(t, 1, c.backend.count("GET /api/vehicles"))
}

func TestConsoleHandler_LogoutDropsWorkspace(t *testing.T) {
	c := newTestConsole(t)
	_, _ = c.do(t, "GET", "/console/feedback", nil)
	require.Equal(t, 1, c.reg.Len())

	w, _ := c.do(t, "POST", "/console/logout", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, c.reg.Len())
}

func TestConsoleHandler_CloseFeedbackDropsPendingDelete(t *testing.T) {
	c := newTestConsole(t)
	_, _ = c.do(t, "GET", "/console/feedback", nil)

	w, _ := c.do(t, "POST", "/console/feedback/fb-1/delete", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = c.do(t, "POST", "/console/feedback/fb-1/close", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = c.do(t, "POST", "/console/feedback/fb-1/delete/confirm", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, c.backend.count("DELETE /api/feedback/fb-1"))
}

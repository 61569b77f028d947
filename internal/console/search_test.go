package console

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/ev-rental-console/internal/client"
	"github.com/ukydev/ev-rental-console/internal/models"
)

func reports() []models.MaintenanceReport {
	return []models.MaintenanceReport{
		{ID: "1", Code: "MT-001", Title: "Flat tyre", Status: models.MaintenanceReported,
			VehicleID: models.RefObject(models.Vehicle{ID: "v1", Name: "VinFast Klara", LicensePlate: "59A-12345"})},
		{ID: "2", Code: "MT-002", Title: "Brake noise", Status: models.MaintenanceFixed,
			StationID: models.RefObject(models.Station{ID: "s1", Name: "Quận 1"})},
		{ID: "3", Code: "MT-003", Description: "Battery swelling", Status: models.MaintenanceReported,
			VehicleID: models.RefID[models.Vehicle]("v9")},
	}
}

func TestFilterReports(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query keeps all", "  ", []string{"1", "2", "3"}},
		{"code", "mt-002", []string{"2"}},
		{"title", "TYRE", []string{"1"}},
		{"description", "swelling", []string{"3"}},
		{"plate", "59a", []string{"1"}},
		{"station", "quận", []string{"2"}},
		{"no match", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, r := range FilterReports(reports(), tt.query) {
				got = append(got, r.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDebouncer_RunsOnlyLastTrigger(t *testing.T) {
	mock := clock.NewMock()
	d := NewDebouncer(mock, 600*time.Millisecond)

	fired := make(chan string, 2)
	d.Trigger(func() { fired <- "first" })
	mock.Add(500 * time.Millisecond)
	d.Trigger(func() { fired <- "second" })
	mock.Add(500 * time.Millisecond)
	assert.Empty(t, fired)

	mock.Add(100 * time.Millisecond)
	select {
	case got := <-fired:
		assert.Equal(t, "second", got)
	case <-time.After(time.Second):
		t.Fatal("debounced function did not run")
	}
}

func TestMaintenanceBoard_SearchFiltersCurrentPageWithoutFetching(t *testing.T) {
	e, _, _ := testEnv()
	api := new(MockMaintenanceAPI)
	api.On("List", mock.Anything, client.MaintenanceFilter{}, 1, 10).
		Return(&models.MaintenancePage{Items: reports()}, nil).Once()

	mc := clock.NewMock()
	board := newMaintenanceBoard(
		newListView("maintenance", api.List, client.MaintenanceFilter{}, 10, e),
		NewDebouncer(mc, DefaultSearchDebounce),
	)
	require.NoError(t, board.Reload(context.Background()))

	board.Search("brake")
	snap := board.Board()
	assert.Equal(t, "brake", snap.Typed)
	assert.Equal(t, "", snap.Query)
	assert.Len(t, snap.Visible, 3)

	mc.Add(DefaultSearchDebounce)
	require.Eventually(t, func() bool { return board.Query() == "brake" }, time.Second, 5*time.Millisecond)

	snap = board.Board()
	require.Len(t, snap.Visible, 1)
	assert.Equal(t, "2", snap.Visible[0].ID)
	assert.Len(t, snap.Items, 3)
	api.AssertNumberOfCalls(t, "List", 1)
}

package console

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/ev-rental-console/internal/client"
	"github.com/ukydev/ev-rental-console/internal/models"
	"github.com/ukydev/ev-rental-console/internal/mutation"
)

func pendingComplaint() models.Feedback {
	return models.Feedback{
		ID:        "fb-1",
		Type:      models.FeedbackComplaint,
		Status:    models.FeedbackPending,
		Title:     "Xe hết pin giữa đường",
		Images:    []string{"a.jpg"},
		UserID:    models.RefObject(models.User{ID: "u1", FullName: "Nguyễn Văn A"}),
		StationID: models.RefID[models.Station]("s1"),
	}
}

func TestFeedbackModal_ResolveSuccess(t *testing.T) {
	e, center, audit := testEnv()
	api := new(MockFeedbackAPI)
	resolved := pendingComplaint()
	resolved.Status = models.FeedbackResolved
	resolved.Response = "Đã hoàn tiền"
	resolved.ResolvedBy = models.RefObject(models.Staff{ID: "st1", FullName: "Lê Thị B"})
	api.On("Update", mock.Anything, "fb-1", client.FeedbackUpdate{Status: models.FeedbackResolved, Response: "Đã hoàn tiền"}).
		Return(&resolved, nil)

	reloaded := 0
	m := newFeedbackModal(pendingComplaint(), api, e, func(context.Context) { reloaded++ })

	require.NoError(t, m.Resolve(context.Background(), "  Đã hoàn tiền "))

	view := m.View()
	assert.Equal(t, models.FeedbackResolved, view.Feedback.Status)
	assert.Equal(t, "Lê Thị B", view.ResolverName)
	assert.Equal(t, mutation.StateSuccess, view.State)
	assert.Equal(t, 1, reloaded)
	assert.Equal(t, []string{catalog.T("FeedbackResolved")}, messages(center))

	entries := audit.all()
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionResolveFeedback, entries[0].Action)
	assert.Equal(t, models.AuditSucceeded, entries[0].Outcome)
}

func TestFeedbackModal_ResolveFailureRollsBack(t *testing.T) {
	e, center, audit := testEnv()
	api := new(MockFeedbackAPI)
	api.On("Update", mock.Anything, "fb-1", mock.Anything).Return(nil, rejected("Không thể cập nhật"))

	before := pendingComplaint()
	m := newFeedbackModal(before, api, e, nil)

	err := m.Resolve(context.Background(), "ok")
	require.Error(t, err)

	assert.Equal(t, before, m.Current())
	assert.Equal(t, mutation.StateRolledBack, m.View().State)
	assert.Equal(t, []string{"Không thể cập nhật"}, messages(center))
	require.Len(t, audit.all(), 1)
	assert.Equal(t, models.AuditFailed, audit.all()[0].Outcome)
}

func TestFeedbackModal_ResolveValidation(t *testing.T) {
	t.Run("empty response", func(t *testing.T) {
		e, center, _ := testEnv()
		api := new(MockFeedbackAPI)
		m := newFeedbackModal(pendingComplaint(), api, e, nil)

		err := m.Resolve(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, []string{"Vui lòng nhập phản hồi"}, messages(center))
		api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already resolved", func(t *testing.T) {
		e, center, _ := testEnv()
		api := new(MockFeedbackAPI)
		fb := pendingComplaint()
		fb.Status = models.FeedbackResolved
		m := newFeedbackModal(fb, api, e, nil)

		err := m.Resolve(context.Background(), "again")
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, []string{catalog.T("FeedbackAlreadyResolved")}, messages(center))
		api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestFeedbackModal_RefreshTwiceIsStable(t *testing.T) {
	e, _, _ := testEnv()
	api := new(MockFeedbackAPI)
	server := pendingComplaint()
	server.Comment = "server copy"
	api.On("Get", mock.Anything, "fb-1").Return(&server, nil)

	m := newFeedbackModal(pendingComplaint(), api, e, nil)
	require.NoError(t, m.Refresh(context.Background()))
	first := m.View()
	require.NoError(t, m.Refresh(context.Background()))

	assert.Equal(t, first, m.View())
	assert.Equal(t, "server copy", m.Current().Comment)
}

func TestFeedbackModal_SnapshotIsIndependent(t *testing.T) {
	e, _, _ := testEnv()
	seed := pendingComplaint()
	m := newFeedbackModal(seed, new(MockFeedbackAPI), e, nil)

	seed.Images[0] = "changed.jpg"
	assert.Equal(t, "a.jpg", m.Current().Images[0])
}

func TestFeedbackModal_DeleteNeedsConfirmation(t *testing.T) {
	e, center, _ := testEnv()
	api := new(MockFeedbackAPI)
	api.On("Delete", mock.Anything, "fb-1").Return(nil)
	reloaded := 0
	m := newFeedbackModal(pendingComplaint(), api, e, func(context.Context) { reloaded++ })

	assert.ErrorIs(t, m.ConfirmDelete(context.Background()), ErrNotRequested)
	api.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	require.NoError(t, m.RequestDelete())
	require.NoError(t, m.CancelDelete())
	assert.ErrorIs(t, m.ConfirmDelete(context.Background()), ErrNotRequested)

	require.NoError(t, m.RequestDelete())
	require.NoError(t, m.ConfirmDelete(context.Background()))

	assert.True(t, m.Deleted())
	assert.Equal(t, 1, reloaded)
	assert.Equal(t, []string{catalog.T("FeedbackDeleted")}, messages(center))
	api.AssertNumberOfCalls(t, "Delete", 1)
}

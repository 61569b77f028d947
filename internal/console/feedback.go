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

// FeedbackList is the list view type of the feedback page.
type FeedbackList = ListView[models.Feedback, models.FeedbackStats, client.FeedbackFilter]

// FeedbackView is the feedback page with the derived percentages.
type FeedbackView struct {
	ListSnapshot[models.Feedback, models.FeedbackStats, client.FeedbackFilter]
	ComplaintPercentage int `json:"complaint_percentage"`
	ResolvedPercentage  int `json:"resolved_percentage"`
}

// NewFeedbackView derives the page header figures from a snapshot.
func NewFeedbackView(s ListSnapshot[models.Feedback, models.FeedbackStats, client.FeedbackFilter]) FeedbackView {
	return FeedbackView{
		ListSnapshot:        s,
		ComplaintPercentage: s.Stats.ComplaintPercentage(),
		ResolvedPercentage:  s.Stats.ResolvedPercentage(),
	}
}

// ChangedFunc tells the parent list to refetch.
type ChangedFunc func(ctx context.Context)

// FeedbackModal is the detail/action modal of one feedback. It works on its
// own copy of the entity; the parent list is only ever refetched.
type FeedbackModal struct {
	id        string
	api       FeedbackAPI
	env       env
	onChanged ChangedFunc
	state     *mutation.Mutation[models.Feedback]
	del       *DeleteConfirm
}

// FeedbackModalView is the JSON form of the modal.
type FeedbackModalView struct {
	Feedback     models.Feedback `json:"feedback"`
	State        mutation.State  `json:"state"`
	Submitting   bool            `json:"submitting"`
	DeleteState  ConfirmState    `json:"delete_state"`
	UserName     string          `json:"user_name,omitempty"`
	StationName  string          `json:"station_name,omitempty"`
	StaffName    string          `json:"staff_name,omitempty"`
	ResolverName string          `json:"resolver_name,omitempty"`
}

func newFeedbackModal(snapshot models.Feedback, api FeedbackAPI, e env, onChanged ChangedFunc) *FeedbackModal {
	m := &FeedbackModal{
		id:        snapshot.ID,
		api:       api,
		env:       e,
		onChanged: onChanged,
		state:     mutation.New(snapshot, models.Feedback.Clone),
	}
	m.del = NewDeleteConfirm(m.delete)
	return m
}

// ID returns the feedback id.
func (m *FeedbackModal) ID() string { return m.id }

// Current returns the modal's copy of the feedback.
func (m *FeedbackModal) Current() models.Feedback {
	return m.state.Value()
}

// reseed rebinds an idle modal to a list row that is at least as recent
// as its own copy.
func (m *FeedbackModal) reseed(row models.Feedback) {
	if m.state.Pending() || m.del.State() != ConfirmIdle {
		return
	}
	if row.UpdatedAt.Before(m.state.Value().UpdatedAt) {
		return
	}
	_ = m.state.Replace(row)
}

// View renders the modal state.
func (m *FeedbackModal) View() FeedbackModalView {
	fb := m.state.Value()
	return FeedbackModalView{
		Feedback:     fb,
		State:        m.state.State(),
		Submitting:   m.state.Pending(),
		DeleteState:  m.del.State(),
		UserName:     models.ResolveObject(fb.UserID).FullName,
		StationName:  models.ResolveObject(fb.StationID).Name,
		StaffName:    models.ResolveObject(fb.StaffID).FullName,
		ResolverName: models.ResolveObject(fb.ResolvedBy).FullName,
	}
}

// Refresh replaces the local copy with the server's.
func (m *FeedbackModal) Refresh(ctx context.Context) error {
	fb, err := m.api.Get(ctx, m.id)
	if err != nil {
		m.env.fail(err)
		return err
	}
	if err := m.state.Replace(*fb); err != nil {
		return err
	}
	return nil
}

// Resolve answers a pending complaint.
func (m *FeedbackModal) Resolve(ctx context.Context, response string) error {
	response = strings.TrimSpace(response)
	if response == "" {
		return m.env.validation(locales.MsgResponseRequired)
	}
	if !m.state.Value().CanResolve() {
		return m.env.validation(locales.MsgFeedbackAlreadyResolved)
	}

	update := client.FeedbackUpdate{Status: models.FeedbackResolved, Response: response}
	_, err := m.state.Submit(ctx,
		func(f *models.Feedback) {
			f.Status = models.FeedbackResolved
			f.Response = response
		},
		func(ctx context.Context, _ models.Feedback) (models.Feedback, error) {
			fb, err := m.api.Update(ctx, m.id, update)
			if err != nil {
				return models.Feedback{}, err
			}
			return *fb, nil
		})
	if errors.Is(err, mutation.ErrInFlight) {
		return err
	}
	m.env.record(ctx, models.ActionResolveFeedback, "feedback", m.id, err)
	if err != nil {
		m.env.fail(err)
		return err
	}
	m.env.succeed(locales.MsgFeedbackResolved)
	m.changed(ctx)
	return nil
}

// RequestDelete is the first step of a delete.
func (m *FeedbackModal) RequestDelete() error { return m.del.Request() }

// CancelDelete withdraws a delete request.
func (m *FeedbackModal) CancelDelete() error { return m.del.Cancel() }

// ConfirmDelete soft-deletes the feedback after a prior RequestDelete.
func (m *FeedbackModal) ConfirmDelete(ctx context.Context) error { return m.del.Confirm(ctx) }

// Deleted reports whether the feedback was deleted through this modal.
func (m *FeedbackModal) Deleted() bool { return m.del.State() == ConfirmDeleted }

func (m *FeedbackModal) delete(ctx context.Context) error {
	err := m.api.Delete(ctx, m.id)
	m.env.record(ctx, models.ActionDeleteFeedback, "feedback", m.id, err)
	if err != nil {
		m.env.fail(err)
		return err
	}
	m.env.succeed(locales.MsgFeedbackDeleted)
	m.changed(ctx)
	return nil
}

func (m *FeedbackModal) changed(ctx context.Context) {
	if m.onChanged != nil {
		m.onChanged(ctx)
	}
}

package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/ukydev/ev-rental-console/internal/models"
)

// FeedbackFilter holds the recognised list filters. Empty fields are omitted.
type FeedbackFilter struct {
	Type      models.FeedbackType   `json:"type,omitempty"`
	Status    models.FeedbackStatus `json:"status,omitempty"`
	Category  string                `json:"category,omitempty"`
	StationID string                `json:"station_id,omitempty"`
	Search    string                `json:"search,omitempty"`
}

// FeedbackUpdate is the body of PUT /api/feedback/{id}.
type FeedbackUpdate struct {
	Status   models.FeedbackStatus `json:"status,omitempty"`
	Response string                `json:"response,omitempty"`
}

// FeedbackService wraps the feedback endpoints.
type FeedbackService struct {
	t *Transport
}

// NewFeedbackService creates a feedback service on top of t.
func NewFeedbackService(t *Transport) *FeedbackService {
	return &FeedbackService{t: t}
}

// List returns one page of feedback.
func (s *FeedbackService) List(ctx context.Context, f FeedbackFilter, page, limit int) (*models.FeedbackPage, error) {
	q := url.Values{}
	setIf(q, "type", string(f.Type))
	setIf(q, "status", string(f.Status))
	setIf(q, "category", f.Category)
	setIf(q, "station_id", f.StationID)
	setIf(q, "search", f.Search)
	setPaging(q, page, limit)

	var out models.FeedbackPage
	if err := s.t.get(ctx, "/api/feedback", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a single feedback.
func (s *FeedbackService) Get(ctx context.Context, id string) (*models.Feedback, error) {
	var out models.Feedback
	if err := s.t.get(ctx, "/api/feedback/"+escape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update changes a feedback and returns the server's copy.
func (s *FeedbackService) Update(ctx context.Context, id string, u FeedbackUpdate) (*models.Feedback, error) {
	var out models.Feedback
	if err := s.t.put(ctx, "/api/feedback/"+escape(id), u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete soft-deletes a feedback.
func (s *FeedbackService) Delete(ctx context.Context, id string) error {
	return s.t.delete(ctx, "/api/feedback/"+escape(id))
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setPaging(q url.Values, page, limit int) {
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
}

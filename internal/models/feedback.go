package models

import (
	"math"
	"time"
)

// FeedbackType discriminates ratings from complaints.
type FeedbackType string

const (
	FeedbackRating    FeedbackType = "rating"
	FeedbackComplaint FeedbackType = "complaint"
)

// FeedbackStatus is only meaningful for complaints.
type FeedbackStatus string

const (
	FeedbackPending  FeedbackStatus = "pending"
	FeedbackResolved FeedbackStatus = "resolved"
)

// Feedback represents a customer rating or complaint.
type Feedback struct {
	ID         string         `json:"_id"`
	Type       FeedbackType   `json:"type"`
	Status     FeedbackStatus `json:"status,omitempty"`
	Category   string         `json:"category,omitempty"`
	Rating     int            `json:"overall_rating,omitempty"`
	Title      string         `json:"title,omitempty"`
	Content    string         `json:"content,omitempty"`
	Comment    string         `json:"comment,omitempty"`
	Images     []string       `json:"images,omitempty"`
	Response   string         `json:"response,omitempty"`
	ResolvedBy Ref[Staff]     `json:"resolved_by"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
	IsActive   bool           `json:"is_active"`
	UserID     Ref[User]      `json:"user_id"`
	StaffID    Ref[Staff]     `json:"staff_id"`
	RentalID   Ref[Rental]    `json:"rental_id"`
	StationID  Ref[Station]   `json:"station_id"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (f Feedback) GetID() string { return f.ID }

// IsComplaint reports whether the feedback is a complaint.
func (f Feedback) IsComplaint() bool {
	return f.Type == FeedbackComplaint
}

// CanResolve reports whether the pending -> resolved transition is still open.
func (f Feedback) CanResolve() bool {
	return f.IsComplaint() && f.Status != FeedbackResolved
}

// Clone returns a copy that shares no slices with f.
func (f Feedback) Clone() Feedback {
	out := f
	if f.Images != nil {
		out.Images = append([]string(nil), f.Images...)
	}
	if f.ResolvedAt != nil {
		t := *f.ResolvedAt
		out.ResolvedAt = &t
	}
	return out
}

// FeedbackStats is the aggregate returned alongside a feedback listing.
type FeedbackStats struct {
	Total         int     `json:"total"`
	Ratings       int     `json:"ratings"`
	Complaints    int     `json:"complaints"`
	Pending       int     `json:"pending"`
	Resolved      int     `json:"resolved"`
	AverageRating float64 `json:"average_rating"`
}

// ComplaintPercentage is the share of complaints, rounded to a whole percent.
func (s FeedbackStats) ComplaintPercentage() int {
	if s.Total <= 0 {
		return 0
	}
	return int(math.Round(float64(s.Complaints) * 100 / float64(s.Total)))
}

// ResolvedPercentage is the share of complaints already resolved.
func (s FeedbackStats) ResolvedPercentage() int {
	if s.Complaints <= 0 {
		return 0
	}
	return int(math.Round(float64(s.Resolved) * 100 / float64(s.Complaints)))
}

package models

import "time"

// User is an end customer of the rental platform.
type User struct {
	ID       string `json:"_id"`
	FullName string `json:"fullname,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

func (u User) GetID() string { return u.ID }

// Rental is a single vehicle rental.
type Rental struct {
	ID        string       `json:"_id"`
	Code      string       `json:"code,omitempty"`
	Status    string       `json:"status,omitempty"`
	VehicleID Ref[Vehicle] `json:"vehicle_id"`
	StartTime *time.Time   `json:"start_time,omitempty"`
	EndTime   *time.Time   `json:"end_time,omitempty"`
}

func (r Rental) GetID() string { return r.ID }

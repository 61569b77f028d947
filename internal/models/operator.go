package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents operator roles in the console
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
	RoleViewer  Role = "viewer"
)

// Console actions checked by HasPermission.
const (
	ActionViewFeedback      = "view_feedback"
	ActionResolveFeedback   = "resolve_feedback"
	ActionDeleteFeedback    = "delete_feedback"
	ActionViewMaintenance   = "view_maintenance"
	ActionUpdateMaintenance = "update_maintenance"
	ActionDeleteMaintenance = "delete_maintenance"
	ActionViewStations      = "view_stations"
	ActionUseChat           = "use_chat"
	ActionManageOperators   = "manage_operators"
)

// Operator is an account allowed to sign in to the console
type Operator struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	FullName     string             `bson:"full_name" json:"full_name"`
	StationID    string             `bson:"station_id,omitempty" json:"station_id,omitempty"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateOperatorRequest is the body of an operator creation request
type CreateOperatorRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"full_name"`
	Role      Role   `json:"role"`
	StationID string `json:"station_id"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token    string   `json:"token"`
	Operator Operator `json:"operator"`
}

// Claims represents JWT claims
type Claims struct {
	OperatorID string `json:"operator_id"`
	Username   string `json:"username"`
	Role       Role   `json:"role"`
	Exp        int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleStaff, RoleViewer:
		return true
	default:
		return false
	}
}

// HasPermission checks if the role may perform a console action
func (r Role) HasPermission(action string) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleManager:
		return action != ActionManageOperators
	case RoleStaff:
		return action == ActionViewFeedback || action == ActionResolveFeedback ||
			action == ActionViewMaintenance || action == ActionUpdateMaintenance ||
			action == ActionViewStations || action == ActionUseChat
	case RoleViewer:
		return action == ActionViewFeedback || action == ActionViewMaintenance ||
			action == ActionViewStations
	default:
		return false
	}
}

// HasPermission checks if an operator has permission for a specific action
func (o *Operator) HasPermission(action string) bool {
	return o.IsActive && o.Role.HasPermission(action)
}

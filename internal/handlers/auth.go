package handlers

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ev-rental-console/internal/auth"
	"github.com/ukydev/ev-rental-console/internal/db"
	"github.com/ukydev/ev-rental-console/internal/middleware"
	"github.com/ukydev/ev-rental-console/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHandler handles operator sign-in and account management
type AuthHandler struct {
	authService *auth.Service
	operators   db.OperatorCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, operators db.OperatorCollection) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		operators:   operators,
	}
}

// Login handles operator login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	op, err := h.operators.FindOperatorByUsername(r.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, db.ErrOperatorNotFound) {
			log.WithError(err).Error("Failed to look up operator")
		}
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !op.IsActive {
		writeError(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	if !h.authService.CheckPassword(req.Password, op.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.authService.GenerateToken(op)
	if err != nil {
		log.WithError(err).Error("Failed to sign token")
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	if err := h.operators.UpdateLastLogin(r.Context(), op.ID.Hex()); err != nil {
		log.WithError(err).WithField("operator_id", op.ID.Hex()).Warn("Failed to update last login")
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{Token: token, Operator: *op})
}

// Profile returns the signed-in operator
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetOperatorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Operator context not found")
		return
	}

	op, err := h.operators.FindOperatorByID(r.Context(), claims.OperatorID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Operator not found")
		return
	}

	writeJSON(w, http.StatusOK, op)
}

// CreateOperator adds a console account
func (h *AuthHandler) CreateOperator(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOperatorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := h.authService.ValidateUsername(req.Username); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authService.ValidateEmail(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !models.IsValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	if _, err := h.operators.FindOperatorByUsername(r.Context(), req.Username); err == nil {
		writeError(w, http.StatusConflict, "Username already exists")
		return
	}
	if _, err := h.operators.FindOperatorByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusConflict, "Email already exists")
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	op := models.Operator{
		ID:           primitive.NewObjectID(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		FullName:     req.FullName,
		StationID:    req.StationID,
		IsActive:     true,
	}
	if err := h.operators.InsertOperator(r.Context(), op); err != nil {
		log.WithError(err).Error("Failed to insert operator")
		writeError(w, http.StatusInternalServerError, "Failed to create operator")
		return
	}

	log.WithFields(log.Fields{
		"username": op.Username,
		"role":     op.Role,
	}).Info("Operator created")
	writeJSON(w, http.StatusCreated, op)
}

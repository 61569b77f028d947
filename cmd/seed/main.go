package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ev-rental-console/internal/auth"
	"github.com/ukydev/ev-rental-console/internal/config"
	"github.com/ukydev/ev-rental-console/internal/db"
	"github.com/ukydev/ev-rental-console/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// seedOperator creates the operator described by req unless the username is
// already taken. It reports whether a new account was inserted.
func seedOperator(ctx context.Context, ops db.OperatorCollection, svc *auth.Service, req models.CreateOperatorRequest) (*models.Operator, bool, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	existing, err := ops.FindOperatorByUsername(ctx, req.Username)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, db.ErrOperatorNotFound):
		return nil, false, fmt.Errorf("look up %q: %w", req.Username, err)
	}

	if err := svc.ValidateUsername(req.Username); err != nil {
		return nil, false, err
	}
	if err := svc.ValidateEmail(req.Email); err != nil {
		return nil, false, err
	}
	if err := svc.ValidatePassword(req.Password); err != nil {
		return nil, false, err
	}
	if !models.IsValidRole(req.Role) {
		return nil, false, fmt.Errorf("invalid role %q", req.Role)
	}

	hash, err := svc.HashPassword(req.Password)
	if err != nil {
		return nil, false, err
	}
	now := time.Now()
	op := models.Operator{
		ID:           primitive.NewObjectID(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		FullName:     req.FullName,
		StationID:    req.StationID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := ops.InsertOperator(ctx, op); err != nil {
		return nil, false, fmt.Errorf("insert %q: %w", req.Username, err)
	}
	return &op, true, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func main() {
	var req models.CreateOperatorRequest
	var role string
	flag.StringVar(&req.Username, "username", getEnv("SEED_USERNAME", "admin"), "operator username")
	flag.StringVar(&req.Email, "email", getEnv("SEED_EMAIL", "admin@example.com"), "operator email")
	flag.StringVar(&req.Password, "password", os.Getenv("SEED_PASSWORD"), "operator password")
	flag.StringVar(&req.FullName, "name", getEnv("SEED_FULL_NAME", "Administrator"), "operator full name")
	flag.StringVar(&role, "role", getEnv("SEED_ROLE", string(models.RoleAdmin)), "operator role")
	flag.Parse()
	req.Role = models.Role(role)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		log.Fatalf("Failed to create auth service: %v", err)
	}

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer client.Disconnect(ctx)

	database := client.Database(cfg.MongoDatabase)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.WithError(err).Warn("Failed to ensure indexes")
	}
	ops := &db.MongoOperatorCollection{Collection: database.Collection(db.OperatorsCollection)}

	op, created, err := seedOperator(ctx, ops, authService, req)
	if err != nil {
		log.WithError(err).Fatal("Seeding operator failed")
	}
	fields := log.Fields{"username": op.Username, "role": op.Role, "id": op.ID.Hex()}
	if created {
		log.WithFields(fields).Info("Operator created")
	} else {
		log.WithFields(fields).Info("Operator already exists, nothing to do")
	}
}

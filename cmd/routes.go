package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"github.com/ukydev/ev-rental-console/internal/middleware"
	"github.com/ukydev/ev-rental-console/internal/models"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(middleware.RecoverPanic, middleware.LogRequest, middleware.SecureHeaders, middleware.MakeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.auth.Authenticate)
	can := func(action string) alice.Chain {
		return authMiddleware.Append(app.auth.RequirePermission(action))
	}
	loginMiddleware := standardMiddleware.Append(app.limiter.RateLimit(10, 60))

	h := app.consoleHandler
	mux := pat.New()

	mux.Get("/health", standardMiddleware.ThenFunc(health))

	// Auth
	mux.Post("/api/auth/login", loginMiddleware.ThenFunc(app.authHandler.Login))
	mux.Get("/api/auth/profile", authMiddleware.ThenFunc(app.authHandler.Profile))
	mux.Post("/api/operators", can(models.ActionManageOperators).ThenFunc(app.authHandler.CreateOperator))

	// Feedback
	mux.Get("/console/feedback", can(models.ActionViewFeedback).ThenFunc(h.ListFeedback))
	mux.Get("/console/feedback/:id", can(models.ActionViewFeedback).ThenFunc(h.GetFeedback))
	mux.Post("/console/feedback/:id/refresh", can(models.ActionViewFeedback).ThenFunc(h.RefreshFeedback))
	mux.Post("/console/feedback/:id/resolve", can(models.ActionResolveFeedback).ThenFunc(h.ResolveFeedback))
	mux.Post("/console/feedback/:id/delete", can(models.ActionDeleteFeedback).ThenFunc(h.RequestFeedbackDelete))
	mux.Post("/console/feedback/:id/delete/confirm", can(models.ActionDeleteFeedback).ThenFunc(h.ConfirmFeedbackDelete))
	mux.Post("/console/feedback/:id/delete/cancel", can(models.ActionDeleteFeedback).ThenFunc(h.CancelFeedbackDelete))
	mux.Post("/console/feedback/:id/close", can(models.ActionViewFeedback).ThenFunc(h.CloseFeedback))

	// Maintenance
	mux.Get("/console/maintenance", can(models.ActionViewMaintenance).ThenFunc(h.ListMaintenance))
	mux.Get("/console/maintenance/:id", can(models.ActionViewMaintenance).ThenFunc(h.GetMaintenance))
	mux.Post("/console/maintenance/:id/refresh", can(models.ActionViewMaintenance).ThenFunc(h.RefreshMaintenance))
	mux.Post("/console/maintenance/:id/update", can(models.ActionUpdateMaintenance).ThenFunc(h.UpdateMaintenance))
	mux.Post("/console/maintenance/:id/delete", can(models.ActionDeleteMaintenance).ThenFunc(h.RequestMaintenanceDelete))
	mux.Post("/console/maintenance/:id/delete/confirm", can(models.ActionDeleteMaintenance).ThenFunc(h.ConfirmMaintenanceDelete))
	mux.Post("/console/maintenance/:id/delete/cancel", can(models.ActionDeleteMaintenance).ThenFunc(h.CancelMaintenanceDelete))
	mux.Post("/console/maintenance/:id/close", can(models.ActionViewMaintenance).ThenFunc(h.CloseMaintenance))

	// Stations
	mux.Get("/console/stations", can(models.ActionViewStations).ThenFunc(h.ListStations))
	mux.Get("/console/stations/:id", can(models.ActionViewStations).ThenFunc(h.GetStation))
	mux.Get("/console/vehicles", can(models.ActionViewStations).ThenFunc(h.ListVehicles))

	// Chat
	mux.Post("/console/chat/open", can(models.ActionUseChat).ThenFunc(h.OpenChat))
	mux.Post("/console/chat/close", can(models.ActionUseChat).ThenFunc(h.CloseChat))
	mux.Post("/console/chat/messages", can(models.ActionUseChat).ThenFunc(h.SendChat))
	mux.Post("/console/chat/new", can(models.ActionUseChat).ThenFunc(h.NewChat))
	mux.Get("/console/chat", can(models.ActionUseChat).ThenFunc(h.GetChat))

	// Notifications
	mux.Get("/console/notifications", authMiddleware.ThenFunc(h.ListNotifications))
	mux.Del("/console/notifications/:id", authMiddleware.ThenFunc(h.DismissNotification))

	mux.Post("/console/logout", authMiddleware.ThenFunc(h.Logout))
	mux.Get("/console/audit", can(models.ActionManageOperators).ThenFunc(h.ListAudit))

	return mux
}

// handler wraps the routes with CORS.
func (app *application) handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   app.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
	})
	return c.Handler(app.routes())
}

func health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

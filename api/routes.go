package api

import (
	"net/http"

	"github.com/garnizeh/jobboard/internal/account"
	"github.com/garnizeh/jobboard/internal/activity"
	"github.com/garnizeh/jobboard/internal/board"
	"github.com/garnizeh/jobboard/internal/config"
	"github.com/garnizeh/jobboard/internal/moderation"
	"github.com/garnizeh/jobboard/internal/notify"
	"github.com/garnizeh/jobboard/internal/ratelimit"
	"github.com/garnizeh/jobboard/internal/review"
	"github.com/garnizeh/jobboard/pkg/repository"
	"github.com/gorilla/mux"
)

// Services is the service graph the router dispatches to.
type Services struct {
	Users      repository.UserRepo
	Accounts   *account.Service
	Moderation *moderation.Service
	Board      *board.Service
	Reviews    *review.Service
	Inbox      *notify.Inbox
	Activity   *activity.Service
	// Limiter may be nil, which disables rate limiting.
	Limiter *ratelimit.Limiter
	DB      Pinger
}

func SetupRoutes(cfg *config.Config, version, buildTime string, svc *Services) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(RateLimitMiddleware(svc.Limiter))

	// Create handlers
	systemHandler := &SystemHandler{DB: svc.DB}
	authHandler := NewAuthHandler(svc.Accounts, cfg.JWTSecret, cfg.TokenDuration)
	meHandler := NewMeHandler(svc.Accounts)
	moderationHandler := NewModerationHandler(svc.Moderation)
	boardHandler := NewBoardHandler(svc.Board)
	reviewsHandler := NewReviewsHandler(svc.Reviews)
	notificationsHandler := NewNotificationsHandler(svc.Inbox)
	activitiesHandler := NewActivitiesHandler(svc.Activity)
	schemasHandler := NewSchemasHandler(svc.Activity)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods(http.MethodGet)
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods(http.MethodPost)
	r.HandleFunc("/v1/jobs", boardHandler.ListJobs).Methods(http.MethodGet)
	r.HandleFunc("/v1/jobs/{id:[0-9]+}", boardHandler.GetJob).Methods(http.MethodGet)
	r.HandleFunc("/v1/jobs/{id:[0-9]+}/reviews", reviewsHandler.ListByJob).Methods(http.MethodGet)

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))
	apiV1.Use(LoadUserMiddleware(svc.Users))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods(http.MethodPost)

	// Account
	apiV1.HandleFunc("/me", meHandler.Get).Methods(http.MethodGet)
	apiV1.HandleFunc("/me", meHandler.Update).Methods(http.MethodPatch)
	apiV1.HandleFunc("/me/active-role", meHandler.SwitchActiveRole).Methods(http.MethodPost)

	// Submissions
	apiV1.HandleFunc("/employer-profile", moderationHandler.SubmitEmployerProfile).Methods(http.MethodPost)
	apiV1.HandleFunc("/employer-profile", moderationHandler.GetEmployerProfile).Methods(http.MethodGet)
	apiV1.HandleFunc("/jobs", moderationHandler.SubmitJob).Methods(http.MethodPost)
	apiV1.HandleFunc("/role-requests", moderationHandler.SubmitRoleRequest).Methods(http.MethodPost)
	apiV1.HandleFunc("/my/jobs", boardHandler.MyJobs).Methods(http.MethodGet)
	apiV1.HandleFunc("/my/subjects/{kind}/{id:[0-9]+}", moderationHandler.Get).Methods(http.MethodGet)

	// Applications
	apiV1.HandleFunc("/jobs/{id:[0-9]+}/applications", boardHandler.Apply).Methods(http.MethodPost)
	apiV1.HandleFunc("/jobs/{id:[0-9]+}/applications", boardHandler.JobApplications).Methods(http.MethodGet)
	apiV1.HandleFunc("/my/applications", boardHandler.MyApplications).Methods(http.MethodGet)
	apiV1.HandleFunc("/applications/{id:[0-9]+}", boardHandler.SetApplicationStatus).Methods(http.MethodPatch)

	// Reviews
	apiV1.HandleFunc("/jobs/{id:[0-9]+}/reviews", reviewsHandler.Create).Methods(http.MethodPost)
	apiV1.HandleFunc("/reviews/{id:[0-9]+}", reviewsHandler.Update).Methods(http.MethodPatch)
	apiV1.HandleFunc("/reviews/{id:[0-9]+}", reviewsHandler.Delete).Methods(http.MethodDelete)
	apiV1.HandleFunc("/reviews/{id:[0-9]+}/flags", reviewsHandler.Flag).Methods(http.MethodPost)
	apiV1.HandleFunc("/reviews/{id:[0-9]+}/votes", reviewsHandler.Vote).Methods(http.MethodPost)

	// Notifications
	apiV1.HandleFunc("/notifications", notificationsHandler.List).Methods(http.MethodGet)
	apiV1.HandleFunc("/notifications/unread-count", notificationsHandler.UnreadCount).Methods(http.MethodGet)
	apiV1.HandleFunc("/notifications/read-all", notificationsHandler.MarkAllRead).Methods(http.MethodPost)
	apiV1.HandleFunc("/notifications/{id:[0-9]+}/read", notificationsHandler.MarkRead).Methods(http.MethodPost)
	apiV1.HandleFunc("/notifications/{id:[0-9]+}", notificationsHandler.Delete).Methods(http.MethodDelete)

	// Activities endpoints
	apiV1.HandleFunc("/activities", activitiesHandler.ListMine).Methods(http.MethodGet)

	// Admin routes; the role is checked against the stored user.
	admin := apiV1.PathPrefix("/admin").Subrouter()
	admin.Use(RequireAdmin)
	admin.HandleFunc("/moderation/{kind}", moderationHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/moderation/{kind}/{id:[0-9]+}", moderationHandler.Get).Methods(http.MethodGet)
	admin.HandleFunc("/moderation/{kind}/{id:[0-9]+}/approve", moderationHandler.Approve).Methods(http.MethodPost)
	admin.HandleFunc("/moderation/{kind}/{id:[0-9]+}/reject", moderationHandler.Reject).Methods(http.MethodPost)
	admin.HandleFunc("/reviews/{id:[0-9]+}/status", reviewsHandler.SetStatus).Methods(http.MethodPut)
	admin.HandleFunc("/notifications", notificationsHandler.ClearAll).Methods(http.MethodDelete)
	admin.HandleFunc("/activities", activitiesHandler.ListAll).Methods(http.MethodGet)
	admin.HandleFunc("/activities", activitiesHandler.ClearAll).Methods(http.MethodDelete)
	admin.HandleFunc("/schemas", schemasHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/schemas/{type}", schemasHandler.Get).Methods(http.MethodGet)
	admin.HandleFunc("/schemas/{type}", schemasHandler.Put).Methods(http.MethodPut)
	admin.HandleFunc("/schemas/{type}", schemasHandler.Delete).Methods(http.MethodDelete)

	return r
}

package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"shg-service/internal/middleware"
	"shg-service/pkg/utils"
)

// Router builds the application's routes and middleware chain
func (h *Handler) Router() *mux.Router {
	cfg := h.deps.Config

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.SecurityMiddleware(cfg.Security))
	router.Use(h.deps.Metrics.Middleware)

	// Public routes
	router.HandleFunc("/health", Health).Methods(http.MethodGet)
	router.Handle("/metrics", h.deps.Metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/register", h.User.Register).Methods(http.MethodPost)
	router.HandleFunc("/login", h.User.Login).Methods(http.MethodPost)

	// Protected routes with middleware
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.LogMiddleware(h.deps.Logger))
	api.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RequestsPerMinute))

	api.HandleFunc("/me", h.User.GetUser).Methods(http.MethodGet)
	api.HandleFunc("/groups", h.Group.Create).Methods(http.MethodPost)
	api.HandleFunc("/groups", h.Group.GetAll).Methods(http.MethodGet)

	// Group endpoints, leader only
	group := api.PathPrefix("/groups/{id:[0-9]+}").Subrouter()
	group.Use(middleware.GroupAccessMiddleware(h.deps.Services.Group, h.deps.Logger))

	group.HandleFunc("", h.Group.GetByID).Methods(http.MethodGet)
	group.HandleFunc("", h.Group.Update).Methods(http.MethodPatch)
	group.HandleFunc("/members", h.Group.AddMember).Methods(http.MethodPost)
	group.HandleFunc("/members", h.Group.GetMembers).Methods(http.MethodGet)
	group.HandleFunc("/late-fine-rule", h.Group.GetLateFineRule).Methods(http.MethodGet)
	group.HandleFunc("/late-fine-rule", h.Group.SetLateFineRule).Methods(http.MethodPut)

	group.HandleFunc("/loans", h.Loan.Create).Methods(http.MethodPost)
	group.HandleFunc("/loans", h.Loan.GetAll).Methods(http.MethodGet)
	group.HandleFunc("/loans/repay", h.Loan.Repay).Methods(http.MethodPost)

	group.HandleFunc("/periods", h.Period.Open).Methods(http.MethodPost)
	group.HandleFunc("/periods", h.Period.GetAll).Methods(http.MethodGet)
	group.HandleFunc("/periods/current", h.Period.GetCurrent).Methods(http.MethodGet)
	group.HandleFunc("/periods/close", h.Period.CloseCurrent).Methods(http.MethodPost)
	group.HandleFunc("/periods/{periodId:[0-9]+}/close", h.Period.Close).Methods(http.MethodPost)
	group.HandleFunc("/periods/{periodId:[0-9]+}/report.xml", h.Report.PeriodXML).Methods(http.MethodGet)

	group.HandleFunc("/contributions/current", h.Contribution.GetCurrent).Methods(http.MethodGet)
	group.HandleFunc("/contributions/current", h.Contribution.UpsertCurrent).Methods(http.MethodPost)
	group.HandleFunc("/contributions/{contributionId:[0-9]+}", h.Contribution.RecordPayment).Methods(http.MethodPatch)

	group.HandleFunc("/summary", h.Report.GetSummary).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return router
}

// Health reports that the process is serving requests
func Health(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithSuccess(w, http.StatusOK, "ok", nil)
}

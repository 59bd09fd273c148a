// Package server assembles the HTTP API.
package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/yusufkecer/medfit-backend/internal/config"
	"github.com/yusufkecer/medfit-backend/internal/db"
	"github.com/yusufkecer/medfit-backend/internal/events"
	"github.com/yusufkecer/medfit-backend/internal/handler"
	"github.com/yusufkecer/medfit-backend/internal/metrics"
	"github.com/yusufkecer/medfit-backend/internal/middleware"
	"github.com/yusufkecer/medfit-backend/internal/repository"
	"github.com/yusufkecer/medfit-backend/internal/service"
)

const maxBodyBytes = 1 << 20

// Deps are the long-lived collaborators of the router.
type Deps struct {
	Config    *config.Config
	DB        *sql.DB
	Dialect   db.Dialect
	Profile   metrics.Profile
	Publisher events.Publisher
	Mailer    handler.Mailer
}

// NewRouter wires repositories, services and handlers onto a mux router.
func NewRouter(d Deps) *mux.Router {
	cfg := d.Config

	accountRepo := repository.NewAccountRepository(d.DB, d.Dialect)
	resetTokenRepo := repository.NewResetTokenRepository(d.DB, d.Dialect)
	clientRepo := repository.NewClientRepository(d.DB, d.Dialect)
	assessmentRepo := repository.NewAssessmentRepository(d.DB, d.Dialect)

	assessmentService := service.NewAssessmentService(clientRepo, assessmentRepo, d.Publisher, d.Profile)
	clientService := service.NewClientService(clientRepo, assessmentService)

	authHandler := handler.NewAuthHandler(cfg.JWTSecret, accountRepo, resetTokenRepo, d.Mailer)
	clientHandler := handler.NewClientHandler(clientService)
	assessmentHandler := handler.NewAssessmentHandler(assessmentService, d.Profile)
	calculateHandler := handler.NewCalculateHandler(d.Profile)

	loginRL := middleware.NewRateLimiter(5, 15*time.Minute)
	forgotPasswordRL := middleware.NewRateLimiter(3, 60*time.Minute)

	r := mux.NewRouter()

	// Global middleware: request log → CORS → security headers → body limit
	r.Use(middleware.RequestLogger)
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	})

	r.HandleFunc("/api/v1/health", healthHandler(d.DB)).Methods(http.MethodGet, http.MethodOptions)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.APIKeyMiddleware(cfg.APIKey))

	api.Handle("/auth/register", http.HandlerFunc(authHandler.Register)).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/auth/login", loginRL.Middleware(http.HandlerFunc(authHandler.Login))).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/auth/forgot-password", forgotPasswordRL.Middleware(http.HandlerFunc(authHandler.ForgotPassword))).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/auth/reset-password", http.HandlerFunc(authHandler.ResetPassword)).Methods(http.MethodPost, http.MethodOptions)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	protected.HandleFunc("/calculate", calculateHandler.Calculate).Methods(http.MethodPost, http.MethodOptions)

	protected.HandleFunc("/clients", clientHandler.Create).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/clients", clientHandler.GetAll).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/clients/stats", clientHandler.Stats).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/clients/{id:[0-9]+}", clientHandler.GetByID).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/clients/{id:[0-9]+}", clientHandler.Update).Methods(http.MethodPut, http.MethodOptions)
	protected.HandleFunc("/clients/{id:[0-9]+}", clientHandler.Delete).Methods(http.MethodDelete, http.MethodOptions)
	protected.HandleFunc("/clients/{id:[0-9]+}/assessments", assessmentHandler.GetByClientID).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/clients/{id:[0-9]+}/assessments/latest", assessmentHandler.Latest).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/clients/{id:[0-9]+}/history", assessmentHandler.History).Methods(http.MethodGet, http.MethodOptions)

	protected.HandleFunc("/assessments", assessmentHandler.Create).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/assessments", assessmentHandler.GetAll).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/assessments/period", assessmentHandler.Period).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/assessments/stats", assessmentHandler.Stats).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/assessments/{id:[0-9]+}", assessmentHandler.GetByID).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/assessments/{id:[0-9]+}", assessmentHandler.Update).Methods(http.MethodPut, http.MethodOptions)
	protected.HandleFunc("/assessments/{id:[0-9]+}", assessmentHandler.Delete).Methods(http.MethodDelete, http.MethodOptions)
	protected.HandleFunc("/assessments/{id:[0-9]+}/compare/{previousId:[0-9]+}", assessmentHandler.Compare).Methods(http.MethodGet, http.MethodOptions)

	return r
}

func healthHandler(conn *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := conn.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

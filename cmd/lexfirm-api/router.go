package main

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"lexfirm-api/internal/auth"
	"lexfirm-api/internal/config"
	"lexfirm-api/internal/http/docs"
	"lexfirm-api/internal/http/handler"
	"lexfirm-api/internal/http/middleware"
	"lexfirm-api/internal/observability/logger"
	"lexfirm-api/internal/ratelimit"
	"lexfirm-api/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterDeps holds everything buildRouter needs to assemble the HTTP surface.
type RouterDeps struct {
	Cfg         *config.Config
	Log         *logger.Logger
	Validator   *auth.HS256Validator
	RateLimiter *ratelimit.RedisRateLimiter
	Metrics     *telemetry.Metrics
	Pool        *pgxpool.Pool // readiness check

	// Handlers
	RoleHandler   *handler.RoleHandler
	UserHandler   *handler.UserHandler
	ClientHandler *handler.ClientHandler
	LawyerHandler *handler.LawyerHandler
	CaseHandler   *handler.CaseHandler
}

// metricsHandler serves the Prometheus registry. When a token is configured,
// the scraper must present it via X-Metrics-Token or a bearer Authorization.
func metricsHandler(token string) http.HandlerFunc {
	promHandler := promhttp.Handler()
	return func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			presented := r.Header.Get("X-Metrics-Token")
			if presented == "" {
				presented = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte("unauthorized"))
				return
			}
		}
		promHandler.ServeHTTP(w, r)
	}
}

// buildRouter assembles the chi.Router with all middlewares and routes.
func buildRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(deps.Log))
	r.Use(middleware.RecoveryMiddleware(deps.Log))
	r.Use(middleware.Subdomain)
	r.Use(telemetry.OTelMiddleware(deps.Cfg.OTELServiceName))
	if deps.Metrics != nil {
		r.Use(telemetry.MetricsMiddleware(deps.Metrics))
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/openapi.yaml", docs.OpenAPIHandler().ServeHTTP)
	r.Get("/docs", docs.ScalarDocsHandler("/openapi.yaml").ServeHTTP)

	// Prometheus scrape endpoint, optionally token-gated
	r.Get("/metrics", metricsHandler(deps.Cfg.MetricsToken))

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Pool == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ready","note":"pool is nil"}`))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := deps.Pool.Ping(ctx); err != nil {
			deps.Log.Error(ctx, "readiness check failed: database unavailable", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"error","message":"database unavailable"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	// Protected routes with firm isolation
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(deps.Validator))
		r.Use(middleware.RequireFirm)
		r.Use(middleware.RateLimitMiddleware(deps.RateLimiter, deps.Cfg.RateLimitPerFirmPerMin))

		// Role catalog
		if deps.RoleHandler != nil {
			r.Route("/roles", func(r chi.Router) {
				r.Get("/", deps.RoleHandler.ListRoles)
				r.Post("/", deps.RoleHandler.CreateRole)
				r.Get("/permissions", deps.RoleHandler.ListPermissions)
				r.Post("/assign-permission", deps.RoleHandler.AssignPermission)
			})
		}

		r.Route("/firm-admin", func(r chi.Router) {
			// Firm member administration
			if deps.UserHandler != nil {
				r.Route("/users", func(r chi.Router) {
					r.Get("/", deps.UserHandler.ListUsers)
					r.Post("/", deps.UserHandler.CreateUser)
					r.Route("/{userId}", func(r chi.Router) {
						r.Patch("/", deps.UserHandler.UpdateUser)
						r.Delete("/", deps.UserHandler.DeleteUser)
					})
				})
			}

			// Cases and their documents
			if deps.CaseHandler != nil {
				r.Route("/cases", func(r chi.Router) {
					r.Get("/", deps.CaseHandler.ListCases)
					r.Post("/", deps.CaseHandler.CreateCase)
					r.Route("/{caseId}", func(r chi.Router) {
						r.Get("/", deps.CaseHandler.GetCase)
						r.Patch("/", deps.CaseHandler.UpdateCase)
						r.Delete("/", deps.CaseHandler.DeleteCase)
						r.Patch("/status", deps.CaseHandler.UpdateCaseStatus)
						r.Route("/documents", func(r chi.Router) {
							r.Get("/", deps.CaseHandler.ListDocuments)
							r.Post("/", deps.CaseHandler.UploadDocuments)
							r.Route("/{documentId}", func(r chi.Router) {
								r.Get("/", deps.CaseHandler.GetDocument)
								r.Get("/download", deps.CaseHandler.DownloadDocument)
								r.Delete("/", deps.CaseHandler.DeleteDocument)
							})
						})
					})
				})
			}

			// Clients
			if deps.ClientHandler != nil {
				r.Route("/clients", func(r chi.Router) {
					r.Get("/", deps.ClientHandler.ListClients)
					r.Post("/", deps.ClientHandler.CreateClient)
					r.Route("/{clientId}", func(r chi.Router) {
						r.Get("/", deps.ClientHandler.GetClient)
						r.Patch("/", deps.ClientHandler.UpdateClient)
						r.Delete("/", deps.ClientHandler.DeleteClient)
						if deps.CaseHandler != nil {
							r.Get("/cases", deps.CaseHandler.ListCasesByClient)
						}
					})
				})
			}

			// Lawyers
			if deps.LawyerHandler != nil {
				r.Route("/lawyers", func(r chi.Router) {
					r.Get("/", deps.LawyerHandler.ListLawyers)
					r.Post("/", deps.LawyerHandler.CreateLawyer)
					r.Route("/{lawyerId}", func(r chi.Router) {
						r.Get("/", deps.LawyerHandler.GetLawyer)
						r.Patch("/", deps.LawyerHandler.UpdateLawyer)
						r.Delete("/", deps.LawyerHandler.DeleteLawyer)
						if deps.CaseHandler != nil {
							r.Get("/cases", deps.CaseHandler.ListCasesByLawyer)
						}
					})
				})
			}
		})
	})

	return r
}

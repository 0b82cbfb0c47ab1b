package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"insightapi/internal/service"
	"insightapi/internal/transport/rest/handler"
	"insightapi/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router
type Container struct {
	AnalyzeService *service.AnalyzeService
	StatsService   *service.StatsService
	AuthService    *service.AuthService
	MaxInFlight    int
	Logger         *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	analysisHandler := handler.NewAnalysisHandler(c.AnalyzeService)
	statsHandler := handler.NewStatsHandler(c.StatsService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)
	limitMW := middleware.NewLimitMiddleware(c.MaxInFlight)
	logMW := middleware.NewLoggingMiddleware(c.Logger)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)
	r.Use(logMW.Log)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Analysis routes (admission bounded)
	analysisRoutes := v1.NewRoute().Subrouter()
	analysisRoutes.Use(limitMW.Limit)
	analysisRoutes.HandleFunc("/analysis", analysisHandler.Analyze).Methods("POST", "OPTIONS")
	analysisRoutes.HandleFunc("/analysis/{questionId}", analysisHandler.Get).Methods("GET", "OPTIONS")

	// Stats routes (require service auth when configured)
	statsRoutes := v1.NewRoute().Subrouter()
	statsRoutes.Use(authMW.RequireService)
	statsRoutes.HandleFunc("/stats/sentiment", statsHandler.SentimentStats).Methods("GET", "OPTIONS")
	statsRoutes.HandleFunc("/stats/ideas", statsHandler.FrequentIdeas).Methods("GET", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

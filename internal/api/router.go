package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/fii-advisor/backend/internal/api/handlers"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
)

// Handlers groups every HTTP handler; nil groups are not routed
type Handlers struct {
	Health         *handlers.HealthHandler
	Recommendation *handlers.RecommendationHandler
	Dataset        *handlers.DatasetHandler
	Fund           *handlers.FundHandler
	Chat           *handlers.ChatHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	health := h.Health
	if health == nil {
		health = handlers.NewHealthHandler(nil)
	}
	r.HandleFunc("/health", health.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	if h.Recommendation != nil {
		api.HandleFunc("/recommendations", h.Recommendation.Recommend).Methods("POST")
	}

	if h.Dataset != nil {
		api.HandleFunc("/datasets/{kind}/{cnpj}", h.Dataset.GetByCNPJ).Methods("GET")
	}

	if h.Fund != nil {
		api.HandleFunc("/segments", h.Fund.GetSegments).Methods("GET")
		api.HandleFunc("/insights/{year:[0-9]{4}}", h.Fund.GetInsights).Methods("GET")
		api.HandleFunc("/funds/{ticker}", h.Fund.GetFund).Methods("GET")
		api.HandleFunc("/funds/{ticker}/analysis", h.Fund.AnalyzeFund).Methods("POST")
		api.HandleFunc("/funds/{ticker}/report-summary", h.Fund.SummarizeReport).Methods("POST")
	}

	if h.Chat != nil {
		api.HandleFunc("/chat", h.Chat.Chat).Methods("POST")
		r.HandleFunc("/ws/chat", h.Chat.ChatSocket).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	// CORS wraps the router so preflight requests never reach route matching
	return corsMiddleware(r)
}

// corsMiddleware allows browser clients on other origins
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack keeps websocket upgrades working behind the middleware
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// Call next handler
			next.ServeHTTP(rec, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

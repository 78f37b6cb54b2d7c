// Package server provides the HTTP REST API for template editing, document
// generation and passport scanning.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mekonnen/cv-studio/internal/compose"
	"github.com/mekonnen/cv-studio/internal/imagetx"
	"github.com/mekonnen/cv-studio/internal/layout"
	"github.com/mekonnen/cv-studio/internal/record"
	"github.com/mekonnen/cv-studio/internal/scan"
	"github.com/mekonnen/cv-studio/internal/server/ratelimit"
	"github.com/mekonnen/cv-studio/internal/store"
)

// TemplateStore is the persistence surface the handlers need.
type TemplateStore interface {
	SaveTemplate(ctx context.Context, ownerID string, tpl *layout.Template, assets []layout.PageAsset) (*layout.Template, error)
	GetTemplate(ctx context.Context, id string) (*layout.Template, error)
	ListForOwner(ctx context.Context, ownerID, country string) ([]*layout.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
	TrackGeneration(ctx context.Context, ownerID string, count int) error
}

// Composer renders one document from one template.
type Composer interface {
	Compose(ctx context.Context, tpl *layout.Template, rec *record.Record, agency string) (*compose.Document, error)
}

// Config holds server configuration.
type Config struct {
	Port         int
	DatabaseURL  string
	GeminiAPIKey string
	AssetDir     string
	AssetBaseURL string
	Agency       string
}

// Server represents the HTTP server.
type Server struct {
	httpServer  *http.Server
	store       TemplateStore
	composer    Composer
	scanner     scan.Scanner
	remover     imagetx.Remover
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
	agency      string
	closers     []func() error
}

// New creates a server with its production dependencies: PostgreSQL-backed
// template storage, filesystem blob assets, and Gemini-backed scanning and
// background removal when an API key is configured.
func New(cfg Config) (*Server, error) {
	blobs := &store.FSBlobStore{Dir: cfg.AssetDir, BaseURL: cfg.AssetBaseURL}
	st, err := store.Connect(context.Background(), cfg.DatabaseURL, blobs)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	resolver := compose.AssetResolver(compose.NewHTTPResolver())
	if cfg.AssetDir != "" {
		resolver = &compose.LocalResolver{Prefix: cfg.AssetBaseURL, Dir: cfg.AssetDir, Next: resolver}
	}
	s := newServer(cfg, st, compose.New(resolver), nil, nil)
	s.closers = append(s.closers, func() error { st.Close(); return nil })

	if cfg.GeminiAPIKey != "" {
		scanner, err := scan.NewGeminiScanner(context.Background(), cfg.GeminiAPIKey, "")
		if err != nil {
			return nil, fmt.Errorf("failed to create passport scanner: %w", err)
		}
		remover, err := imagetx.NewGeminiRemover(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create background remover: %w", err)
		}
		s.scanner = scanner
		s.remover = remover
		s.closers = append(s.closers, scanner.Close, remover.Close)
	}

	return s, nil
}

// newServer wires the router over explicit dependencies. Tests inject fakes
// here.
func newServer(cfg Config, st TemplateStore, composer Composer, scanner scan.Scanner, remover imagetx.Remover) *Server {
	s := &Server{
		store:       st,
		composer:    composer,
		scanner:     scanner,
		remover:     remover,
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
		validate:    validator.New(),
		agency:      cfg.Agency,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metricsHandler())

	// Stored page assets are public: the editor previews them and external
	// resolvers fetch them when the base URL is absolute.
	if cfg.AssetDir != "" && strings.HasPrefix(cfg.AssetBaseURL, "/") {
		prefix := strings.TrimSuffix(cfg.AssetBaseURL, "/") + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.AssetDir))))
	}

	mux.HandleFunc("POST /templates", s.handleSaveTemplate)
	mux.HandleFunc("GET /templates/{id}", s.handleGetTemplate)
	mux.HandleFunc("DELETE /templates/{id}", s.handleDeleteTemplate)
	mux.HandleFunc("GET /owners/{id}/templates", s.handleListTemplates)

	mux.HandleFunc("POST /render", s.handleRender)
	mux.HandleFunc("POST /render/batch", s.handleRenderBatch)

	mux.HandleFunc("POST /scan/passport", s.handleScanPassport)
	mux.HandleFunc("POST /images/remove-background", s.handleRemoveBackground)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRecovery(s.withRateLimit(withMetrics(s.withLogging(s.withCORS(mux))))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // batch runs hold the connection
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the configured handler chain.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}
	log.Println("Server stopped")
	return nil
}

// withRecovery converts handler panics into 500 responses.
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("Panic in %s %s: %v", r.Method, r.URL.Path, rec)
				s.errorResponse(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withCORS adds CORS headers for the browser editor.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// withRateLimit throttles clients per endpoint.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
			}
			s.errorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID extracts the client identifier from the request. IP based
// for now; a trusted-proxy X-Forwarded-For lookup can slot in here later.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFor maps a handler error onto its HTTP response.
func (s *Server) errorFor(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("Handler error: %v", err)
	}
	s.errorResponse(w, status, err.Error())
}

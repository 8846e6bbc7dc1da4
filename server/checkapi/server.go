// Package checkapi exposes the SIEVE analyzer over HTTP. Mail frontends
// post a script and get the full diagnostic set back as JSON, the same
// way a ManageSieve CHECKSCRIPT would, but without the session
// handshake.
package checkapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/migadu/sievecheck/cache"
	"github.com/migadu/sievecheck/logger"
	"github.com/migadu/sievecheck/pkg/metrics"
	"github.com/migadu/sievecheck/sieve"
)

// Diagnostic is one analyzer finding, located by byte span and by
// line/column in the posted source.
type Diagnostic struct {
	Production string `json:"production"`
	Message    string `json:"message"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
}

// CheckResult is the response body of POST /api/v1/check.
type CheckResult struct {
	Valid            bool         `json:"valid"`
	Diagnostics      []Diagnostic `json:"diagnostics"`
	NeededExtensions []string     `json:"needed_extensions,omitempty"`
}

// ServerOptions holds configuration for the HTTP API server.
type ServerOptions struct {
	Addr         string
	APIKey       string
	AllowedHosts []string
	TLS          bool
	TLSCertFile  string
	TLSKeyFile   string

	// SupportedExtensions restricts what scripts may require; nil means
	// the analyzer's full built-in set.
	SupportedExtensions []string

	// MaxScriptSize caps the request body, in bytes.
	MaxScriptSize int64

	// Cache holds recent results keyed by script hash; nil disables
	// caching.
	Cache *cache.Cache
}

// Server is the HTTP API server.
type Server struct {
	opts   ServerOptions
	server *http.Server
}

// New creates an HTTP API server.
func New(options ServerOptions) (*Server, error) {
	if options.APIKey == "" {
		return nil, fmt.Errorf("API key is required for the HTTP API server")
	}
	if options.TLS && (options.TLSCertFile == "" || options.TLSKeyFile == "") {
		return nil, fmt.Errorf("TLS certificate and key files are required when TLS is enabled")
	}
	if options.MaxScriptSize <= 0 {
		options.MaxScriptSize = 64 * 1024
	}
	return &Server{opts: options}, nil
}

// Start creates a server from options and runs it until ctx is
// cancelled, reporting a startup or serve failure on errChan.
func Start(ctx context.Context, options ServerOptions, errChan chan<- error) {
	server, err := New(options)
	if err != nil {
		errChan <- fmt.Errorf("creating HTTP API server: %w", err)
		return
	}

	protocol := "HTTP"
	if options.TLS {
		protocol = "HTTPS"
	}
	logger.Info("starting API server", "protocol", protocol, "addr", options.Addr)
	if err := server.start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		errChan <- fmt.Errorf("HTTP API server failed: %w", err)
	}
}

func (s *Server) start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    s.opts.Addr,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			logger.Error("API server shutdown", "error", err)
		}
	}()

	if s.opts.TLS {
		return s.server.ListenAndServeTLS(s.opts.TLSCertFile, s.opts.TLSKeyFile)
	}
	return s.server.ListenAndServe()
}

// Router builds the route table. Exposed for tests.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.Use(s.loggingMiddleware)
	router.Use(s.allowedHostsMiddleware)
	router.Use(s.authMiddleware)

	router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/check", s.handleCheck).Methods("POST")
	v1.HandleFunc("/extensions", s.handleExtensions).Methods("GET")

	return router
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("API request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration", time.Since(start))
	})
}

func (s *Server) allowedHostsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.opts.AllowedHosts) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		for _, allowed := range s.opts.AllowedHosts {
			if host == allowed {
				next.ServeHTTP(w, r)
				return
			}
		}
		metrics.HTTPRequests.WithLabelValues(r.URL.Path, "403").Inc()
		http.Error(w, "forbidden", http.StatusForbidden)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// health and metrics stay reachable for probes and scrapers
		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		key := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.opts.APIKey)) != 1 {
			metrics.HTTPRequests.WithLabelValues(r.URL.Path, "401").Inc()
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExtensions(w http.ResponseWriter, r *http.Request) {
	exts := s.opts.SupportedExtensions
	if exts == nil {
		exts = sieve.SupportedExtensions()
	}
	metrics.HTTPRequests.WithLabelValues(r.URL.Path, "200").Inc()
	writeJSON(w, http.StatusOK, map[string][]string{"extensions": exts})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxScriptSize))
	if err != nil {
		metrics.HTTPRequests.WithLabelValues(r.URL.Path, "413").Inc()
		http.Error(w, "script too large: limit is "+
			strconv.FormatInt(s.opts.MaxScriptSize, 10)+" bytes",
			http.StatusRequestEntityTooLarge)
		return
	}

	var key cache.Key
	if s.opts.Cache != nil {
		key = cache.KeyFor(body)
		if cached, ok := s.opts.Cache.Get(key); ok {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			metrics.HTTPRequests.WithLabelValues(r.URL.Path, "200").Inc()
			writeJSON(w, http.StatusOK, cached.(*CheckResult))
			return
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	result := Check(string(body), s.opts.SupportedExtensions)

	if s.opts.Cache != nil {
		s.opts.Cache.Put(key, result)
	}
	metrics.HTTPRequests.WithLabelValues(r.URL.Path, "200").Inc()
	writeJSON(w, http.StatusOK, result)
}

// Check runs the full parse-and-analyze pipeline over source and
// flattens the result into a CheckResult.
func Check(source string, supportedExtensions []string) *CheckResult {
	parser := sieve.NewParser(supportedExtensions)
	script := parser.Parse(source)
	script.Analyze()

	bad := parser.BadProductions()
	result := &CheckResult{
		Valid:            len(bad) == 0,
		Diagnostics:      make([]Diagnostic, 0, len(bad)),
		NeededExtensions: parser.NeededExtensions(),
	}
	for _, n := range bad {
		line, column := locate(source, n.Start())
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Production: n.Name(),
			Message:    n.ErrorMessage(),
			Start:      n.Start(),
			End:        n.End(),
			Line:       line,
			Column:     column,
		})
	}

	metrics.ScriptBytes.Observe(float64(len(source)))
	metrics.Diagnostics.Add(float64(len(bad)))
	if result.Valid {
		metrics.ScriptsAnalyzed.WithLabelValues("clean").Inc()
	} else {
		metrics.ScriptsAnalyzed.WithLabelValues("bad").Inc()
	}
	return result
}

// locate converts a byte offset into a 1-based line and column.
func locate(source string, offset int) (line, column int) {
	if offset > len(source) {
		offset = len(source)
	}
	line = 1
	column = 1
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encoding API response", "error", err)
	}
}

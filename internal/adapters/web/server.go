// Package web serves the local JSON API over HTTP. The listener binds
// loopback only; the explorer is a local tool, not a network service.
package web

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fortetroy/fedramp-explorer/internal/app"
	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

// Server exposes search, crosswalk, export, and refresh over HTTP.
type Server struct {
	app      *app.App
	listener net.Listener
	httpSrv  *http.Server
	port     int
	started  time.Time
	stopOnce sync.Once

	portFilePath string // .fedx/http.port
}

// NewServer creates an HTTP server over the app. The portFilePath is where
// the bound port is written for discovery; empty disables the port file.
func NewServer(a *app.App, portFilePath string) *Server {
	return &Server{app: a, portFilePath: portFilePath}
}

// DefaultPort computes a mirror-specific port: 19400 + (hash(abs_path) % 1000).
func DefaultPort(mirrorRoot string) int {
	abs, err := filepath.Abs(mirrorRoot)
	if err != nil {
		abs = mirrorRoot
	}
	h := sha256.Sum256([]byte(abs))
	n := uint32(h[0])<<24 | uint32(h[1])<<16 | uint32(h[2])<<8 | uint32(h[3])
	return 19400 + int(n%1000)
}

// Start begins listening on the preferred port (0 lets the OS pick).
func (s *Server) Start(preferredPort int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", preferredPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.started = time.Now()

	s.httpSrv = &http.Server{Handler: s.Handler()}

	if s.portFilePath != "" {
		os.MkdirAll(filepath.Dir(s.portFilePath), 0755)
		os.WriteFile(s.portFilePath, []byte(strconv.Itoa(s.port)), 0644)
	}

	go s.httpSrv.Serve(ln)
	return nil
}

// Handler builds the API routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/crosswalk", s.handleCrosswalk)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	return mux
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
		if s.portFilePath != "" {
			os.Remove(s.portFilePath)
		}
	})
}

// Port returns the bound port number.
func (s *Server) Port() int { return s.port }

// URL returns the API base URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.app.Stats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"ready":  stats.Ready,
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Stats())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	opts, err := searchOptions(q.Get("mode"), q.Get("family"), q.Get("baseline"), q.Get("ksi_only"), q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.app.Search(query, opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCrosswalk(w http.ResponseWriter, r *http.Request) {
	baseline, ok := ports.ParseBaseline(r.URL.Query().Get("baseline"))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("baseline must be low, moderate, or high"))
		return
	}
	results, summary, err := s.app.Crosswalk(baseline)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"summary": summary,
	})
}

// handleExport serializes a fresh search or crosswalk run. ?what=search&q=...
// or ?what=crosswalk&baseline=...; format defaults to CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, ok := app.ParseExportFormat(q.Get("format"))
	if !ok {
		if q.Get("format") != "" {
			writeError(w, http.StatusBadRequest, fmt.Errorf("format must be csv or json"))
			return
		}
		format = app.FormatCSV
	}

	var (
		data []byte
		err  error
	)
	switch q.Get("what") {
	case "", "search":
		opts, optErr := searchOptions(q.Get("mode"), q.Get("family"), q.Get("baseline"), q.Get("ksi_only"), q.Get("limit"))
		if optErr != nil {
			writeError(w, http.StatusBadRequest, optErr)
			return
		}
		result, searchErr := s.app.Search(q.Get("q"), opts)
		if searchErr != nil {
			writeError(w, statusFor(searchErr), searchErr)
			return
		}
		data, err = app.ExportSearch(result.Hits, format)
	case "crosswalk":
		baseline, ok := ports.ParseBaseline(q.Get("baseline"))
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Errorf("baseline must be low, moderate, or high"))
			return
		}
		results, _, cwErr := s.app.Crosswalk(baseline)
		if cwErr != nil {
			writeError(w, statusFor(cwErr), cwErr)
			return
		}
		data, err = app.ExportCrosswalk(results, format)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("what must be search or crosswalk"))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if format == app.FormatCSV {
		w.Header().Set("Content-Type", "text/csv")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Write(data)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Refresh(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Stats())
}

// searchOptions parses the shared query-string options.
func searchOptions(mode, family, baseline, ksiOnly, limit string) (ports.SearchOptions, error) {
	opts := ports.SearchOptions{}
	switch strings.ToLower(mode) {
	case "", "global":
		opts.Mode = ports.ModeGlobal
	case "control":
		opts.Mode = ports.ModeControl
	default:
		return opts, fmt.Errorf("mode must be global or control")
	}
	if family != "" {
		for _, f := range strings.Split(family, ",") {
			if f = strings.TrimSpace(f); f != "" {
				opts.Families = append(opts.Families, f)
			}
		}
	}
	if baseline != "" {
		b, ok := ports.ParseBaseline(baseline)
		if !ok {
			return opts, fmt.Errorf("baseline must be low, moderate, or high")
		}
		opts.Baseline = b
	}
	opts.KSIOnly = ksiOnly == "true" || ksiOnly == "1"
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			return opts, fmt.Errorf("limit must be a positive integer")
		}
		opts.MaxResults = n
	}
	return opts, nil
}

func statusFor(err error) int {
	var notReady *ports.IndexNotReadyError
	if errors.As(err, &notReady) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

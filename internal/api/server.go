package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/nsilverman/compete/internal/config"
	"github.com/nsilverman/compete/internal/i18n"
	"github.com/nsilverman/compete/internal/scheduler"
	"github.com/nsilverman/compete/internal/storage"
	"github.com/nsilverman/compete/internal/view"
	log "github.com/sirupsen/logrus"
)

// Version is reported by the health check
const Version = "1.0.0-dev"

// Server represents the HTTP server
type Server struct {
	config    *config.Manager
	db        *storage.Database
	scheduler *scheduler.Scheduler
	renderer  *view.Renderer
	catalog   *i18n.Catalog
	catalogMu sync.RWMutex
	wsClients map[*websocket.Conn]*wsClient
	wsMu      sync.Mutex
	upgrader  websocket.Upgrader
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo represents error information
type ErrorInfo struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// NewServer creates a new server
func NewServer(cfg *config.Manager, db *storage.Database, sched *scheduler.Scheduler) (*Server, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:    cfg,
		db:        db,
		scheduler: sched,
		renderer:  renderer,
		wsClients: make(map[*websocket.Conn]*wsClient),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
	}

	if err := s.reloadCatalog(); err != nil {
		return nil, err
	}

	// Status changes made by the scheduler are pushed to dashboards
	sched.SetEventBroadcaster(s)

	return s, nil
}

// reloadCatalog rebuilds the message catalog from the current configuration
func (s *Server) reloadCatalog() error {
	catalog, err := i18n.NewCatalog(s.config.GetSettings().DefaultLocale, s.config.GetMessages())
	if err != nil {
		return fmt.Errorf("failed to build message catalog: %w", err)
	}

	s.catalogMu.Lock()
	s.catalog = catalog
	s.catalogMu.Unlock()
	return nil
}

func (s *Server) getCatalog() *i18n.Catalog {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	return s.catalog
}

// Router returns the HTTP router
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	// Logging middleware
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Debugf("%s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	})

	// Pages
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}).Methods("GET")
	r.HandleFunc("/dashboard", s.dashboardPage).Methods("GET")
	r.HandleFunc("/dashboard", s.chooseContest).Methods("POST")
	r.HandleFunc("/contests/{id:[0-9]+}", s.contestPage).Methods("GET")

	// API routes
	api := r.PathPrefix("/api/v1").Subrouter()

	// HTML fragments
	api.HandleFunc("/dashboard/html", s.dashboardHTML).Methods("GET")

	// Contests (JSON API)
	api.HandleFunc("/contests", s.listContests).Methods("GET")
	api.HandleFunc("/contests", s.createContest).Methods("POST")
	api.HandleFunc("/contests/{id:[0-9]+}/open", s.openContest).Methods("POST")
	api.HandleFunc("/contests/{id:[0-9]+}/close", s.closeContest).Methods("POST")
	api.HandleFunc("/contests/{id:[0-9]+}/entries", s.listEntries).Methods("GET")
	api.HandleFunc("/contests/{id:[0-9]+}", s.getContest).Methods("GET")
	api.HandleFunc("/contests/{id:[0-9]+}", s.updateContest).Methods("PUT")
	api.HandleFunc("/contests/{id:[0-9]+}", s.deleteContest).Methods("DELETE")

	// Configuration
	api.HandleFunc("/config", s.getConfig).Methods("GET")
	api.HandleFunc("/config/settings", s.updateSettings).Methods("PUT")

	// System
	api.HandleFunc("/system/health", s.healthCheck).Methods("GET")
	api.HandleFunc("/system/stats", s.systemStats).Methods("GET")

	// WebSocket
	api.HandleFunc("/ws/events", s.handleWebSocket)

	return r
}

// Helper functions
func (s *Server) success(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(Response{Success: true, Data: data}); err != nil {
		log.Printf("Error encoding success response: %v", err)
	}
}

func (s *Server) error(w http.ResponseWriter, code string, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}); err != nil {
		log.Printf("Error encoding error response: %v", err)
	}
}

package api

import (
	"encoding/json"
	"net/http"
	"runtime"

	"github.com/nsilverman/compete/internal/models"
	log "github.com/sirupsen/logrus"
)

// getConfig handles GET /api/v1/config
func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	config := s.config.Get()

	s.success(w, map[string]interface{}{
		"version":  config.Version,
		"settings": config.Settings,
		"messages": config.Messages,
	})
}

// updateSettings handles PUT /api/v1/config/settings
func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		s.error(w, "VALIDATION_ERROR", "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.config.UpdateSettings(settings); err != nil {
		s.error(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.reloadCatalog(); err != nil {
		s.error(w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.scheduler.Reload(); err != nil {
		s.error(w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	if settings.LogLevel != "" {
		if level, err := log.ParseLevel(settings.LogLevel); err == nil {
			log.SetLevel(level)
		}
	}

	s.success(w, map[string]interface{}{
		"settings": settings,
	})
}

// Health check
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	s.success(w, map[string]interface{}{
		"status":  "healthy",
		"version": Version,
	})
}

// System stats
func (s *Server) systemStats(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	contestStats, err := s.db.GetContestStats()
	if err != nil {
		s.error(w, "STATS_ERROR", "Failed to get contest stats", http.StatusInternalServerError)
		return
	}

	stats := models.SystemStats{
		Contests: *contestStats,
		System: models.SystemInfo{
			MemoryUsed:  int64(m.Alloc),
			MemoryTotal: int64(m.Sys),
			Goroutines:  runtime.NumGoroutine(),
		},
	}

	s.success(w, stats)
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/nsilverman/compete/internal/models"
	"github.com/nsilverman/compete/internal/storage"
	"github.com/nsilverman/compete/internal/validator"
	log "github.com/sirupsen/logrus"
)

func contestID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// loadContest resolves the {id} path variable, writing the error response
// when the contest cannot be loaded
func (s *Server) loadContest(w http.ResponseWriter, r *http.Request) (*models.Contest, bool) {
	id, err := contestID(r)
	if err != nil {
		s.error(w, "NOT_FOUND", "Contest not found", http.StatusNotFound)
		return nil, false
	}

	contest, err := s.db.GetContest(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.error(w, "NOT_FOUND", "Contest not found", http.StatusNotFound)
		} else {
			s.error(w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		}
		return nil, false
	}
	return contest, true
}

// decodeContest reads and validates a contest from the request body
func (s *Server) decodeContest(w http.ResponseWriter, r *http.Request) (*models.Contest, bool) {
	var contest models.Contest
	if err := json.NewDecoder(r.Body).Decode(&contest); err != nil {
		s.error(w, "VALIDATION_ERROR", "Invalid request body", http.StatusBadRequest)
		return nil, false
	}

	if err := validator.Struct(&contest); err != nil {
		s.error(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if contest.StartsAt != nil && contest.EndsAt != nil && !contest.EndsAt.After(*contest.StartsAt) {
		s.error(w, "VALIDATION_ERROR", "ends_at must be after starts_at", http.StatusBadRequest)
		return nil, false
	}
	return &contest, true
}

// listContests handles GET /api/v1/contests
func (s *Server) listContests(w http.ResponseWriter, r *http.Request) {
	contests, err := s.db.ListContests(r.URL.Query().Get("status"))
	if err != nil {
		s.error(w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	if contests == nil {
		contests = []models.Contest{}
	}

	s.success(w, contests)
}

// getContest handles GET /api/v1/contests/{id}
func (s *Server) getContest(w http.ResponseWriter, r *http.Request) {
	contest, ok := s.loadContest(w, r)
	if !ok {
		return
	}
	s.success(w, contest)
}

// createContest handles POST /api/v1/contests
func (s *Server) createContest(w http.ResponseWriter, r *http.Request) {
	contest, ok := s.decodeContest(w, r)
	if !ok {
		return
	}

	if err := s.db.CreateContest(contest); err != nil {
		s.error(w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	log.Printf("Created contest %d (%s), status %s", contest.ID, contest.Name, contest.Status)

	s.BroadcastEvent(models.ContestEvent{Type: models.EventContestCreated, Data: contest})
	s.success(w, contest)
}

// updateContest handles PUT /api/v1/contests/{id}
func (s *Server) updateContest(w http.ResponseWriter, r *http.Request) {
	id, err := contestID(r)
	if err != nil {
		s.error(w, "NOT_FOUND", "Contest not found", http.StatusNotFound)
		return
	}

	contest, ok := s.decodeContest(w, r)
	if !ok {
		return
	}
	contest.ID = id

	if err := s.db.UpdateContest(contest); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.error(w, "NOT_FOUND", "Contest not found", http.StatusNotFound)
		} else {
			s.error(w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		}
		return
	}

	s.BroadcastEvent(models.ContestEvent{Type: models.EventContestUpdated, Data: contest})
	s.success(w, contest)
}

// deleteContest handles DELETE /api/v1/contests/{id}
func (s *Server) deleteContest(w http.ResponseWriter, r *http.Request) {
	id, err := contestID(r)
	if err != nil {
		s.error(w, "NOT_FOUND", "Contest not found", http.StatusNotFound)
		return
	}

	if err := s.db.DeleteContest(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.error(w, "NOT_FOUND", "Contest not found", http.StatusNotFound)
		} else {
			s.error(w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		}
		return
	}

	s.BroadcastEvent(models.ContestEvent{Type: models.EventContestDeleted, Data: map[string]int64{"id": id}})
	s.success(w, map[string]string{"message": "Contest deleted successfully"})
}

// openContest handles POST /api/v1/contests/{id}/open. The time window is
// moved so that the contest is open now and the scheduler keeps it open.
func (s *Server) openContest(w http.ResponseWriter, r *http.Request) {
	contest, ok := s.loadContest(w, r)
	if !ok {
		return
	}

	now := time.Now()
	if contest.StartsAt != nil && contest.StartsAt.After(now) {
		contest.StartsAt = &now
	}
	if contest.EndsAt != nil && !contest.EndsAt.After(now) {
		contest.EndsAt = nil
	}
	contest.Status = models.StatusOpen

	if err := s.db.UpdateContest(contest); err != nil {
		s.error(w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	s.BroadcastEvent(models.ContestEvent{Type: models.EventContestOpened, Data: contest})
	s.success(w, contest)
}

// closeContest handles POST /api/v1/contests/{id}/close
func (s *Server) closeContest(w http.ResponseWriter, r *http.Request) {
	contest, ok := s.loadContest(w, r)
	if !ok {
		return
	}

	if err := s.db.SetContestStatus(contest.ID, models.StatusClosed); err != nil {
		s.error(w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	contest.Status = models.StatusClosed

	s.BroadcastEvent(models.ContestEvent{Type: models.EventContestClosed, Data: contest})
	s.success(w, contest)
}

// listEntries handles GET /api/v1/contests/{id}/entries
func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	contest, ok := s.loadContest(w, r)
	if !ok {
		return
	}

	entries, err := s.db.ListEntries(contest.ID)
	if err != nil {
		s.error(w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.Entry{}
	}

	s.success(w, entries)
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/nsilverman/compete/internal/i18n"
	"github.com/nsilverman/compete/internal/models"
	"github.com/nsilverman/compete/internal/storage"
	"github.com/nsilverman/compete/internal/validator"
	"github.com/nsilverman/compete/internal/view"
	log "github.com/sirupsen/logrus"
)

// contestIDField is the form field carrying the chosen contest
const contestIDField = "form[contest_id]"

// availableContests returns the contests offered on the dashboard. On error
// the dashboard shows the empty state.
func (s *Server) availableContests() []models.ContestSummary {
	contests, err := s.db.ListAvailableContests()
	if err != nil {
		log.Printf("Failed to list available contests: %v", err)
		return nil
	}

	summaries := make([]models.ContestSummary, 0, len(contests))
	for i := range contests {
		summaries = append(summaries, contests[i].Summary())
	}
	return summaries
}

func (s *Server) renderDashboard(w http.ResponseWriter, status int, page bool, lang i18n.Lang, errKey string) {
	data := view.ContestSelectData{
		Base:     viewBase(lang),
		Contests: s.availableContests(),
	}
	if errKey != "" {
		data.Error = lang.Line(errKey)
	}

	s.htmlResponse(w, status, page, view.ContestSelectView, data)
}

// dashboardHTML handles GET /api/v1/dashboard/html
func (s *Server) dashboardHTML(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, http.StatusOK, false, s.lang(r), "")
}

// dashboardPage handles GET /dashboard
func (s *Server) dashboardPage(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)
	s.rememberLang(w, r, lang)
	s.contestant(w, r)
	s.renderDashboard(w, http.StatusOK, true, lang, "")
}

// chooseContest handles POST /dashboard
func (s *Server) chooseContest(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)
	contestant := s.contestant(w, r)

	if err := r.ParseForm(); err != nil {
		s.renderDashboard(w, http.StatusBadRequest, true, lang, i18n.KeyInvalidContest)
		return
	}

	id, err := strconv.ParseInt(r.PostForm.Get(contestIDField), 10, 64)
	selection := models.ContestSelection{ContestID: id}
	if err != nil || validator.Struct(&selection) != nil {
		s.renderDashboard(w, http.StatusBadRequest, true, lang, i18n.KeyInvalidContest)
		return
	}

	contest, err := s.db.GetContest(selection.ContestID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.renderDashboard(w, http.StatusBadRequest, true, lang, i18n.KeyInvalidContest)
			return
		}
		log.Printf("Failed to get contest %d: %v", selection.ContestID, err)
		http.Error(w, "Failed to load contest", http.StatusInternalServerError)
		return
	}

	if contest.Status != models.StatusOpen {
		s.renderDashboard(w, http.StatusConflict, true, lang, i18n.KeyContestClosed)
		return
	}

	entry, created, err := s.db.CreateEntry(contest.ID, contestant)
	if err != nil {
		log.Printf("Failed to create entry for contest %d: %v", contest.ID, err)
		http.Error(w, "Failed to enter contest", http.StatusInternalServerError)
		return
	}

	target := fmt.Sprintf("/contests/%d", contest.ID)
	if created {
		log.Printf("Contestant %s entered contest %d (entry %s)", contestant, contest.ID, entry.ID)
		target += "?new=1"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// contestPage handles GET /contests/{id}
func (s *Server) contestPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	contest, err := s.db.GetContest(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("Failed to get contest %d: %v", id, err)
		http.Error(w, "Failed to load contest", http.StatusInternalServerError)
		return
	}

	// Only contestants who entered see the contest page
	if _, err := s.db.GetEntry(contest.ID, s.contestant(w, r)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		log.Printf("Failed to get entry for contest %d: %v", contest.ID, err)
		http.Error(w, "Failed to load entry", http.StatusInternalServerError)
		return
	}

	lang := s.lang(r)
	s.htmlResponse(w, http.StatusOK, true, view.ContestEnteredView, view.ContestEnteredData{
		Base:           viewBase(lang),
		Contest:        contest.Summary(),
		AlreadyEntered: r.URL.Query().Get("new") != "1",
	})
}

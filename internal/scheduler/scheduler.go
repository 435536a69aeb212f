package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/nsilverman/compete/internal/models"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Store is the contest storage the scheduler works on
type Store interface {
	ListUnclosedContests() ([]models.Contest, error)
	TransitionContestStatus(id int64, from, to string) (bool, error)
}

// SettingsSource provides the sweep schedule
type SettingsSource interface {
	GetSettings() models.Settings
}

// EventBroadcaster is an interface for broadcasting contest changes
type EventBroadcaster interface {
	BroadcastEvent(event models.ContestEvent)
}

// Scheduler opens and closes contests when their time window starts and ends
type Scheduler struct {
	cron     *cron.Cron
	store    Store
	settings SettingsSource
	events   EventBroadcaster
	entryID  cron.EntryID
	now      func() time.Time
	mu       sync.Mutex
}

// NewScheduler creates a new scheduler
func NewScheduler(store Store, settings SettingsSource) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		store:    store,
		settings: settings,
		now:      time.Now,
	}
}

// SetEventBroadcaster sets the broadcaster notified about status changes
func (s *Scheduler) SetEventBroadcaster(broadcaster EventBroadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = broadcaster
}

// Start runs an initial sweep and starts the periodic sweep
func (s *Scheduler) Start() error {
	if _, err := s.Sweep(); err != nil {
		log.Printf("Initial sweep failed: %v", err)
	}

	if err := s.Reload(); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("Scheduler stopped")
}

// Reload re-registers the sweep job using the current settings
func (s *Scheduler) Reload() error {
	expr := s.settings.GetSettings().SweepSchedule

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
		s.entryID = 0
	}

	entryID, err := s.cron.AddFunc(expr, func() {
		if _, err := s.Sweep(); err != nil {
			log.Printf("Sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", expr, err)
	}
	s.entryID = entryID

	log.Printf("Scheduled contest sweep with expression: %s", expr)
	return nil
}

// NextRun returns the next time the sweep runs
func (s *Scheduler) NextRun() (*time.Time, error) {
	s.mu.Lock()
	entryID := s.entryID
	s.mu.Unlock()

	if entryID == 0 {
		return nil, fmt.Errorf("sweep not scheduled")
	}

	next := s.cron.Entry(entryID).Next
	return &next, nil
}

// Sweep moves every contest to the status its time window demands and
// returns the contests that changed.
func (s *Scheduler) Sweep() ([]models.Contest, error) {
	now := s.now()

	contests, err := s.store.ListUnclosedContests()
	if err != nil {
		return nil, fmt.Errorf("failed to list contests: %w", err)
	}

	var changed []models.Contest
	for _, contest := range contests {
		status := contest.StatusAt(now)
		if status == contest.Status {
			continue
		}

		// The contest may have been closed or deleted since it was listed
		ok, err := s.store.TransitionContestStatus(contest.ID, contest.Status, status)
		if err != nil {
			log.Printf("Failed to set status of contest %d: %v", contest.ID, err)
			continue
		}
		if !ok {
			log.Debugf("Contest %d changed during sweep, skipping", contest.ID)
			continue
		}
		log.Printf("Contest %d (%s) is now %s", contest.ID, contest.Name, status)

		contest.Status = status
		changed = append(changed, contest)
		s.broadcast(contest)
	}

	return changed, nil
}

func (s *Scheduler) broadcast(contest models.Contest) {
	s.mu.Lock()
	events := s.events
	s.mu.Unlock()

	if events == nil {
		return
	}

	var eventType string
	switch contest.Status {
	case models.StatusOpen:
		eventType = models.EventContestOpened
	case models.StatusClosed:
		eventType = models.EventContestClosed
	default:
		eventType = models.EventContestUpdated
	}
	events.BroadcastEvent(models.ContestEvent{Type: eventType, Data: contest})
}

package models

import "time"

// Contest status values
const (
	StatusScheduled = "scheduled"
	StatusOpen      = "open"
	StatusClosed    = "closed"
)

// Config represents the complete application configuration
type Config struct {
	Version  string                       `json:"version"`
	Settings Settings                     `json:"settings"`
	Messages map[string]map[string]string `json:"messages,omitempty"` // locale -> key -> text
}

// Settings represents application settings
type Settings struct {
	DefaultLocale string `json:"default_locale" validate:"required"`
	SweepSchedule string `json:"sweep_schedule" validate:"required"` // cron expression, e.g. "@every 1m"
	LogLevel      string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// Contest represents a contest a user may enter
type Contest struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Status      string     `json:"status" validate:"omitempty,oneof=scheduled open closed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// StatusAt returns the status the contest should have at the given time.
// A closed contest stays closed.
func (c *Contest) StatusAt(now time.Time) string {
	if c.Status == StatusClosed {
		return StatusClosed
	}
	if c.EndsAt != nil && !now.Before(*c.EndsAt) {
		return StatusClosed
	}
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return StatusScheduled
	}
	return StatusOpen
}

// Summary projects the contest to the record shown in the selection view
func (c *Contest) Summary() ContestSummary {
	return ContestSummary{ID: c.ID, Name: c.Name}
}

// ContestSummary is the id/name pair offered for selection
type ContestSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Entry records a contestant entering a contest
type Entry struct {
	ID         string    `json:"id"`
	ContestID  int64     `json:"contest_id"`
	Contestant string    `json:"contestant"`
	CreatedAt  time.Time `json:"created_at"`
}

// ContestSelection is the submitted dashboard form
type ContestSelection struct {
	ContestID int64 `form:"form[contest_id]" validate:"required,gt=0"`
}

// ContestStats represents contest counters
type ContestStats struct {
	Total     int `json:"total"`
	Scheduled int `json:"scheduled"`
	Open      int `json:"open"`
	Closed    int `json:"closed"`
	Entries   int `json:"entries"`
}

// SystemStats represents system statistics
type SystemStats struct {
	Contests ContestStats `json:"contests"`
	System   SystemInfo   `json:"system"`
}

// SystemInfo represents system information
type SystemInfo struct {
	MemoryUsed  int64 `json:"memory_used"`
	MemoryTotal int64 `json:"memory_total"`
	Goroutines  int   `json:"goroutines"`
}

// Contest event types
const (
	EventContestCreated = "contest_created"
	EventContestUpdated = "contest_updated"
	EventContestDeleted = "contest_deleted"
	EventContestOpened  = "contest_opened"
	EventContestClosed  = "contest_closed"
)

// ContestEvent represents a change pushed to connected dashboards
type ContestEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

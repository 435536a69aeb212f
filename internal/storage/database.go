package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/nsilverman/compete/internal/models"
	log "github.com/sirupsen/logrus"
)

// ErrNotFound is returned when a contest or entry does not exist
var ErrNotFound = errors.New("not found")

// Database handles all database operations
type Database struct {
	db *sql.DB
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &Database{db: db}

	if err := d.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return d, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// initSchema creates the database schema
func (d *Database) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS contests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		starts_at TIMESTAMP,
		ends_at TIMESTAMP,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contests_status ON contests(status);

	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		contest_id INTEGER NOT NULL,
		contestant TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		UNIQUE (contest_id, contestant),
		FOREIGN KEY (contest_id) REFERENCES contests(id)
	);

	CREATE INDEX IF NOT EXISTS idx_entries_contest_id ON entries(contest_id);
	`

	_, err := d.db.Exec(schema)
	return err
}

const contestColumns = `id, name, description, starts_at, ends_at, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContest(row rowScanner) (*models.Contest, error) {
	var c models.Contest
	var startsAt, endsAt sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&startsAt,
		&endsAt,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if startsAt.Valid {
		c.StartsAt = &startsAt.Time
	}
	if endsAt.Valid {
		c.EndsAt = &endsAt.Time
	}
	return &c, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// CreateContest inserts a contest and fills in its ID, timestamps and status
func (d *Database) CreateContest(c *models.Contest) error {
	now := time.Now().UTC()
	c.StartsAt = utcPtr(c.StartsAt)
	c.EndsAt = utcPtr(c.EndsAt)
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Status != models.StatusClosed {
		c.Status = c.StatusAt(now)
	}

	res, err := d.db.Exec(`
		INSERT INTO contests (name, description, starts_at, ends_at, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.Name, c.Description, c.StartsAt, c.EndsAt, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contest: %w", err)
	}

	c.ID, err = res.LastInsertId()
	return err
}

// GetContest retrieves a contest by ID
func (d *Database) GetContest(id int64) (*models.Contest, error) {
	row := d.db.QueryRow("SELECT "+contestColumns+" FROM contests WHERE id = ?", id)
	c, err := scanContest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("contest %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

// ListContests retrieves contests, optionally filtered by status
func (d *Database) ListContests(status string) ([]models.Contest, error) {
	query := "SELECT " + contestColumns + " FROM contests WHERE 1=1"
	args := []interface{}{}

	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY starts_at, id"

	return d.queryContests(query, args...)
}

// ListAvailableContests returns the contests currently open for entry
func (d *Database) ListAvailableContests() ([]models.Contest, error) {
	return d.ListContests(models.StatusOpen)
}

// ListUnclosedContests returns contests whose status may still change over time
func (d *Database) ListUnclosedContests() ([]models.Contest, error) {
	return d.queryContests(
		"SELECT "+contestColumns+" FROM contests WHERE status != ? ORDER BY starts_at, id",
		models.StatusClosed,
	)
}

func (d *Database) queryContests(query string, args ...interface{}) ([]models.Contest, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error closing rows: %v", err)
		}
	}()

	var contests []models.Contest
	for rows.Next() {
		c, err := scanContest(rows)
		if err != nil {
			return nil, err
		}
		contests = append(contests, *c)
	}

	return contests, rows.Err()
}

// UpdateContest updates the editable fields of a contest and recomputes its status
func (d *Database) UpdateContest(c *models.Contest) error {
	existing, err := d.GetContest(c.ID)
	if err != nil {
		return err
	}

	c.StartsAt = utcPtr(c.StartsAt)
	c.EndsAt = utcPtr(c.EndsAt)
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	if c.Status == "" {
		c.Status = existing.Status
	}
	if c.Status != models.StatusClosed {
		c.Status = c.StatusAt(c.UpdatedAt)
	}

	_, err = d.db.Exec(`
		UPDATE contests SET
			name = ?,
			description = ?,
			starts_at = ?,
			ends_at = ?,
			status = ?,
			updated_at = ?
		WHERE id = ?
	`, c.Name, c.Description, c.StartsAt, c.EndsAt, c.Status, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update contest: %w", err)
	}
	return nil
}

// SetContestStatus changes only the status of a contest
func (d *Database) SetContestStatus(id int64, status string) error {
	res, err := d.db.Exec(
		"UPDATE contests SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update contest status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("contest %d: %w", id, ErrNotFound)
	}
	return nil
}

// TransitionContestStatus moves a contest from one status to another. It
// reports false when the contest is missing or no longer has the from status.
func (d *Database) TransitionContestStatus(id int64, from, to string) (bool, error) {
	res, err := d.db.Exec(
		"UPDATE contests SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		to, time.Now().UTC(), id, from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update contest status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteContest deletes a contest together with its entries
func (d *Database) DeleteContest(id int64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("Error rolling back transaction: %v", err)
		}
	}()

	// Delete entries first (foreign key constraint)
	if _, err := tx.Exec("DELETE FROM entries WHERE contest_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}

	res, err := tx.Exec("DELETE FROM contests WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete contest: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("contest %d: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateEntry records that a contestant entered a contest. Entering the same
// contest twice returns the existing entry and created=false.
func (d *Database) CreateEntry(contestID int64, contestant string) (entry *models.Entry, created bool, err error) {
	res, err := d.db.Exec(`
		INSERT OR IGNORE INTO entries (id, contest_id, contestant, created_at)
		VALUES (?, ?, ?, ?)
	`, uuid.New().String(), contestID, contestant, time.Now().UTC())
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	entry, err = d.findEntry(contestID, contestant)
	if err != nil {
		return nil, false, err
	}
	return entry, n > 0, nil
}

func (d *Database) findEntry(contestID int64, contestant string) (*models.Entry, error) {
	var e models.Entry
	err := d.db.QueryRow(`
		SELECT id, contest_id, contestant, created_at
		FROM entries WHERE contest_id = ? AND contestant = ?
	`, contestID, contestant).Scan(&e.ID, &e.ContestID, &e.Contestant, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("entry for contest %d: %w", contestID, ErrNotFound)
		}
		return nil, err
	}
	return &e, nil
}

// GetEntry returns the contestant's entry for a contest
func (d *Database) GetEntry(contestID int64, contestant string) (*models.Entry, error) {
	return d.findEntry(contestID, contestant)
}

// ListEntries returns the entries of a contest, oldest first
func (d *Database) ListEntries(contestID int64) ([]models.Entry, error) {
	rows, err := d.db.Query(`
		SELECT id, contest_id, contestant, created_at
		FROM entries WHERE contest_id = ?
		ORDER BY created_at, id
	`, contestID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error closing rows: %v", err)
		}
	}()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.ContestID, &e.Contestant, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GetContestStats returns overall contest statistics
func (d *Database) GetContestStats() (*models.ContestStats, error) {
	query := `
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(CASE WHEN status = 'scheduled' THEN 1 ELSE 0 END), 0) as scheduled,
			COALESCE(SUM(CASE WHEN status = 'open' THEN 1 ELSE 0 END), 0) as open,
			COALESCE(SUM(CASE WHEN status = 'closed' THEN 1 ELSE 0 END), 0) as closed
		FROM contests
	`

	var stats models.ContestStats
	err := d.db.QueryRow(query).Scan(
		&stats.Total,
		&stats.Scheduled,
		&stats.Open,
		&stats.Closed,
	)
	if err != nil {
		return nil, err
	}

	if err := d.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&stats.Entries); err != nil {
		return nil, err
	}

	return &stats, nil
}

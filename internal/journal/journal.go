package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	// Pure Go SQLite driver.
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run identifier is not in the journal.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	link_target TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ticks (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	at         TEXT NOT NULL,
	raw        INTEGER NOT NULL,
	smoothed   INTEGER NOT NULL,
	confirmed  INTEGER NOT NULL,
	lights     TEXT NOT NULL,
	mode       TEXT NOT NULL,
	alert      INTEGER NOT NULL,
	sent       INTEGER NOT NULL,
	token      TEXT,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// Run is one controller session from start to shutdown.
type Run struct {
	// ID identifies the run.
	ID string
	// StartedAt is when the controller came up.
	StartedAt time.Time
	// LinkTarget is the actuator link the run drove.
	LinkTarget string
	// Ticks is how many notable ticks the run recorded.
	Ticks int
}

// Tick is one recorded control cycle. Runs only record the cycles that did
// something: a confirmed count change, a light change, an alert or a
// delivery.
type Tick struct {
	// At is the controller time of the cycle.
	At time.Time
	// Raw is the vehicle count handed to the cycle.
	Raw int
	// Smoothed is the windowed average after the sample.
	Smoothed int
	// Confirmed is the debounced count the machine acted on.
	Confirmed int
	// Lights describes the pair after the cycle.
	Lights string
	// Mode describes the operating regime after the cycle.
	Mode string
	// Alert is true when the cycle raised the congestion alert.
	Alert bool
	// Sent is true when a command token was delivered.
	Sent bool
	// Token is the command attempted, empty when none was due.
	Token string
}

// Journal stores runs and ticks in a SQLite file.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal at path and runs migrations.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("set journal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}

	return nil
}

// BeginRun registers a new controller session and returns it.
func (j *Journal) BeginRun(startedAt time.Time, linkTarget string) (Run, error) {
	run := Run{
		ID:         uuid.New().String(),
		StartedAt:  startedAt.UTC(),
		LinkTarget: linkTarget,
	}

	_, err := j.db.Exec(
		`INSERT INTO runs (run_id, started_at, link_target) VALUES (?, ?, ?)`,
		run.ID, run.StartedAt.Format(time.RFC3339Nano), run.LinkTarget,
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	return run, nil
}

// RecordTick appends one tick to a run.
func (j *Journal) RecordTick(runID string, tick Tick) error {
	var token any
	if tick.Token != "" {
		token = tick.Token
	}

	_, err := j.db.Exec(
		`INSERT INTO ticks (run_id, at, raw, smoothed, confirmed, lights, mode, alert, sent, token)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, tick.At.UTC().Format(time.RFC3339Nano),
		tick.Raw, tick.Smoothed, tick.Confirmed,
		tick.Lights, tick.Mode,
		boolToInt(tick.Alert), boolToInt(tick.Sent), token,
	)
	if err != nil {
		return fmt.Errorf("insert tick: %w", err)
	}

	return nil
}

// Runs returns the most recent runs with their tick counts, newest first.
// A non-positive limit returns everything.
func (j *Journal) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := j.db.Query(
		`SELECT r.run_id, r.started_at, r.link_target, COUNT(t.id)
		 FROM runs r LEFT JOIN ticks t ON t.run_id = r.run_id
		 GROUP BY r.run_id
		 ORDER BY r.started_at DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run

	for rows.Next() {
		var (
			run        Run
			startedStr string
		)

		if err := rows.Scan(&run.ID, &startedStr, &run.LinkTarget, &run.Ticks); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		run.StartedAt, err = time.Parse(time.RFC3339Nano, startedStr)
		if err != nil {
			return nil, fmt.Errorf("parse run start: %w", err)
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// Ticks returns a run's ticks in chronological order. A non-positive limit
// returns everything.
func (j *Journal) Ticks(runID string, limit int) ([]Tick, error) {
	var exists int
	if err := j.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE run_id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check run: %w", err)
	}

	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	if limit <= 0 {
		limit = -1
	}

	rows, err := j.db.Query(
		`SELECT at, raw, smoothed, confirmed, lights, mode, alert, sent, token
		 FROM ticks WHERE run_id = ?
		 ORDER BY id ASC
		 LIMIT ?`, runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list ticks: %w", err)
	}
	defer rows.Close()

	var ticks []Tick

	for rows.Next() {
		var (
			tick        Tick
			atStr       string
			alert, sent int
			token       sql.NullString
		)

		err := rows.Scan(&atStr, &tick.Raw, &tick.Smoothed, &tick.Confirmed,
			&tick.Lights, &tick.Mode, &alert, &sent, &token)
		if err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}

		tick.At, err = time.Parse(time.RFC3339Nano, atStr)
		if err != nil {
			return nil, fmt.Errorf("parse tick time: %w", err)
		}

		tick.Alert = alert != 0
		tick.Sent = sent != 0

		if token.Valid {
			tick.Token = token.String
		}

		ticks = append(ticks, tick)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticks: %w", err)
	}

	return ticks, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

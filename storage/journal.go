package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// OutcomeOK marks a turn that was committed to history. Failed turns carry
// the fault kind instead ("transport", "service", "malformed_response").
const OutcomeOK = "ok"

// TurnRecord is one row of the turn journal: a single Submit attempt.
type TurnRecord struct {
	SessionID    string
	Model        string
	StartedAt    time.Time
	Duration     time.Duration
	Outcome      string
	ToolsEnabled bool
	ToolCalls    int
}

// TurnStats summarizes the journal for one session.
type TurnStats struct {
	Turns       int            `json:"turns"`
	Committed   int            `json:"committed"`
	Faults      map[string]int `json:"faults"`
	ToolCalls   int            `json:"tool_calls"`
	AvgDuration time.Duration  `json:"avg_duration"`
}

// Journal records turn attempts in <data_dir>/journal.db.
type Journal struct {
	db *sql.DB
}

func NewJournal(dataDir string) (*Journal, error) {
	return OpenJournal(filepath.Join(dataDir, "journal.db"))
}

func OpenJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return j, nil
}

func (j *Journal) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		model TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		tools_enabled INTEGER NOT NULL,
		tool_calls INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id);
	`
	_, err := j.db.Exec(schema)
	return err
}

func (j *Journal) Record(ctx context.Context, rec TurnRecord) error {
	_, err := j.db.ExecContext(ctx, `
	INSERT INTO turns (session_id, model, started_at, duration_ms, outcome, tools_enabled, tool_calls)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.SessionID,
		rec.Model,
		rec.StartedAt.UnixMilli(),
		rec.Duration.Milliseconds(),
		rec.Outcome,
		rec.ToolsEnabled,
		rec.ToolCalls,
	)
	return err
}

// Stats aggregates every recorded attempt for a session.
func (j *Journal) Stats(ctx context.Context, sessionID string) (TurnStats, error) {
	stats := TurnStats{Faults: map[string]int{}}

	rows, err := j.db.QueryContext(ctx, `
	SELECT outcome, COUNT(*), COALESCE(SUM(tool_calls), 0), COALESCE(SUM(duration_ms), 0)
	FROM turns
	WHERE session_id = ?
	GROUP BY outcome
	`, sessionID)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	var totalMs int64
	for rows.Next() {
		var (
			outcome string
			count   int
			calls   int
			ms      int64
		)
		if err := rows.Scan(&outcome, &count, &calls, &ms); err != nil {
			return stats, err
		}
		stats.Turns += count
		stats.ToolCalls += calls
		totalMs += ms
		if outcome == OutcomeOK {
			stats.Committed += count
		} else {
			stats.Faults[outcome] += count
		}
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	if stats.Turns > 0 {
		stats.AvgDuration = time.Duration(totalMs/int64(stats.Turns)) * time.Millisecond
	}
	return stats, nil
}

// Forget removes a session's rows.
func (j *Journal) Forget(ctx context.Context, sessionID string) error {
	_, err := j.db.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, sessionID)
	return err
}

func (j *Journal) Close() error {
	return j.db.Close()
}

package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"redlight_tui/internal/round"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("round not found")

// timeLayout is fixed width so ended_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Repository struct {
	db *sql.DB
}

// busyTimeout lets a save wait out a concurrent read from the stats server.
const busyTimeout = "?_pragma=busy_timeout(5000)"

func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path+busyTimeout)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	repo := &Repository{db: db}
	if err := repo.init(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *Repository) init() error {
	roundsQuery := `
	CREATE TABLE IF NOT EXISTS rounds (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		outcome TEXT NOT NULL,
		distance REAL NOT NULL DEFAULT 0,
		progress REAL NOT NULL DEFAULT 0,
		round_duration INTEGER NOT NULL,
		played INTEGER NOT NULL,
		intensity REAL NOT NULL DEFAULT 0
	)
	`
	_, err := r.db.Exec(roundsQuery)
	return err
}

func (r *Repository) Create(rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := r.db.Exec(
		`INSERT INTO rounds (id, started_at, ended_at, outcome, distance, progress, round_duration, played, intensity)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.UTC().Format(timeLayout),
		rec.EndedAt.UTC().Format(timeLayout),
		rec.Outcome,
		rec.Distance,
		rec.Progress,
		int64(rec.RoundDuration),
		int64(rec.Played),
		rec.Intensity,
	)
	if err != nil {
		return fmt.Errorf("insert round %s: %w", rec.ID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var rec Record
	var startedAt, endedAt string
	var roundDuration, played int64
	if err := s.Scan(
		&rec.ID, &startedAt, &endedAt, &rec.Outcome,
		&rec.Distance, &rec.Progress, &roundDuration, &played, &rec.Intensity,
	); err != nil {
		return Record{}, err
	}
	var err error
	if rec.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return Record{}, fmt.Errorf("round %s started_at: %w", rec.ID, err)
	}
	if rec.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
		return Record{}, fmt.Errorf("round %s ended_at: %w", rec.ID, err)
	}
	rec.RoundDuration = time.Duration(roundDuration)
	rec.Played = time.Duration(played)
	return rec, nil
}

const selectRounds = `SELECT id, started_at, ended_at, outcome, distance, progress, round_duration, played, intensity FROM rounds`

// GetAll returns every round, most recent first.
func (r *Repository) GetAll() ([]Record, error) {
	rows, err := r.db.Query(selectRounds + " ORDER BY ended_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Repository) GetByID(id string) (*Record, error) {
	rec, err := scanRecord(r.db.QueryRow(selectRounds+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM rounds WHERE id = ?", id)
	return err
}

func (r *Repository) Stats() (Stats, error) {
	var s Stats
	var best sql.NullInt64
	err := r.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(outcome = ?), 0),
			COALESCE(SUM(outcome = ?), 0),
			COALESCE(SUM(outcome = ?), 0),
			MIN(CASE WHEN outcome = ? THEN played END),
			COALESCE(MAX(distance), 0)
		FROM rounds`,
		round.Won.String(), round.LostTimeout.String(), round.LostViolation.String(), round.Won.String(),
	).Scan(&s.Played, &s.Won, &s.LostTimeout, &s.LostViolation, &best, &s.LongestRun)
	if err != nil {
		return Stats{}, err
	}
	if best.Valid {
		s.BestTime = time.Duration(best.Int64)
	}
	return s, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"redlight_tui/internal/round"
	"redlight_tui/internal/timer"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func record(outcome round.Outcome, ended time.Time, played time.Duration, distance float64) *Record {
	return &Record{
		StartedAt:     ended.Add(-played),
		EndedAt:       ended,
		Outcome:       outcome.String(),
		Distance:      distance,
		RoundDuration: 55 * time.Second,
		Played:        played,
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ended := time.Date(2024, 3, 1, 10, 0, 0, 500, time.UTC)
	rec := record(round.LostViolation, ended, 12*time.Second, 80)
	rec.Intensity = 0.42

	if err := repo.Create(rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("Create should assign an ID")
	}

	got, err := repo.GetByID(rec.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Outcome != "lost_violation" || got.Played != 12*time.Second || got.Intensity != 0.42 {
		t.Errorf("got %+v", got)
	}
	if !got.EndedAt.Equal(ended) {
		t.Errorf("ended %v, want %v", got.EndedAt, ended)
	}

	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRepository_GetAllNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, off := range []time.Duration{0, 1500 * time.Millisecond, time.Second} {
		if err := repo.Create(record(round.Won, base.Add(off), time.Duration(i+1)*time.Second, 600)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := repo.GetAll()
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d records, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].EndedAt.After(all[i-1].EndedAt) {
			t.Errorf("records out of order at %d: %v after %v", i, all[i].EndedAt, all[i-1].EndedAt)
		}
	}

	if err := repo.Delete(all[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	all, _ = repo.GetAll()
	if len(all) != 2 {
		t.Errorf("got %d records after delete, want 2", len(all))
	}
}

func TestRepository_BadTimestamp(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.db.Exec(
		`INSERT INTO rounds (id, started_at, ended_at, outcome, round_duration, played)
		 VALUES ('bad', 'yesterday', 'today', 'won', 0, 0)`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := repo.GetAll(); err == nil {
		t.Error("GetAll should fail on an unparsable timestamp")
	}
	if _, err := repo.GetByID("bad"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID err = %v, want a parse error", err)
	}
}

func TestRepository_BusyTimeout(t *testing.T) {
	repo := newTestRepository(t)
	var ms int
	if err := repo.db.QueryRow("PRAGMA busy_timeout").Scan(&ms); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if ms != 5000 {
		t.Errorf("busy_timeout %d, want 5000", ms)
	}
	if n := repo.db.Stats().MaxOpenConnections; n != 1 {
		t.Errorf("max open connections %d, want 1", n)
	}
}

func TestRepository_Stats(t *testing.T) {
	repo := newTestRepository(t)

	empty, err := repo.Stats()
	if err != nil {
		t.Fatalf("Stats on empty db: %v", err)
	}
	if empty.Played != 0 || empty.BestTime != 0 {
		t.Errorf("empty stats %+v", empty)
	}

	now := time.Now().UTC()
	for _, rec := range []*Record{
		record(round.Won, now, 40*time.Second, 610),
		record(round.Won, now, 33*time.Second, 620),
		record(round.LostTimeout, now, 55*time.Second, 300),
		record(round.LostViolation, now, 9*time.Second, 90),
	} {
		if err := repo.Create(rec); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	s, err := repo.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := Stats{Played: 4, Won: 2, LostTimeout: 1, LostViolation: 1, BestTime: 33 * time.Second, LongestRun: 620}
	if s != want {
		t.Errorf("stats %+v, want %+v", s, want)
	}
}

func TestNewRecord(t *testing.T) {
	cfg := round.Config{
		Timer: timer.Config{
			Green: timer.Fixed(2 * time.Second),
			Red:   timer.Fixed(time.Second),
			Round: timer.Fixed(50 * time.Second),
		},
		MovementThreshold:  0.01,
		VolumeCeiling:      0.2,
		StartPosition:      55,
		FinishLinePosition: 100,
		BaseSpeed:          15,
	}
	c, err := round.New(cfg)
	if err != nil {
		t.Fatalf("round.New: %v", err)
	}
	track := round.NewTrack(cfg.StartPosition, cfg.FinishLinePosition)
	c.Begin()
	track.Advance(50)
	if _, err := c.Tick(round.Signals{FinishReached: track.Reached(), SubjectVisible: true}); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	rec := NewRecord(c, track, time.Now())
	if !rec.Won() || rec.Distance != 50 || rec.Progress != 1 {
		t.Errorf("record %+v", rec)
	}
	if rec.RoundDuration != 50*time.Second || rec.ID == "" {
		t.Errorf("record %+v", rec)
	}
}

package history

import (
	"time"

	"github.com/google/uuid"

	"redlight_tui/internal/round"
)

// Record is one finished round.
type Record struct {
	ID            string        `json:"id"`
	StartedAt     time.Time     `json:"started_at"`
	EndedAt       time.Time     `json:"ended_at"`
	Outcome       string        `json:"outcome"`
	Distance      float64       `json:"distance"`
	Progress      float64       `json:"progress"`
	RoundDuration time.Duration `json:"round_duration"`
	Played        time.Duration `json:"played"`
	// Intensity is the movement level that caused a violation, if any.
	Intensity float64 `json:"intensity,omitempty"`
}

// NewRecord captures a round that has just reached a terminal outcome.
func NewRecord(c *round.Controller, track *round.Track, startedAt time.Time) *Record {
	r := &Record{
		ID:            uuid.NewString(),
		StartedAt:     startedAt,
		EndedAt:       time.Now(),
		Outcome:       c.Outcome().String(),
		Distance:      track.Distance(),
		Progress:      track.Progress(),
		RoundDuration: c.RoundDuration(),
		Played:        c.Played(),
	}
	if c.Outcome() == round.LostViolation {
		r.Intensity = c.Last().Signals.MovementIntensity
	}
	return r
}

func (r *Record) Won() bool {
	return r.Outcome == round.Won.String()
}

// Stats summarizes every stored round.
type Stats struct {
	Played        int           `json:"played"`
	Won           int           `json:"won"`
	LostTimeout   int           `json:"lost_timeout"`
	LostViolation int           `json:"lost_violation"`
	BestTime      time.Duration `json:"best_time"`
	LongestRun    float64       `json:"longest_run"`
}

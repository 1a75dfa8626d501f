package timer

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRoundStarted = errors.New("round already started")
	ErrInvalidPhase = errors.New("invalid phase transition")
)

// Config holds the duration ranges sampled by a Timer.
type Config struct {
	Green DurationRange
	Red   DurationRange
	Round DurationRange

	// RawExpiry makes PhaseExpired and RoundExpired compare raw wall-clock
	// elapsed time, ignoring pauses. Remaining times stay pause-aware.
	RawExpiry bool
}

func (c Config) Validate() error {
	if err := c.Green.Validate(); err != nil {
		return fmt.Errorf("green duration: %w", err)
	}
	if err := c.Red.Validate(); err != nil {
		return fmt.Errorf("red duration: %w", err)
	}
	if err := c.Round.Validate(); err != nil {
		return fmt.Errorf("round duration: %w", err)
	}
	return nil
}

// Timer owns the light phase and all round timing. Every timer freezes while
// paused; phase pause bookkeeping is scoped to the current phase.
type Timer struct {
	cfg   Config
	clock Clock
	rand  RandSource

	phase         Phase
	phaseStart    time.Time
	phaseDuration time.Duration
	phasePaused   time.Duration
	phasePauseAt  time.Time

	roundStart    time.Time
	roundDuration time.Duration
	roundPaused   time.Duration
	roundPauseAt  time.Time
	roundStopAt   time.Time

	paused bool
}

type Option func(*Timer)

func WithClock(c Clock) Option {
	return func(t *Timer) {
		t.clock = c
	}
}

func WithRand(r RandSource) Option {
	return func(t *Timer) {
		t.rand = r
	}
}

func New(cfg Config, opts ...Option) (*Timer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Timer{
		cfg:   cfg,
		clock: SystemClock,
		rand:  SystemRand,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.Reset()
	return t, nil
}

// StartRound starts the round clock. It is only valid once per round, from Initial.
func (t *Timer) StartRound() error {
	if t.phase != Initial || !t.roundStart.IsZero() {
		return ErrRoundStarted
	}
	now := t.clock.Now()
	t.roundStart = now
	if t.paused {
		t.roundPauseAt = now
	}
	return nil
}

// EnterPhase begins a Green or Red phase with a freshly sampled duration.
func (t *Timer) EnterPhase(p Phase) error {
	var r DurationRange
	switch p {
	case Green:
		r = t.cfg.Green
	case Red:
		r = t.cfg.Red
	default:
		return fmt.Errorf("%w: enter %s", ErrInvalidPhase, p)
	}
	now := t.clock.Now()
	t.phase = p
	t.phaseStart = now
	t.phaseDuration = r.Sample(t.rand)
	t.phasePaused = 0
	t.phasePauseAt = time.Time{}
	if t.paused {
		t.phasePauseAt = now
	}
	return nil
}

// Transition leaves Green for the untimed TransitionToRed sub-phase.
func (t *Timer) Transition() error {
	if t.phase != Green {
		return fmt.Errorf("%w: transition from %s", ErrInvalidPhase, t.phase)
	}
	t.phase = TransitionToRed
	t.clearPhase()
	return nil
}

// Finish ends the round and stops the round clock where it stands.
func (t *Timer) Finish() {
	if t.phase == Finished {
		return
	}
	if !t.roundStart.IsZero() {
		t.roundStopAt = t.clock.Now()
		if t.paused {
			t.roundStopAt = t.roundPauseAt
		}
	}
	t.phase = Finished
	t.clearPhase()
}

func (t *Timer) clearPhase() {
	t.phaseStart = time.Time{}
	t.phaseDuration = 0
	t.phasePaused = 0
	t.phasePauseAt = time.Time{}
}

func (t *Timer) Pause() {
	if t.paused {
		return
	}
	now := t.clock.Now()
	t.paused = true
	t.roundPauseAt = now
	if t.phase.Timed() {
		t.phasePauseAt = now
	}
}

func (t *Timer) Resume() {
	if !t.paused {
		return
	}
	now := t.clock.Now()
	if !t.roundStart.IsZero() && !t.roundPauseAt.IsZero() && t.roundStopAt.IsZero() {
		t.roundPaused += now.Sub(t.roundPauseAt)
	}
	if t.phase.Timed() && !t.phasePauseAt.IsZero() {
		t.phasePaused += now.Sub(t.phasePauseAt)
	}
	t.paused = false
	t.roundPauseAt = time.Time{}
	t.phasePauseAt = time.Time{}
}

// Reset returns the timer to Initial with a freshly sampled round duration.
func (t *Timer) Reset() {
	t.phase = Initial
	t.clearPhase()
	t.roundStart = time.Time{}
	t.roundDuration = t.cfg.Round.Sample(t.rand)
	t.roundPaused = 0
	t.roundPauseAt = time.Time{}
	t.roundStopAt = time.Time{}
	t.paused = false
}

func (t *Timer) Phase() Phase {
	return t.phase
}

func (t *Timer) Paused() bool {
	return t.paused
}

func (t *Timer) Started() bool {
	return !t.roundStart.IsZero()
}

func (t *Timer) PhaseDuration() time.Duration {
	return t.phaseDuration
}

func (t *Timer) RoundDuration() time.Duration {
	return t.roundDuration
}

// PhaseElapsed is the pause-aware time spent in the current timed phase.
func (t *Timer) PhaseElapsed() time.Duration {
	if !t.phase.Timed() {
		return 0
	}
	return t.elapsed(t.phaseStart, t.phasePauseAt, t.phasePaused)
}

// RoundElapsed is the pause-aware time played this round.
func (t *Timer) RoundElapsed() time.Duration {
	if t.roundStart.IsZero() {
		return 0
	}
	if !t.roundStopAt.IsZero() {
		return nonNegative(t.roundStopAt.Sub(t.roundStart) - t.roundPaused)
	}
	return t.elapsed(t.roundStart, t.roundPauseAt, t.roundPaused)
}

func (t *Timer) RemainingPhase() time.Duration {
	if !t.phase.Timed() {
		return 0
	}
	return nonNegative(t.phaseDuration - t.PhaseElapsed())
}

func (t *Timer) RemainingRound() time.Duration {
	if t.roundStart.IsZero() {
		return t.roundDuration
	}
	return nonNegative(t.roundDuration - t.RoundElapsed())
}

func (t *Timer) PhaseExpired() bool {
	if !t.phase.Timed() {
		return false
	}
	if t.cfg.RawExpiry {
		return t.clock.Now().Sub(t.phaseStart) >= t.phaseDuration
	}
	return t.PhaseElapsed() >= t.phaseDuration
}

func (t *Timer) RoundExpired() bool {
	if t.roundStart.IsZero() {
		return false
	}
	if t.cfg.RawExpiry && t.roundStopAt.IsZero() {
		return t.clock.Now().Sub(t.roundStart) >= t.roundDuration
	}
	return t.RoundElapsed() >= t.roundDuration
}

func (t *Timer) elapsed(start, pauseAt time.Time, paused time.Duration) time.Duration {
	end := t.clock.Now()
	if t.paused && !pauseAt.IsZero() {
		end = pauseAt
	}
	return nonNegative(end.Sub(start) - paused)
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

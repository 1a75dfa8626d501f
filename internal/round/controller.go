package round

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"redlight_tui/internal/timer"
)

var (
	ErrNotStarted     = errors.New("round not started")
	ErrAlreadyStarted = errors.New("round already started")
	ErrPaused         = errors.New("round is paused")
	ErrRoundOver      = errors.New("round is over")
	ErrInvalidConfig  = errors.New("invalid round config")
)

// Speed bonus shaping: volume normalizes to at most 1.5 and a known pitch
// scales it by (pitch-100)/140, clamped to [0, 5].
const (
	maxNormalizedVolume = 1.5
	pitchFloorHz        = 100.0
	pitchSpanHz         = 140.0
	maxPitchMultiplier  = 5.0
)

type Config struct {
	Timer timer.Config

	MovementThreshold float64
	// VolumeCeiling is the intensity that normalizes to a volume of 1.0.
	VolumeCeiling   float64
	TransitionGrace time.Duration

	StartPosition      float64
	FinishLinePosition float64
	BaseSpeed          float64
	MaxSpeedBonus      float64
}

func (c Config) Validate() error {
	if err := c.Timer.Validate(); err != nil {
		return err
	}
	switch {
	case c.MovementThreshold < 0:
		return fmt.Errorf("%w: negative movement threshold", ErrInvalidConfig)
	case c.VolumeCeiling <= c.MovementThreshold:
		return fmt.Errorf("%w: volume ceiling %.3f must exceed threshold %.3f", ErrInvalidConfig, c.VolumeCeiling, c.MovementThreshold)
	case c.TransitionGrace < 0:
		return fmt.Errorf("%w: negative transition grace", ErrInvalidConfig)
	case c.FinishLinePosition <= c.StartPosition:
		return fmt.Errorf("%w: finish line %.1f not past start %.1f", ErrInvalidConfig, c.FinishLinePosition, c.StartPosition)
	case c.BaseSpeed < 0 || c.MaxSpeedBonus < 0:
		return fmt.Errorf("%w: negative speed", ErrInvalidConfig)
	}
	return nil
}

// Result is what a tick commits for the rendering and audio layers.
type Result struct {
	Phase        timer.Phase
	Outcome      Outcome
	Displacement float64
	Notice       Notice
	Events       []Event
	Signals      Signals
}

// Controller runs one round: it advances the light phases, applies the
// movement rules and decides the outcome. It owns its Timer exclusively.
type Controller struct {
	cfg      Config
	timer    *timer.Timer
	clock    timer.Clock
	observer Observer

	begun           bool
	outcome         Outcome
	transitionStart time.Time
	last            Result
}

type Option func(*options)

type options struct {
	clock    timer.Clock
	rand     timer.RandSource
	observer Observer
}

func WithClock(c timer.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

func WithRand(r timer.RandSource) Option {
	return func(o *options) {
		o.rand = r
	}
}

func WithObserver(fn Observer) Option {
	return func(o *options) {
		o.observer = fn
	}
}

func New(cfg Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{clock: timer.SystemClock, rand: timer.SystemRand}
	for _, opt := range opts {
		opt(&o)
	}
	t, err := timer.New(cfg.Timer, timer.WithClock(o.clock), timer.WithRand(o.rand))
	if err != nil {
		return nil, err
	}
	return &Controller{
		cfg:      cfg,
		timer:    t,
		clock:    o.clock,
		observer: o.observer,
		last:     Result{Phase: timer.Initial, Notice: NoticeStart},
	}, nil
}

// Begin starts the round timer and lights green.
func (c *Controller) Begin() error {
	if c.outcome.Terminal() {
		return ErrRoundOver
	}
	if c.begun {
		return ErrAlreadyStarted
	}
	if err := c.timer.StartRound(); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := c.timer.EnterPhase(timer.Green); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	c.begun = true
	res := Result{Phase: timer.Green, Notice: NoticeGreenLight}
	c.emit(&res, EnteredGreen)
	c.last = res
	log.Printf("round: begin duration=%s green=%s", c.timer.RoundDuration(), c.timer.PhaseDuration())
	return nil
}

// Tick evaluates one frame. Phase expiry is checked first, then movement
// rules, then the win and timeout conditions.
func (c *Controller) Tick(s Signals) (Result, error) {
	switch {
	case !c.begun:
		return c.last, ErrNotStarted
	case c.outcome.Terminal():
		return c.last, ErrRoundOver
	case c.timer.Paused():
		return c.last, ErrPaused
	}

	s = s.sanitized()
	res := Result{Signals: s}
	switch c.timer.Phase() {
	case timer.Green:
		c.tickGreen(s, &res)
	case timer.TransitionToRed:
		c.tickTransition(&res)
	case timer.Red:
		c.tickRed(s, &res)
	}

	if !c.outcome.Terminal() {
		switch {
		case s.FinishReached:
			c.end(Won, &res)
		case c.timer.RoundExpired():
			c.end(LostTimeout, &res)
		}
	}

	res.Phase = c.timer.Phase()
	res.Outcome = c.outcome
	c.last = res
	return res, nil
}

func (c *Controller) tickGreen(s Signals, res *Result) {
	if c.timer.PhaseExpired() {
		c.timer.Transition()
		c.transitionStart = c.clock.Now()
		res.Notice = NoticePrepareRed
		c.emit(res, EnteringTransition)
		return
	}
	if !s.SubjectVisible {
		res.Notice = NoticeShowYourself
		return
	}
	if s.MovementIntensity > c.cfg.MovementThreshold {
		res.Displacement = c.cfg.BaseSpeed + c.speedBonus(s)
		res.Notice = NoticeMoving
		return
	}
	res.Notice = NoticeMakeNoise
}

func (c *Controller) tickTransition(res *Result) {
	if c.clock.Now().Sub(c.transitionStart) < c.cfg.TransitionGrace {
		res.Notice = NoticePrepareRed
		return
	}
	c.timer.EnterPhase(timer.Red)
	c.transitionStart = time.Time{}
	res.Notice = NoticeRedLight
	c.emit(res, EnteredRed)
}

func (c *Controller) tickRed(s Signals, res *Result) {
	if c.timer.PhaseExpired() {
		c.timer.EnterPhase(timer.Green)
		res.Notice = NoticeGreenLight
		c.emit(res, EnteredGreen)
		return
	}
	if !s.SubjectVisible {
		res.Notice = NoticeShowYourself
		return
	}
	if s.MovementIntensity > c.cfg.MovementThreshold {
		c.end(LostViolation, res)
		return
	}
	res.Notice = NoticeRedLight
}

// end commits a terminal outcome. The ending tick authorizes no displacement.
func (c *Controller) end(o Outcome, res *Result) {
	c.outcome = o
	c.timer.Finish()
	res.Displacement = 0
	switch o {
	case Won:
		res.Notice = NoticeWon
		c.emit(res, RoundWon)
	case LostTimeout:
		res.Notice = NoticeTimeUp
		c.emit(res, RoundLostTimeout)
	case LostViolation:
		res.Notice = NoticeViolation
		c.emit(res, RoundLostViolation)
	}
	log.Printf("round: over outcome=%s played=%s", o, c.timer.RoundElapsed())
}

func (c *Controller) speedBonus(s Signals) float64 {
	span := c.cfg.VolumeCeiling - c.cfg.MovementThreshold
	volume := math.Min(maxNormalizedVolume, (s.MovementIntensity-c.cfg.MovementThreshold)/span)
	pitch := 1.0
	if s.PitchHz > 0 {
		pitch = math.Min(maxPitchMultiplier, math.Max(0, (s.PitchHz-pitchFloorHz)/pitchSpanHz))
	}
	return math.Min(c.cfg.MaxSpeedBonus, volume*pitch)
}

func (c *Controller) emit(res *Result, e Event) {
	res.Events = append(res.Events, e)
	if c.observer != nil {
		c.observer(e)
	}
}

// Pause freezes the round and phase timers. It is a no-op when already paused.
func (c *Controller) Pause() error {
	if err := c.running(); err != nil {
		return err
	}
	if !c.timer.Paused() {
		c.timer.Pause()
		c.last.Notice = NoticePaused
		c.last.Displacement = 0
		c.last.Events = nil
	}
	return nil
}

func (c *Controller) Resume() error {
	if err := c.running(); err != nil {
		return err
	}
	if c.timer.Paused() {
		c.timer.Resume()
		c.last.Notice = NoticeResumed
		c.last.Events = nil
	}
	return nil
}

func (c *Controller) running() error {
	if !c.begun {
		return ErrNotStarted
	}
	if c.outcome.Terminal() {
		return ErrRoundOver
	}
	return nil
}

// Reset discards the round and returns to Initial with fresh durations.
func (c *Controller) Reset() {
	c.timer.Reset()
	c.begun = false
	c.outcome = InProgress
	c.transitionStart = time.Time{}
	c.last = Result{Phase: timer.Initial, Notice: NoticeStart}
}

func (c *Controller) Phase() timer.Phase {
	return c.timer.Phase()
}

func (c *Controller) Outcome() Outcome {
	return c.outcome
}

func (c *Controller) Begun() bool {
	return c.begun
}

func (c *Controller) Paused() bool {
	return c.timer.Paused()
}

func (c *Controller) RemainingPhase() time.Duration {
	return c.timer.RemainingPhase()
}

func (c *Controller) RemainingRound() time.Duration {
	return c.timer.RemainingRound()
}

// RemainingTransition is the grace left before red; zero outside the transition.
func (c *Controller) RemainingTransition() time.Duration {
	if c.timer.Phase() != timer.TransitionToRed {
		return 0
	}
	left := c.cfg.TransitionGrace - c.clock.Now().Sub(c.transitionStart)
	return max(left, 0)
}

func (c *Controller) RoundDuration() time.Duration {
	return c.timer.RoundDuration()
}

// Played is the pause-aware time spent in the round so far.
func (c *Controller) Played() time.Duration {
	return c.timer.RoundElapsed()
}

// Displacement is the movement authorized by the latest tick.
func (c *Controller) Displacement() float64 {
	return c.last.Displacement
}

// Last returns the most recently committed result.
func (c *Controller) Last() Result {
	return c.last
}

package round

import "math"

// Outcome is the round-level result.
type Outcome int

const (
	InProgress Outcome = iota
	Won
	LostTimeout
	LostViolation
)

func (o Outcome) String() string {
	switch o {
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case LostTimeout:
		return "lost_timeout"
	case LostViolation:
		return "lost_violation"
	}
	return "unknown"
}

// Terminal reports whether the round has ended.
func (o Outcome) Terminal() bool {
	return o != InProgress
}

// Event is a discrete transition notification, emitted exactly once per transition.
type Event int

const (
	EnteredGreen Event = iota
	EnteredRed
	EnteringTransition
	RoundWon
	RoundLostTimeout
	RoundLostViolation
)

func (e Event) String() string {
	switch e {
	case EnteredGreen:
		return "entered_green"
	case EnteredRed:
		return "entered_red"
	case EnteringTransition:
		return "entering_transition"
	case RoundWon:
		return "round_won"
	case RoundLostTimeout:
		return "round_lost_timeout"
	case RoundLostViolation:
		return "round_lost_violation"
	}
	return "unknown"
}

// Observer receives events as the controller emits them.
type Observer func(Event)

// Notice is the player-facing hint for the latest tick.
type Notice int

const (
	NoticeNone Notice = iota
	NoticeStart
	NoticeGreenLight
	NoticeMakeNoise
	NoticeMoving
	NoticePrepareRed
	NoticeRedLight
	NoticeShowYourself
	NoticePaused
	NoticeResumed
	NoticeWon
	NoticeTimeUp
	NoticeViolation
)

// Signals are the per-tick inputs captured by external collaborators.
type Signals struct {
	// MovementIntensity is the normalized loudness/activity level, >= 0.
	MovementIntensity float64
	// PitchHz is the dominant frequency; zero when unknown.
	PitchHz        float64
	FinishReached  bool
	SubjectVisible bool
}

// Neutral is what a failed sensor reports: no movement, subject not visible.
func Neutral() Signals {
	return Signals{}
}

func (s Signals) sanitized() Signals {
	s.MovementIntensity = nonNegative(s.MovementIntensity)
	s.PitchHz = nonNegative(s.PitchHz)
	return s
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

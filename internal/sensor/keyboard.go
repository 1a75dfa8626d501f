// Package sensor turns key presses into the movement signals a microphone and
// pose tracker would otherwise supply.
package sensor

import (
	"time"

	"redlight_tui/internal/timer"
)

// Sample is one reading of the player-facing sensors.
type Sample struct {
	Intensity float64
	PitchHz   float64
	Visible   bool
}

// Source is anything the game loop can read a Sample from once per frame.
type Source interface {
	Sample() Sample
}

// Neutral is the degraded source: silent and not visible.
type Neutral struct{}

func (Neutral) Sample() Sample {
	return Sample{}
}

const (
	pitchStepHz = 40.0
	maxPitchHz  = 1000.0
)

// Keyboard treats every shout key press as a burst of loudness that decays
// linearly to silence over the hold window. Terminals repeat held keys, so
// holding the key keeps the level up.
type Keyboard struct {
	clock   timer.Clock
	level   float64
	hold    time.Duration
	pitch   float64
	visible bool

	pressedAt time.Time
}

func NewKeyboard(level float64, hold time.Duration, pitchHz float64, clock timer.Clock) *Keyboard {
	if clock == nil {
		clock = timer.SystemClock
	}
	return &Keyboard{
		clock:   clock,
		level:   level,
		hold:    hold,
		pitch:   pitchHz,
		visible: true,
	}
}

func (k *Keyboard) Press() {
	k.pressedAt = k.clock.Now()
}

// Silence drops any pending shout immediately.
func (k *Keyboard) Silence() {
	k.pressedAt = time.Time{}
}

func (k *Keyboard) PitchUp() {
	k.pitch = min(k.pitch+pitchStepHz, maxPitchHz)
}

func (k *Keyboard) PitchDown() {
	k.pitch = max(k.pitch-pitchStepHz, 0)
}

func (k *Keyboard) Pitch() float64 {
	return k.pitch
}

func (k *Keyboard) ToggleVisible() {
	k.visible = !k.visible
}

func (k *Keyboard) Visible() bool {
	return k.visible
}

func (k *Keyboard) Sample() Sample {
	s := Sample{Visible: k.visible}
	if k.pressedAt.IsZero() || k.hold <= 0 {
		return s
	}
	since := k.clock.Now().Sub(k.pressedAt)
	if since < 0 || since >= k.hold {
		return s
	}
	s.Intensity = k.level * (1 - float64(since)/float64(k.hold))
	s.PitchHz = k.pitch
	return s
}

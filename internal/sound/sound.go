// Package sound plays short synthesized cues for round events.
package sound

import (
	"fmt"
	"log"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"

	"redlight_tui/internal/round"
)

type Cue int

const (
	CueGreenLight Cue = iota
	CueRedLight
	CueWin
	CueLose
)

func (c Cue) String() string {
	switch c {
	case CueGreenLight:
		return "green_light"
	case CueRedLight:
		return "red_light"
	case CueWin:
		return "win"
	case CueLose:
		return "lose"
	}
	return "unknown"
}

// ForEvent maps a round event to the cue it triggers.
func ForEvent(e round.Event) (Cue, bool) {
	switch e {
	case round.EnteredGreen:
		return CueGreenLight, true
	case round.EnteringTransition:
		return CueRedLight, true
	case round.RoundWon:
		return CueWin, true
	case round.RoundLostTimeout, round.RoundLostViolation:
		return CueLose, true
	}
	return 0, false
}

type note struct {
	freq float64 // 0 is a rest
	dur  time.Duration
}

var melodies = map[Cue][]note{
	CueGreenLight: {{523.25, 120 * time.Millisecond}, {659.25, 120 * time.Millisecond}, {783.99, 200 * time.Millisecond}},
	CueRedLight:   {{440, 150 * time.Millisecond}, {0, 50 * time.Millisecond}, {440, 150 * time.Millisecond}, {349.23, 250 * time.Millisecond}},
	CueWin:        {{523.25, 100 * time.Millisecond}, {659.25, 100 * time.Millisecond}, {783.99, 100 * time.Millisecond}, {1046.5, 350 * time.Millisecond}},
	CueLose:       {{392, 200 * time.Millisecond}, {311.13, 200 * time.Millisecond}, {261.63, 450 * time.Millisecond}},
}

// Length is the playing time of a cue.
func Length(c Cue) time.Duration {
	var total time.Duration
	for _, n := range melodies[c] {
		total += n.dur
	}
	return total
}

// Tone builds the streamer for a cue at the given sample rate.
func Tone(sr beep.SampleRate, c Cue) (beep.Streamer, error) {
	notes, ok := melodies[c]
	if !ok {
		return nil, fmt.Errorf("unknown cue %d", c)
	}
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		samples := sr.N(n.dur)
		if n.freq == 0 {
			parts = append(parts, beep.Silence(samples))
			continue
		}
		tone, err := generators.SineTone(sr, n.freq)
		if err != nil {
			return nil, fmt.Errorf("cue %s: %w", c, err)
		}
		parts = append(parts, beep.Take(samples, tone))
	}
	return &effects.Gain{Streamer: beep.Seq(parts...), Gain: -0.7}, nil
}

type Player interface {
	Play(Cue)
}

// Nop discards cues. It is used when sound is disabled or the device is missing.
type Nop struct{}

func (Nop) Play(Cue) {}

// Speaker plays cues on the default audio device.
type Speaker struct {
	sr beep.SampleRate
}

func NewSpeaker(sampleRate int) (*Speaker, error) {
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(50*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return &Speaker{sr: sr}, nil
}

func (s *Speaker) Play(c Cue) {
	st, err := Tone(s.sr, c)
	if err != nil {
		log.Printf("sound: %v", err)
		return
	}
	speaker.Play(st)
}

func (s *Speaker) Close() {
	speaker.Close()
}

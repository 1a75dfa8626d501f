package round

// Track is the player's displacement accumulator along the course.
type Track struct {
	Start      float64
	FinishLine float64
	Position   float64
}

func NewTrack(start, finishLine float64) *Track {
	return &Track{
		Start:      start,
		FinishLine: finishLine,
		Position:   start,
	}
}

func (t *Track) Advance(d float64) {
	if d > 0 {
		t.Position += d
	}
}

// Reached reports whether the player has crossed the finish line.
func (t *Track) Reached() bool {
	return t.Position > t.FinishLine
}

// Progress is the covered fraction of the course, clamped to [0, 1].
func (t *Track) Progress() float64 {
	span := t.FinishLine - t.Start
	if span <= 0 {
		return 1
	}
	p := (t.Position - t.Start) / span
	return min(max(p, 0), 1)
}

func (t *Track) Distance() float64 {
	return t.Position - t.Start
}

func (t *Track) Reset() {
	t.Position = t.Start
}

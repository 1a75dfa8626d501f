package timer

// Phase is one segment of a round's light cycle.
type Phase int

const (
	Initial Phase = iota
	Green
	Red
	TransitionToRed
	Finished
)

func (p Phase) String() string {
	switch p {
	case Initial:
		return "initial"
	case Green:
		return "green"
	case Red:
		return "red"
	case TransitionToRed:
		return "transition_to_red"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// Timed reports whether the phase runs against a sampled deadline.
func (p Phase) Timed() bool {
	return p == Green || p == Red
}

package timer

import (
	"errors"
	"testing"
	"time"
)

type fixedRand struct{ k int64 }

func (r fixedRand) Int64N(n int64) int64 {
	if r.k >= n {
		return n - 1
	}
	return r.k
}

func TestDurationRange_Validate(t *testing.T) {
	tests := []struct {
		name  string
		r     DurationRange
		valid bool
	}{
		{"half open", DurationRange{Min: 2 * time.Second, Max: 5 * time.Second}, true},
		{"fixed", Fixed(2 * time.Second), true},
		{"zero min", DurationRange{Min: 0, Max: time.Second}, true},
		{"inverted", DurationRange{Min: 5 * time.Second, Max: 2 * time.Second}, false},
		{"negative min", DurationRange{Min: -time.Second, Max: time.Second}, false},
		{"empty", DurationRange{}, false},
		{"negative step", DurationRange{Min: time.Second, Max: 2 * time.Second, Step: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidRange) {
				t.Errorf("err = %v, want ErrInvalidRange", err)
			}
		})
	}
}

func TestDurationRange_SampleWholeSteps(t *testing.T) {
	r := DurationRange{Min: 2 * time.Second, Max: 5 * time.Second}
	want := []time.Duration{2 * time.Second, 3 * time.Second, 4 * time.Second, 4 * time.Second}
	for k, w := range want {
		if got := r.Sample(fixedRand{k: int64(k)}); got != w {
			t.Errorf("k=%d: got %v, want %v", k, got, w)
		}
	}
}

func TestDurationRange_SampleFixed(t *testing.T) {
	r := Fixed(2 * time.Second)
	for range 50 {
		if got := r.Sample(SystemRand); got != 2*time.Second {
			t.Fatalf("got %v, want 2s", got)
		}
	}
}

func TestDurationRange_SampleBounds(t *testing.T) {
	ranges := []DurationRange{
		{Min: 50 * time.Second, Max: 61 * time.Second},
		{Min: 500 * time.Millisecond, Max: 2 * time.Second, Step: 250 * time.Millisecond},
		{Min: time.Second, Max: 2500 * time.Millisecond},
	}
	for _, r := range ranges {
		seen := map[time.Duration]bool{}
		for range 1000 {
			d := r.Sample(SystemRand)
			if d < r.Min || d >= r.Max {
				t.Fatalf("%v outside [%v, %v)", d, r.Min, r.Max)
			}
			seen[d] = true
		}
		if len(seen) < 2 {
			t.Errorf("range %+v sampled a single value", r)
		}
	}
}

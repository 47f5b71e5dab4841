package filter

// Schmitt is a leveled comparator with hysteresis: the output goes high
// when the input reaches High and low only when it falls to Low,
// suppressing chatter around a single threshold. Low must be below High.
type Schmitt struct {
	low, high int32
	state     bool
}

// NewSchmitt returns a comparator that is initially low.
func NewSchmitt(low, high int32) *Schmitt {
	if low > high {
		low, high = high, low
	}
	return &Schmitt{low: low, high: high}
}

// Update folds in a sample and returns the comparator output.
func (s *Schmitt) Update(x int32) bool {
	if s.state {
		if x <= s.low {
			s.state = false
		}
	} else {
		if x >= s.high {
			s.state = true
		}
	}
	return s.state
}

// State returns the current output without updating.
func (s *Schmitt) State() bool { return s.state }

// Deadzone zeroes inputs whose magnitude is below the threshold and
// shifts the remainder toward zero, removing jitter around a center
// point (joystick centers, idle sensor noise).
func Deadzone(x, threshold int32) int32 {
	if threshold <= 0 {
		return x
	}
	switch {
	case x > threshold:
		return x - threshold
	case x < -threshold:
		return x + threshold
	default:
		return 0
	}
}

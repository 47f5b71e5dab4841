// Package filter provides small integer smoothing filters for sensor
// and telemetry paths. All arithmetic is fixed point; no floats.
package filter

// MovingAverage is a fixed-window boxcar filter over int32 samples.
type MovingAverage struct {
	window []int32
	sum    int64
	idx    int
	filled int
}

// NewMovingAverage returns a filter averaging the last n samples (n >= 1).
func NewMovingAverage(n int) *MovingAverage {
	if n < 1 {
		n = 1
	}
	return &MovingAverage{window: make([]int32, n)}
}

// Update pushes a sample and returns the current rounded average.
func (m *MovingAverage) Update(x int32) int32 {
	if m.filled == len(m.window) {
		m.sum -= int64(m.window[m.idx])
	} else {
		m.filled++
	}
	m.window[m.idx] = x
	m.sum += int64(x)
	m.idx++
	if m.idx == len(m.window) {
		m.idx = 0
	}
	n := int64(m.filled)
	// Round half away from zero.
	if m.sum >= 0 {
		return int32((m.sum + n/2) / n)
	}
	return int32((m.sum - n/2) / n)
}

// Reset discards all accumulated samples.
func (m *MovingAverage) Reset() {
	for i := range m.window {
		m.window[i] = 0
	}
	m.sum, m.idx, m.filled = 0, 0, 0
}

// Exponential is a first-order IIR smoother with a shift-based
// coefficient: y += (x - y) >> k. Larger k smooths harder.
type Exponential struct {
	k      uint8
	y      int32
	primed bool
}

// NewExponential returns a smoother with coefficient 1/2^k, k in [0..15].
func NewExponential(k uint8) *Exponential {
	if k > 15 {
		k = 15
	}
	return &Exponential{k: k}
}

// Update folds in a sample and returns the smoothed value. The first
// sample primes the state directly so the output does not ramp from zero.
func (e *Exponential) Update(x int32) int32 {
	if !e.primed {
		e.y = x
		e.primed = true
		return e.y
	}
	e.y += (x - e.y) >> e.k
	return e.y
}

// Value returns the current output without updating.
func (e *Exponential) Value() int32 { return e.y }

// Reset clears the primed state.
func (e *Exponential) Reset() { e.y, e.primed = 0, false }

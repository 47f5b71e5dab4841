// Package pid provides a fixed-point PID controller for control loops
// fed by the telemetry path. Gains are expressed in Q8 (value/256).
package pid

// Controller holds gains and accumulated state. Not safe for
// concurrent use; run it from a single control loop.
type Controller struct {
	KpQ8, KiQ8, KdQ8 int32

	OutMin, OutMax int32

	integral int64
	lastErr  int32
	primed   bool
}

// New returns a controller with Q8 gains and symmetric output limits.
func New(kpQ8, kiQ8, kdQ8, outLimit int32) *Controller {
	return &Controller{
		KpQ8: kpQ8, KiQ8: kiQ8, KdQ8: kdQ8,
		OutMin: -outLimit, OutMax: outLimit,
	}
}

// Update advances the loop one step and returns the clamped output.
// The derivative term is zero on the first call.
func (c *Controller) Update(setpoint, measured int32) int32 {
	err := setpoint - measured

	var deriv int32
	if c.primed {
		deriv = err - c.lastErr
	}
	c.lastErr = err
	c.primed = true

	c.integral += int64(err)

	out := (int64(c.KpQ8)*int64(err) +
		int64(c.KiQ8)*c.integral +
		int64(c.KdQ8)*int64(deriv)) >> 8

	// Clamp and unwind the integral when saturated so it cannot run away.
	if out > int64(c.OutMax) {
		out = int64(c.OutMax)
		c.integral -= int64(err)
	} else if out < int64(c.OutMin) {
		out = int64(c.OutMin)
		c.integral -= int64(err)
	}
	return int32(out)
}

// Reset clears accumulated state; gains and limits stay.
func (c *Controller) Reset() {
	c.integral = 0
	c.lastErr = 0
	c.primed = false
}

// Package softtimer is a minimal periodic-timer back-end for the
// capability dispatch layer. It deliberately wires only a subset of the
// abstract timer operations (no compare channels); dispatch-layer
// callers get the unsupported default for the rest, which is exactly
// the degradation the dispatch contract promises.
package softtimer

import (
	"sync/atomic"
	"time"

	"serialcore-go/errcode"
	"serialcore-go/periph"
	"serialcore-go/types"
	"serialcore-go/x/timex"
)

const (
	OpStart     periph.Op = "start"
	OpStop      periph.Op = "stop"
	OpTicks     periph.Op = "ticks"
	OpSetPeriod periph.Op = "set_period"
)

// Timer counts elapsed periods. Tick delivery is either driven by an
// internal time.Ticker (Start) or injected by hand (Advance) on hosts
// and in tests.
type Timer struct {
	period  atomic.Int64 // nanoseconds
	ticks   atomic.Uint32
	running atomic.Bool
	stop    chan struct{}
}

// New returns a stopped timer with the given period.
func New(period time.Duration) *Timer {
	t := &Timer{}
	if period <= 0 {
		period = time.Second
	}
	t.period.Store(int64(period))
	return t
}

// NewFromHz is a convenience for rate-style configuration.
func NewFromHz(freqHz uint32) *Timer { return New(timex.PeriodFromHz(freqHz)) }

// Start launches the ticker goroutine. Idempotent while running.
func (t *Timer) Start() {
	if !t.running.CompareAndSwap(false, true) {
		return
	}
	t.stop = make(chan struct{})
	go func(stop chan struct{}) {
		tick := time.NewTicker(time.Duration(t.period.Load()))
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				t.ticks.Add(1)
			}
		}
	}(t.stop)
}

// Stop halts tick delivery. Idempotent.
func (t *Timer) Stop() {
	if t.running.CompareAndSwap(true, false) {
		close(t.stop)
	}
}

// Advance injects n ticks directly, standing in for the hardware event
// on host builds.
func (t *Timer) Advance(n uint32) { t.ticks.Add(n) }

// Ticks returns the number of periods elapsed since construction.
func (t *Timer) Ticks() uint32 { return t.ticks.Load() }

// SetPeriod changes the period for the next Start. It does not retune a
// running ticker.
func (t *Timer) SetPeriod(period time.Duration) error {
	if period <= 0 {
		return errcode.InvalidConfig
	}
	t.period.Store(int64(period))
	return nil
}

// Period returns the configured period.
func (t *Timer) Period() time.Duration { return time.Duration(t.period.Load()) }

var table = periph.NewTable(string(types.KindTimer), map[periph.Op]periph.OpFunc{
	OpStart: func(inst any, _ ...any) (any, error) {
		inst.(*Timer).Start()
		return nil, nil
	},
	OpStop: func(inst any, _ ...any) (any, error) {
		inst.(*Timer).Stop()
		return nil, nil
	},
	OpTicks: func(inst any, _ ...any) (any, error) {
		return inst.(*Timer).Ticks(), nil
	},
	OpSetPeriod: func(inst any, args ...any) (any, error) {
		if len(args) < 1 {
			return nil, errcode.InvalidPayload
		}
		d, ok := args[0].(time.Duration)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		return nil, inst.(*Timer).SetPeriod(d)
	},
})

// NewHandle binds a fresh timer to a dispatch handle; the single Bind
// site for this type.
func NewHandle(period time.Duration) (*periph.Handle, *Timer) {
	tm := New(period)
	h := &periph.Handle{}
	h.Bind(tm, table)
	return h, tm
}

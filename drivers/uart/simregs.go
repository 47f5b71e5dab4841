package uart

import (
	"sync"
	"sync/atomic"
)

// SimRegs is a host-side register file implementing Regs. Individual
// registers behave like hardware: reads and writes are single-word
// atomic operations. Test and demo code injects events with the
// helpers below, then calls the engine's Handle*Interrupt entry points
// the way a vectored interrupt would.
type SimRegs struct {
	rxIE atomic.Bool
	txIE atomic.Bool
	rxOn atomic.Bool
	txOn atomic.Bool

	overrun   atomic.Bool
	hasUnread atomic.Bool
	rxData    atomic.Uint32
	txEmpty   atomic.Bool
	txData    atomic.Uint32

	divisor atomic.Uint32
	frame   atomic.Pointer[Frame]

	cts atomic.Bool
	rts atomic.Bool

	mu        sync.Mutex
	rxToggles []bool // SetReceiverEnabled history, for recovery asserts
	txLog     []byte // every byte written to the data register
}

// NewSimRegs returns a register file in reset state: transmit register
// empty, everything else off.
func NewSimRegs() *SimRegs {
	s := &SimRegs{}
	s.txEmpty.Store(true)
	return s
}

// ---- Regs implementation ----

func (s *SimRegs) SetRxInterruptEnabled(on bool) { s.rxIE.Store(on) }
func (s *SimRegs) SetTxInterruptEnabled(on bool) { s.txIE.Store(on) }
func (s *SimRegs) RxInterruptEnabled() bool      { return s.rxIE.Load() }
func (s *SimRegs) TxInterruptEnabled() bool      { return s.txIE.Load() }

func (s *SimRegs) SetReceiverEnabled(on bool) {
	s.rxOn.Store(on)
	if !on {
		// Hardware clears the overrun latch when continuous-receive
		// is dropped.
		s.overrun.Store(false)
	}
	s.mu.Lock()
	s.rxToggles = append(s.rxToggles, on)
	s.mu.Unlock()
}
func (s *SimRegs) ReceiverEnabled() bool         { return s.rxOn.Load() }
func (s *SimRegs) SetTransmitterEnabled(on bool) { s.txOn.Store(on) }
func (s *SimRegs) TransmitterEnabled() bool      { return s.txOn.Load() }

func (s *SimRegs) OverrunLatched() bool  { return s.overrun.Load() }
func (s *SimRegs) TxRegisterEmpty() bool { return s.txEmpty.Load() }
func (s *SimRegs) RxRegisterFull() bool  { return s.hasUnread.Load() }

func (s *SimRegs) ReadData() byte {
	s.hasUnread.Store(false)
	return byte(s.rxData.Load())
}

func (s *SimRegs) WriteData(b byte) {
	s.txData.Store(uint32(b))
	s.txEmpty.Store(false)
	s.mu.Lock()
	s.txLog = append(s.txLog, b)
	s.mu.Unlock()
}

func (s *SimRegs) SetDivisor(d uint16) { s.divisor.Store(uint32(d)) }
func (s *SimRegs) SetFrame(f Frame)    { s.frame.Store(&f) }

func (s *SimRegs) ClearToSend() bool   { return s.cts.Load() }
func (s *SimRegs) RequestToSend() bool { return s.rts.Load() }

// ---- Event injection (the "wire" side) ----

// InjectByte models a byte arriving off the wire. If the previous byte
// is still unread the overrun latch is set and the new byte is lost,
// matching receive-FIFO hardware. Returns false on overrun.
func (s *SimRegs) InjectByte(b byte) bool {
	if !s.rxOn.Load() {
		return false
	}
	if s.hasUnread.Load() {
		s.overrun.Store(true)
		return false
	}
	s.rxData.Store(uint32(b))
	s.hasUnread.Store(true)
	return true
}

// CompleteTransmit models the shifter finishing the current byte: the
// transmit register empties and the sent byte is returned.
func (s *SimRegs) CompleteTransmit() byte {
	s.txEmpty.Store(true)
	return byte(s.txData.Load())
}

// SetClearToSend / SetRequestToSend drive the flow-control pins.
func (s *SimRegs) SetClearToSend(level bool)   { s.cts.Store(level) }
func (s *SimRegs) SetRequestToSend(level bool) { s.rts.Store(level) }

// ---- Inspection ----

// Divisor returns the programmed baud-rate register value.
func (s *SimRegs) Divisor() uint16 { return uint16(s.divisor.Load()) }

// CurrentFrame returns the last programmed framing, zero value if none.
func (s *SimRegs) CurrentFrame() Frame {
	if f := s.frame.Load(); f != nil {
		return *f
	}
	return Frame{}
}

// ReceiverToggles returns the SetReceiverEnabled call history.
func (s *SimRegs) ReceiverToggles() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.rxToggles...)
}

// TxLog returns every byte written to the transmit-data register.
func (s *SimRegs) TxLog() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.txLog...)
}

package hal

import (
	"errors"
	"sync/atomic"

	"tinygo.org/x/drivers"

	"serialcore-go/drivers/uart"
	"serialcore-go/types"
	"serialcore-go/x/ring"
)

const defaultRingSize = 256

// ErrNoData is returned by ReadByte when the receive ring is empty.
var ErrNoData = errors.New("serial session: no data")

// Session owns the byte buffers for one serial engine. The engine never
// buffers; the session's callbacks move bytes between the data register
// and a pair of SPSC rings, one per direction. Foreground code sees the
// standard drivers.UART surface on the ring side.
//
// Receive side: the data-received callback reads the register and puts
// the byte in the rx ring (full ring counts a drop, never blocks).
// Transmit side: Write fills the tx ring and kicks an idle transmitter;
// the tx-empty callback feeds the next byte or parks the transmitter.
type Session struct {
	engine  *uart.Engine
	clockHz uint32

	rx, tx   *ring.Ring
	rxHandle ring.Handle
	txHandle ring.Handle

	txIdle atomic.Bool

	rxBytes   atomic.Uint32
	txBytes   atomic.Uint32
	droppedEv atomic.Uint32
}

// NewSession wires rings and callbacks onto an engine. Ring sizes must
// be powers of two; zero selects the default.
func NewSession(engine *uart.Engine, clockHz uint32, rxSize, txSize int) *Session {
	if rxSize == 0 {
		rxSize = defaultRingSize
	}
	if txSize == 0 {
		txSize = defaultRingSize
	}
	s := &Session{
		engine:  engine,
		clockHz: clockHz,
		rx:      ring.New(rxSize),
		tx:      ring.New(txSize),
	}
	s.rxHandle = ring.Register(s.rx)
	s.txHandle = ring.Register(s.tx)
	s.txIdle.Store(true)

	engine.SetDataReceivedHandler(s.onDataReceived)
	engine.SetTxEmptyHandler(s.onTxEmpty)
	return s
}

func (s *Session) onDataReceived() {
	b := s.engine.ReadByte()
	if !s.rx.PutByte(b) {
		s.droppedEv.Add(1)
		return
	}
	s.rxBytes.Add(1)
}

func (s *Session) onTxEmpty() {
	b, ok := s.tx.GetByte()
	if !ok {
		// Nothing queued: park until the next Write kicks us.
		s.engine.SetTransmitEnabled(false)
		s.txIdle.Store(true)
		// Re-check: a Write may have raced the park.
		if s.tx.Available() > 0 {
			s.kick()
		}
		return
	}
	if err := s.engine.TransmitByte(b); err == nil {
		s.txBytes.Add(1)
	}
}

func (s *Session) kick() {
	if !s.txIdle.CompareAndSwap(true, false) {
		return
	}
	b, ok := s.tx.GetByte()
	if !ok {
		s.txIdle.Store(true)
		return
	}
	if err := s.engine.TransmitByte(b); err != nil {
		s.txIdle.Store(true)
		return
	}
	s.txBytes.Add(1)
}

// Configure programs the engine for the requested rate at this port's
// clock, 8N1. Zero baud selects 115200.
func (s *Session) Configure(cfg drivers.UARTConfig) error {
	baud := cfg.BaudRate
	if baud == 0 {
		baud = 115200
	}
	c, err := uart.NewConfig(baud, s.clockHz)
	if err != nil {
		return err
	}
	return s.engine.Configure(c)
}

// SetBaud retunes the rate keeping the current frame format.
func (s *Session) SetBaud(baud uint32) error {
	cur := s.engine.Config()
	next, err := uart.NewConfig(baud, s.clockHz)
	if err != nil {
		return err
	}
	if s.engine.Configured() {
		next.DataBits = cur.DataBits
		next.StopBits = cur.StopBits
		next.Parity = cur.Parity
		next.FlowControl = cur.FlowControl
	}
	return s.engine.Configure(next)
}

// SetFormat changes the frame format keeping the current rate.
func (s *Session) SetFormat(dataBits, stopBits uint8, parity types.Parity) error {
	cur := s.engine.Config()
	if !s.engine.Configured() {
		var err error
		cur, err = uart.NewConfig(115200, s.clockHz)
		if err != nil {
			return err
		}
	}
	cur.DataBits = dataBits
	cur.StopBits = stopBits
	cur.Parity = parity
	return s.engine.Configure(cur)
}

// Buffered returns the number of received bytes waiting in the rx ring.
func (s *Session) Buffered() int { return s.rx.Available() }

// ReadByte pops one received byte; ErrNoData when the ring is empty.
func (s *Session) ReadByte() (byte, error) {
	b, ok := s.rx.GetByte()
	if !ok {
		return 0, ErrNoData
	}
	return b, nil
}

// Read copies buffered bytes into p without blocking.
func (s *Session) Read(p []byte) (int, error) {
	n := s.rx.ReadInto(p)
	if n == 0 && len(p) > 0 {
		return 0, ErrNoData
	}
	return n, nil
}

// Write queues p for transmission and kicks an idle transmitter. Bytes
// that do not fit the tx ring are reported as a short write, not
// blocked on.
func (s *Session) Write(p []byte) (int, error) {
	n := s.tx.WriteFrom(p)
	if n > 0 {
		s.kick()
	}
	return n, nil
}

// Readable signals the empty-to-nonempty transition of the rx ring.
func (s *Session) Readable() <-chan struct{} { return s.rx.Readable() }

// RingHandles exposes the registered buffer handles for session replies.
func (s *Session) RingHandles() (rx, tx ring.Handle) { return s.rxHandle, s.txHandle }

// Engine exposes the underlying engine for control-path operations.
func (s *Session) Engine() *uart.Engine { return s.engine }

// Stats snapshots the per-session counters plus the engine's sticky
// overrun count.
func (s *Session) Stats() types.SerialStats {
	return types.SerialStats{
		RxBytes:   s.rxBytes.Load(),
		TxBytes:   s.txBytes.Load(),
		Overruns:  s.engine.Overruns(),
		DroppedEv: s.droppedEv.Load(),
	}
}

// Close releases the registered ring handles.
func (s *Session) Close() {
	ring.Release(s.rxHandle)
	ring.Release(s.txHandle)
}

var _ drivers.UART = (*Session)(nil)
var _ SerialPort = (*Session)(nil)
var _ RingHandler = (*Session)(nil)

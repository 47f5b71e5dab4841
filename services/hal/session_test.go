package hal

import (
	"testing"

	"tinygo.org/x/drivers"

	"serialcore-go/types"
	"serialcore-go/x/ring"
)

func newTestPort(t *testing.T) *SimPort {
	t.Helper()
	f := NewSimPortFactory(4_000_000, "uart0")
	p := f.Port("uart0")
	if err := p.Configure(drivers.UARTConfig{BaudRate: 9600}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return p
}

func TestSessionConfigureDerivesDivisorFromPortClock(t *testing.T) {
	p := newTestPort(t)
	if p.Regs.Divisor() != 103 {
		t.Fatalf("divisor = %d, want 103", p.Regs.Divisor())
	}
	if got := p.Engine().Config().BaudRate; got != 9600 {
		t.Fatalf("baud = %d, want 9600", got)
	}
}

func TestSessionWriteFeedsTransmitterByteAtATime(t *testing.T) {
	p := newTestPort(t)

	n, err := p.Write([]byte("hi"))
	if err != nil || n != 2 {
		t.Fatalf("Write = %d,%v, want 2,nil", n, err)
	}

	// First byte went straight to the data register; the second waits
	// in the tx ring for the transmit-empty event.
	if got := p.Regs.CompleteTransmit(); got != 'h' {
		t.Fatalf("first wire byte = %q, want 'h'", got)
	}
	p.Engine().HandleTransmitInterrupt()
	if got := p.Regs.CompleteTransmit(); got != 'i' {
		t.Fatalf("second wire byte = %q, want 'i'", got)
	}

	// Ring drained: the next event parks the transmitter.
	p.Engine().HandleTransmitInterrupt()
	if p.Regs.TxInterruptEnabled() {
		t.Fatal("transmitter not parked after draining the ring")
	}

	// A later write restarts it without an intervening event.
	if _, err := p.Write([]byte{'!'}); err != nil {
		t.Fatalf("Write after park: %v", err)
	}
	if got := p.Regs.CompleteTransmit(); got != '!' {
		t.Fatalf("restarted wire byte = %q, want '!'", got)
	}
}

func TestSessionReceivePathBuffersAndSignals(t *testing.T) {
	p := newTestPort(t)

	p.Regs.InjectByte(0x42)
	p.Engine().HandleReceiveInterrupt()

	select {
	case <-p.Readable():
	default:
		t.Fatal("readable edge did not fire")
	}
	if p.Buffered() != 1 {
		t.Fatalf("buffered = %d, want 1", p.Buffered())
	}
	b, err := p.ReadByte()
	if err != nil || b != 0x42 {
		t.Fatalf("ReadByte = %#x,%v, want 0x42", b, err)
	}
	if _, err := p.ReadByte(); err != ErrNoData {
		t.Fatalf("empty ReadByte err = %v, want ErrNoData", err)
	}
}

func TestSessionStatsCountBothDirections(t *testing.T) {
	p := newTestPort(t)

	p.Write([]byte{1})
	p.Regs.CompleteTransmit()
	p.Regs.InjectByte(2)
	p.Engine().HandleReceiveInterrupt()

	st := p.Stats()
	want := types.SerialStats{RxBytes: 1, TxBytes: 1}
	if st != want {
		t.Fatalf("stats = %+v, want %+v", st, want)
	}
}

func TestSessionFullRxRingCountsDrops(t *testing.T) {
	f := NewSimPortFactory(4_000_000, "uart0")
	p := f.Port("uart0")
	if err := p.Configure(drivers.UARTConfig{BaudRate: 9600}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	// Fill the rx ring to capacity, then one more.
	for i := 0; i < defaultRingSize+1; i++ {
		p.Regs.InjectByte(byte(i))
		p.Engine().HandleReceiveInterrupt()
	}
	st := p.Stats()
	if st.RxBytes != defaultRingSize || st.DroppedEv != 1 {
		t.Fatalf("stats = %+v, want %d received and 1 drop", st, defaultRingSize)
	}
}

func TestSessionRingHandlesResolve(t *testing.T) {
	p := newTestPort(t)
	rx, tx := p.RingHandles()
	if ring.Lookup(rx) == nil || ring.Lookup(tx) == nil {
		t.Fatal("registered ring handles did not resolve")
	}
	p.Session.Close()
	if ring.Lookup(rx) != nil {
		t.Fatal("rx handle survived Close")
	}
}

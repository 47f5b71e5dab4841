package hal

import (
	"tinygo.org/x/drivers"

	"serialcore-go/drivers/uart"
	"serialcore-go/x/ring"
)

// SerialPort is what the HAL needs from a serial back-end: the standard
// drivers.UART surface plus a readable-edge channel for the reader
// worker. Session implements it on host builds; the rp2 platform
// adapter wraps the hardware driver.
type SerialPort interface {
	drivers.UART
	Read(p []byte) (int, error)
	Readable() <-chan struct{}
}

// RingHandler is optionally implemented by ports whose buffers live in
// the ring registry, letting session replies carry ring handles.
type RingHandler interface {
	RingHandles() (rx, tx ring.Handle)
}

// PortFactory resolves configured port IDs ("uart0", ...) to ports.
type PortFactory interface {
	ByID(id string) (SerialPort, bool)
}

// -----------------------------------------------------------------------------
// Host (simulated) ports
// -----------------------------------------------------------------------------

// SimPort bundles a simulated register file with a session moving
// bytes through application-owned rings. Tests and demos drive the
// wire side through Regs and service interrupts via Engine().
type SimPort struct {
	Regs *uart.SimRegs
	*Session
}

// SimPortFactory builds one simulated port per ID.
type SimPortFactory struct {
	ports map[string]*SimPort
}

// NewSimPortFactory creates simulated ports for the given IDs with
// default ring sizes.
func NewSimPortFactory(clockHz uint32, ids ...string) *SimPortFactory {
	f := &SimPortFactory{ports: make(map[string]*SimPort, len(ids))}
	for _, id := range ids {
		regs := uart.NewSimRegs()
		f.ports[id] = &SimPort{
			Regs:    regs,
			Session: NewSession(uart.New(regs), clockHz, defaultRingSize, defaultRingSize),
		}
	}
	return f
}

func (f *SimPortFactory) ByID(id string) (SerialPort, bool) {
	p, ok := f.ports[id]
	return p, ok
}

// Port exposes the underlying SimPort for wire-side injection.
func (f *SimPortFactory) Port(id string) *SimPort { return f.ports[id] }

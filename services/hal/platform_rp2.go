//go:build rp2040 || rp2350

package hal

import (
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"

	"serialcore-go/types"
)

// hwPort adapts the interrupt-driven hardware driver to SerialPort. The
// driver owns its own ring buffering and readable edge, so the adapter
// is a thin pin-binding shim.
type hwPort struct {
	u      *uartx.UART
	tx, rx machine.Pin
}

func (p *hwPort) Configure(cfg drivers.UARTConfig) error {
	baud := cfg.BaudRate
	if baud == 0 {
		baud = 115200
	}
	return p.u.Configure(uartx.UARTConfig{BaudRate: baud, TX: p.tx, RX: p.rx})
}

func (p *hwPort) SetBaud(baud uint32) error {
	p.u.SetBaudRate(baud)
	return nil
}

func (p *hwPort) SetFormat(dataBits, stopBits uint8, parity types.Parity) error {
	var mp uartx.UARTParity
	switch parity {
	case types.ParityEven:
		mp = uartx.ParityEven
	case types.ParityOdd:
		mp = uartx.ParityOdd
	default:
		mp = uartx.ParityNone
	}
	return p.u.SetFormat(dataBits, stopBits, mp)
}

func (p *hwPort) Buffered() int               { return p.u.Buffered() }
func (p *hwPort) ReadByte() (byte, error)     { return p.u.ReadByte() }
func (p *hwPort) Read(b []byte) (int, error)  { return p.u.Read(b) }
func (p *hwPort) Write(b []byte) (int, error) { return p.u.Write(b) }
func (p *hwPort) Readable() <-chan struct{}   { return p.u.Readable() }

var _ SerialPort = (*hwPort)(nil)

// HWPortFactory resolves the two on-chip UARTs with their conventional
// pin assignments.
type HWPortFactory struct{}

func (HWPortFactory) ByID(id string) (SerialPort, bool) {
	switch id {
	case "uart0":
		return &hwPort{u: uartx.UART0, tx: machine.UART0_TX_PIN, rx: machine.UART0_RX_PIN}, true
	case "uart1":
		return &hwPort{u: uartx.UART1, tx: machine.UART1_TX_PIN, rx: machine.UART1_RX_PIN}, true
	default:
		return nil, false
	}
}

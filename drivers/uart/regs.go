package uart

import "serialcore-go/types"

// Frame bundles the framing settings that must change together. A
// single DataBits field covers both directions: 9-bit mode can never be
// set for transmit and receive independently, which would mismatch the
// framing of consecutive bytes.
type Frame struct {
	DataBits    uint8 // 8 or 9
	Parity      types.Parity
	StopBits    uint8 // 1 or 2
	FlowControl bool  // RTS/CTS pins routed to the peripheral
}

// Regs is the register-access boundary the engine drives. A concrete
// implementation maps these onto a real peripheral's register block; the
// SimRegs register file stands in on host builds. Every method is a
// plain register read or write: bounded, non-blocking, callable from
// interrupt context.
type Regs interface {
	// Interrupt-enable bits for the two event sources.
	SetRxInterruptEnabled(on bool)
	SetTxInterruptEnabled(on bool)
	RxInterruptEnabled() bool
	TxInterruptEnabled() bool

	// Continuous-receive and transmitter enables. Disabling the
	// receiver clears the hardware overrun latch.
	SetReceiverEnabled(on bool)
	ReceiverEnabled() bool
	SetTransmitterEnabled(on bool)
	TransmitterEnabled() bool

	// Status bits.
	OverrunLatched() bool
	TxRegisterEmpty() bool
	RxRegisterFull() bool

	// Data and baud-rate registers.
	ReadData() byte
	WriteData(b byte)
	SetDivisor(d uint16)
	SetFrame(f Frame)

	// Flow-control pin samples. Pure level reads; the engine only
	// reports them, it never throttles on them.
	ClearToSend() bool
	RequestToSend() bool
}

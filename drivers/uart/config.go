package uart

import (
	"serialcore-go/errcode"
	"serialcore-go/types"
)

// Prescale is the fixed baud-rate-generator prescale factor. The
// achieved baud rate is ClockHz / (Prescale * (Divisor + 1)).
const Prescale = 4

// maxDivisor is the width of the baud-rate register.
const maxDivisor = 0xFFFF

// Config is the immutable-after-Configure engine configuration. Build
// it with NewConfig so the divisor is derived and validated up front.
type Config struct {
	BaudRate uint32
	ClockHz  uint32
	Divisor  uint16 // derived; Configure rejects zero

	DataBits    uint8 // 8 or 9
	Parity      types.Parity
	StopBits    uint8 // 1 or 2
	FlowControl bool

	// Which interrupt sources Configure leaves armed.
	EnableRx bool
	EnableTx bool
}

// NewConfig derives the divisor for the requested rate and returns an
// 8N1 configuration with both interrupt sources armed. Adjust fields
// before calling Configure.
func NewConfig(baud, clockHz uint32) (Config, error) {
	div, err := ComputeDivisor(baud, clockHz)
	if err != nil {
		return Config{}, err
	}
	return Config{
		BaudRate: baud,
		ClockHz:  clockHz,
		Divisor:  div,
		DataBits: 8,
		Parity:   types.ParityNone,
		StopBits: 1,
		EnableRx: true,
		EnableTx: true,
	}, nil
}

// ComputeDivisor returns round(clockHz / (Prescale * baud)) - 1.
// Rounding is half-up in fixed point: the quotient is computed at twice
// scale, then one half-ULP is added before shifting back down. No
// floating point; truncation would bias the achieved baud rate low.
func ComputeDivisor(baud, clockHz uint32) (uint16, error) {
	if baud == 0 || clockHz == 0 {
		return 0, errcode.InvalidDivisor
	}
	den := uint64(Prescale) * uint64(baud)
	twice := (uint64(clockHz) << 1) / den
	rounded := (twice + 1) >> 1
	// rounded <= 1 would leave a zero divisor; anything past the
	// register width cannot be programmed.
	if rounded <= 1 || rounded-1 > maxDivisor {
		return 0, errcode.InvalidDivisor
	}
	return uint16(rounded - 1), nil
}

// AchievedBaud reports the rate a divisor actually produces, for
// diagnostics and tests.
func AchievedBaud(divisor uint16, clockHz uint32) uint32 {
	den := uint64(Prescale) * (uint64(divisor) + 1)
	if den == 0 {
		return 0
	}
	return uint32(uint64(clockHz) / den)
}

func (c Config) validate() error {
	if c.Divisor == 0 {
		return errcode.InvalidConfig
	}
	if c.DataBits != 8 && c.DataBits != 9 {
		return errcode.InvalidConfig
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return errcode.InvalidConfig
	}
	if c.Parity > types.ParityOdd {
		return errcode.InvalidConfig
	}
	return nil
}

func (c Config) frame() Frame {
	return Frame{
		DataBits:    c.DataBits,
		Parity:      c.Parity,
		StopBits:    c.StopBits,
		FlowControl: c.FlowControl,
	}
}

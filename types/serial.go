package types

// ------------------------
// Serial
// ------------------------

type Parity uint8

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

func (p Parity) String() string {
	switch p {
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "none"
	}
}

func (p Parity) MarshalJSON() ([]byte, error) { return []byte(`"` + p.String() + `"`), nil }

// ParseParity maps the wire spelling back to the enum; anything
// unrecognised is ParityNone.
func ParseParity(s string) Parity {
	switch s {
	case "even":
		return ParityEven
	case "odd":
		return ParityOdd
	default:
		return ParityNone
	}
}

type SerialSessionOpen struct {
	// Power-of-two sizes (bytes). Device will default if zero.
	RXSize int `json:"rx_size,omitempty"`
	TXSize int `json:"tx_size,omitempty"`
}

type SerialSessionClose struct{}

type SerialSetBaud struct {
	Baud uint32 `json:"baud"`
}

type SerialSetFormat struct {
	DataBits uint8  `json:"data_bits"` // 8 or 9; 9 applies to both directions
	StopBits uint8  `json:"stop_bits"` // 1 or 2
	Parity   Parity `json:"parity"`
}

type SerialSessionOpened struct {
	SessionID uint32 `json:"session_id"`
	RXHandle  uint32 `json:"rx_handle"`
	TXHandle  uint32 `json:"tx_handle"`
}

type SerialInfo struct {
	Port        string `json:"port"`
	Baud        uint32 `json:"baud"` // 0 if unspecified
	FlowControl bool   `json:"flow_control,omitempty"`
}

type SerialStats struct {
	RxBytes   uint32 `json:"rx_bytes"`
	TxBytes   uint32 `json:"tx_bytes"`
	Overruns  uint32 `json:"overruns"`
	DroppedEv uint32 `json:"dropped_events"`
}

// ------------------------
// Timer
// ------------------------

type TimerInfo struct {
	PeriodMs uint32 `json:"period_ms"`
}

type TimerValue struct {
	Ticks uint32 `json:"ticks"`
}

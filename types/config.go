package types

// HAL configuration supplied on topic "config/hal".

type HALConfig struct {
	Devices []Device `json:"devices"`
}

type Device struct {
	ID     string `json:"id"`
	Type   string `json:"type"` // e.g. "uart", "soft_timer"
	Params any    `json:"params,omitempty"`
	Port   string `json:"port,omitempty"` // e.g. "uart0"
}

package errcode

// Code is a stable, bus-facing error identifier: a comparable string
// newtype that implements error without allocating.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes. Keep them short and stable; they travel in replies.
const (
	OK          Code = "ok"
	Unsupported Code = "unsupported"

	// Serial engine
	InvalidConfig  Code = "invalid_config"
	InvalidDivisor Code = "invalid_divisor"
	NotConfigured  Code = "not_configured"
	TxBusy         Code = "tx_busy"
	Overrun        Code = "overrun"

	// Service / dispatch plane
	UnknownPort       Code = "unknown_port"
	UnknownCapability Code = "unknown_capability"
	UnknownDevice     Code = "unknown_device"
	InvalidPayload    Code = "invalid_payload"
	InvalidTopic      Code = "invalid_topic"
	PortInUse         Code = "port_in_use"
	Timeout           Code = "timeout"

	Error Code = "error" // generic fallback
)

// E carries a Code plus operation context and an optional cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from any error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

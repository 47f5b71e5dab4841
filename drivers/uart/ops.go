package uart

import (
	"serialcore-go/errcode"
	"serialcore-go/periph"
	"serialcore-go/types"
)

// Abstract operations this back-end wires into its capability table.
// Other serial back-ends may wire a subset; dispatch-layer callers get
// the unsupported default for anything missing.
const (
	OpConfigure periph.Op = "configure"
	OpTransmit  periph.Op = "transmit"
	OpReadByte  periph.Op = "read_byte"
	OpSetRx     periph.Op = "set_rx_enabled"
	OpSetTx     periph.Op = "set_tx_enabled"
	OpReset     periph.Op = "reset"
	OpStats     periph.Op = "stats"
)

var table = periph.NewTable(string(types.KindSerial), map[periph.Op]periph.OpFunc{
	OpConfigure: func(inst any, args ...any) (any, error) {
		cfg, ok := argAs[Config](args, 0)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		return nil, inst.(*Engine).Configure(cfg)
	},
	OpTransmit: func(inst any, args ...any) (any, error) {
		b, ok := argAs[byte](args, 0)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		return nil, inst.(*Engine).TransmitByte(b)
	},
	OpReadByte: func(inst any, args ...any) (any, error) {
		return inst.(*Engine).ReadByte(), nil
	},
	OpSetRx: func(inst any, args ...any) (any, error) {
		on, ok := argAs[bool](args, 0)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		inst.(*Engine).SetReceiveEnabled(on)
		return nil, nil
	},
	OpSetTx: func(inst any, args ...any) (any, error) {
		on, ok := argAs[bool](args, 0)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		inst.(*Engine).SetTransmitEnabled(on)
		return nil, nil
	},
	OpReset: func(inst any, args ...any) (any, error) {
		inst.(*Engine).Reset()
		return nil, nil
	},
	OpStats: func(inst any, args ...any) (any, error) {
		e := inst.(*Engine)
		return types.SerialStats{Overruns: e.Overruns()}, nil
	},
})

// NewHandle constructs an engine on regs and binds it to a fresh
// dispatch handle.
func NewHandle(regs Regs) (*periph.Handle, *Engine) {
	e := New(regs)
	return BindHandle(e), e
}

// BindHandle binds an existing engine to a fresh dispatch handle. These
// two constructors are the only Bind sites for the type: the instance
// and table are still type-matched here, before the handle erases the
// concrete type.
func BindHandle(e *Engine) *periph.Handle {
	h := &periph.Handle{}
	h.Bind(e, table)
	return h
}

func argAs[T any](args []any, i int) (T, bool) {
	var zero T
	if i >= len(args) {
		return zero, false
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, false
	}
	return v, true
}

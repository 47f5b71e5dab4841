// Package mapfn exposes stateless value-mapping arithmetic through the
// capability dispatch layer, the third table alongside serial and
// timer. It demonstrates that dispatch carries pure functions as well
// as stateful peripherals: the backing instance is an immutable range
// description, the operations are arithmetic on it.
package mapfn

import (
	"serialcore-go/errcode"
	"serialcore-go/periph"
	"serialcore-go/types"
	"serialcore-go/x/mathx"
)

const (
	OpMap   periph.Op = "map"
	OpClamp periph.Op = "clamp"
	OpLerp  periph.Op = "lerp"
	// OpScale is named in the abstract operation set but not wired by
	// this back-end; invoking it takes the unsupported default.
	OpScale periph.Op = "scale"
)

// Range is the backing instance: a fixed input-to-output mapping.
type Range struct {
	InMin, InMax   uint16
	OutMin, OutMax uint16
}

var table = periph.NewTable(string(types.KindMapFn), map[periph.Op]periph.OpFunc{
	OpMap: func(inst any, args ...any) (any, error) {
		x, ok := argU16(args, 0)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		r := inst.(*Range)
		return mathx.MapU16(x, r.InMin, r.InMax, r.OutMin, r.OutMax), nil
	},
	OpClamp: func(inst any, args ...any) (any, error) {
		x, ok := argU16(args, 0)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		r := inst.(*Range)
		return mathx.Clamp(x, r.InMin, r.InMax), nil
	},
	OpLerp: func(inst any, args ...any) (any, error) {
		t, ok := argU16(args, 0)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		r := inst.(*Range)
		return mathx.LerpU16(r.OutMin, r.OutMax, t), nil
	},
})

// NewHandle binds a range to a fresh dispatch handle.
func NewHandle(r Range) *periph.Handle {
	h := &periph.Handle{}
	h.Bind(&r, table)
	return h
}

func argU16(args []any, i int) (uint16, bool) {
	if i >= len(args) {
		return 0, false
	}
	switch v := args[i].(type) {
	case uint16:
		return v, true
	case int:
		if v < 0 || v > 0xFFFF {
			return 0, false
		}
		return uint16(v), true
	default:
		return 0, false
	}
}

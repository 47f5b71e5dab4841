package hal

import (
	"time"

	"serialcore-go/drivers/softtimer"
	"serialcore-go/drivers/uart"
	"serialcore-go/errcode"
	"serialcore-go/types"
	"tinygo.org/x/drivers"
)

func init() {
	RegisterBuilder("uart", BuilderFunc(buildUART))
	RegisterBuilder("soft_timer", BuilderFunc(buildSoftTimer))
}

// engineProvider is implemented by ports whose serial engine lives in
// this process (host sessions); hardware adapters do not provide one.
type engineProvider interface {
	Engine() *uart.Engine
}

func buildUART(in BuildInput) (BuildOutput, error) {
	if in.Port == "" {
		return BuildOutput{}, errcode.UnknownPort
	}
	port, ok := in.Ports.ByID(in.Port)
	if !ok {
		return BuildOutput{}, errcode.UnknownPort
	}

	baud := paramU32(in.Params, "baud", 115200)
	if err := port.Configure(drivers.UARTConfig{BaudRate: baud}); err != nil {
		return BuildOutput{}, err
	}
	if db := paramU32(in.Params, "data_bits", 0); db != 0 {
		if fmtPort, ok := port.(interface {
			SetFormat(dataBits, stopBits uint8, parity types.Parity) error
		}); ok {
			sb := uint8(paramU32(in.Params, "stop_bits", 1))
			par := types.ParseParity(paramStr(in.Params, "parity", "none"))
			if err := fmtPort.SetFormat(uint8(db), sb, par); err != nil {
				return BuildOutput{}, err
			}
		}
	}

	out := BuildOutput{
		Kind: string(types.KindSerial),
		Port: port,
		Reader: ReaderConfig{
			Mode:      paramStr(in.Params, "mode", "bytes"),
			IdleFlush: time.Duration(paramU32(in.Params, "idle_flush_ms", 0)) * time.Millisecond,
			MaxChunk:  int(paramU32(in.Params, "max_chunk", 0)),
			Checksum:  paramStr(in.Params, "checksum", ""),
		},
	}
	if ep, ok := port.(engineProvider); ok {
		out.Handle = uart.BindHandle(ep.Engine())
	}
	return out, nil
}

func buildSoftTimer(in BuildInput) (BuildOutput, error) {
	period := time.Duration(paramU32(in.Params, "period_ms", 1000)) * time.Millisecond
	h, _ := softtimer.NewHandle(period)
	if _, err := h.Invoke(softtimer.OpStart); err != nil {
		return BuildOutput{}, err
	}
	return BuildOutput{
		Handle:    h,
		Kind:      string(types.KindTimer),
		PollEvery: period,
	}, nil
}

// ---- param extraction ----
//
// Params arrive as the decoded JSON shapes the config service publishes
// (map[string]any with float64/int numbers).

func paramU32(params any, key string, def uint32) uint32 {
	m, ok := params.(map[string]any)
	if !ok {
		return def
	}
	switch v := m[key].(type) {
	case int:
		return uint32(v)
	case int64:
		return uint32(v)
	case uint32:
		return v
	case float64:
		return uint32(v)
	default:
		return def
	}
}

func paramStr(params any, key, def string) string {
	m, ok := params.(map[string]any)
	if !ok {
		return def
	}
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return def
}

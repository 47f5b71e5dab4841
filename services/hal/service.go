package hal

import (
	"context"
	"encoding/json"
	"time"

	"serialcore-go/bus"
	"serialcore-go/drivers/softtimer"
	"serialcore-go/periph"
	"serialcore-go/types"
	"serialcore-go/x/mathx"
)

// Run starts the HAL service: it builds capability instances from
// retained config, pumps receive events onto the bus, polls timer
// capabilities, and answers control requests addressed to
// hal/cap/<kind>/<name>/control/<verb>.
func Run(ctx context.Context, conn *bus.Connection, ports PortFactory, clockHz uint32) {
	s := &service{
		conn:    conn,
		ports:   ports,
		clockHz: clockHz,
		devices: map[string]*devEntry{},
		pollDue: map[string]time.Time{},
		events:  make(chan SerialEvent, 32),
	}
	s.loop(ctx)
}

type devEntry struct {
	kind      string
	handle    *periph.Handle
	port      SerialPort
	reader    *serialReader
	cancel    context.CancelFunc
	pollEvery time.Duration
}

type service struct {
	conn    *bus.Connection
	ports   PortFactory
	clockHz uint32

	devices map[string]*devEntry
	pollDue map[string]time.Time
	timer   *time.Timer

	// Reader fan-in.
	events chan SerialEvent
}

// -----------------------------------------------------------------------------
// Main loop
// -----------------------------------------------------------------------------

func (s *service) loop(ctx context.Context) {
	cfgSub := s.conn.Subscribe(bus.T("config", "hal"))
	ctrlSub := s.conn.Subscribe(bus.T("hal", "cap", bus.Wildcard, bus.Wildcard, "control", bus.Wildcard))
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(ctrlSub)

	s.publishState("idle", "awaiting_config", nil)

	s.timer = time.NewTimer(time.Hour)
	if !s.timer.Stop() {
		drainTimer(s.timer)
	}

	for {
		if next := s.earliestPollDue(); next.IsZero() {
			if !s.timer.Stop() {
				drainTimer(s.timer)
			}
			s.timer.Reset(time.Hour)
		} else {
			d := time.Until(next)
			if d < 0 {
				d = 0
			}
			if !s.timer.Stop() {
				drainTimer(s.timer)
			}
			s.timer.Reset(d)
		}

		select {
		case <-ctx.Done():
			s.publishState("stopped", "context_cancelled", nil)
			return

		case msg := <-cfgSub.Channel():
			var cfg types.HALConfig
			if err := decodeJSON(msg.Payload, &cfg); err != nil {
				s.publishState("error", "config_decode_failed", err)
				continue
			}
			if err := s.applyConfig(ctx, cfg); err != nil {
				s.publishState("error", "apply_config_failed", err)
				continue
			}
			s.publishState("ready", "configured", nil)

		case msg := <-ctrlSub.Channel():
			s.handleControl(msg)

		case <-s.timer.C:
			now := time.Now()
			for name, due := range s.pollDue {
				if !now.Before(due) {
					s.pollTimer(name)
					if ent, ok := s.devices[name]; ok {
						s.pollDue[name] = now.Add(ent.pollEvery)
					}
				}
			}

		case ev := <-s.events:
			s.handleSerialEvent(ev)
		}
	}
}

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

func (s *service) applyConfig(ctx context.Context, cfg types.HALConfig) error {
	seen := map[string]struct{}{}

	for i := range cfg.Devices {
		d := &cfg.Devices[i]
		seen[d.ID] = struct{}{}
		if _, exists := s.devices[d.ID]; exists {
			continue
		}

		b, ok := findBuilder(d.Type)
		if !ok {
			s.pubRet(capTopic("unknown", d.ID, "state"), linkState(types.LinkDown, "no builder"))
			continue
		}
		out, err := b.Build(BuildInput{
			Ctx:      ctx,
			Ports:    s.ports,
			ClockHz:  s.clockHz,
			DeviceID: d.ID,
			Type:     d.Type,
			Port:     d.Port,
			Params:   d.Params,
		})
		if err != nil {
			s.pubRet(capTopic(d.Type, d.ID, "state"), linkState(types.LinkDown, err.Error()))
			continue
		}

		ent := &devEntry{
			kind:      out.Kind,
			handle:    out.Handle,
			port:      out.Port,
			pollEvery: out.PollEvery,
		}
		if out.Port != nil {
			rctx, cancel := context.WithCancel(ctx)
			ent.cancel = cancel
			ent.reader = newSerialReader(d.ID, out.Port, out.Reader, s.events)
			ent.reader.Start(rctx)
		}
		s.devices[d.ID] = ent
		if out.PollEvery > 0 {
			s.pollDue[d.ID] = time.Now().Add(out.PollEvery)
		}

		s.pubRet(capTopic(ent.kind, d.ID, "info"), s.capInfo(d, ent))
		s.pubRet(capTopic(ent.kind, d.ID, "state"), linkState(types.LinkUp, ""))
	}

	// Tidy-up: tear down devices dropped from config.
	for name, ent := range s.devices {
		if _, ok := seen[name]; ok {
			continue
		}
		if ent.cancel != nil {
			ent.cancel()
		}
		if ent.handle != nil && ent.kind == string(types.KindTimer) {
			_, _ = ent.handle.Invoke(softtimer.OpStop)
		}
		s.pubRet(capTopic(ent.kind, name, "info"), nil)
		s.pubRet(capTopic(ent.kind, name, "state"), linkState(types.LinkDown, "removed"))
		delete(s.devices, name)
		delete(s.pollDue, name)
	}
	return nil
}

func (s *service) capInfo(d *types.Device, ent *devEntry) any {
	switch ent.kind {
	case string(types.KindSerial):
		info := types.SerialInfo{Port: d.Port}
		if ep, ok := ent.port.(engineProvider); ok {
			cfg := ep.Engine().Config()
			info.Baud = cfg.BaudRate
			info.FlowControl = cfg.FlowControl
		}
		return info
	case string(types.KindTimer):
		return types.TimerInfo{PeriodMs: uint32(ent.pollEvery / time.Millisecond)}
	default:
		return map[string]any{"type": d.Type}
	}
}

// -----------------------------------------------------------------------------
// Control
// -----------------------------------------------------------------------------

func (s *service) handleControl(msg *bus.Message) {
	// hal/cap/<kind>/<name>/control/<verb>
	if len(msg.Topic) < 6 {
		return
	}
	kind, name, verb := msg.Topic[2], msg.Topic[3], msg.Topic[5]

	ent, ok := s.devices[name]
	if !ok || ent.kind != kind {
		s.replyErr(msg, "unknown capability")
		return
	}

	switch verb {
	case "write":
		data, ok := payloadBytes(msg.Payload)
		if !ok || ent.port == nil {
			s.replyErr(msg, "invalid payload")
			return
		}
		n, err := ent.port.Write(data)
		if err != nil {
			s.replyErr(msg, err.Error())
			return
		}
		s.replyOK(msg, map[string]any{"written": n})

	case "set_baud":
		var req types.SerialSetBaud
		if err := decodeJSON(msg.Payload, &req); err != nil || req.Baud == 0 {
			s.replyErr(msg, "invalid payload")
			return
		}
		bp, ok := ent.port.(interface{ SetBaud(uint32) error })
		if !ok {
			s.replyErr(msg, "unsupported")
			return
		}
		if err := bp.SetBaud(req.Baud); err != nil {
			s.replyErr(msg, err.Error())
			return
		}
		s.replyOK(msg, map[string]any{"baud": req.Baud})

	case "set_format":
		var req types.SerialSetFormat
		if err := decodeJSON(msg.Payload, &req); err != nil {
			s.replyErr(msg, "invalid payload")
			return
		}
		fp, ok := ent.port.(interface {
			SetFormat(dataBits, stopBits uint8, parity types.Parity) error
		})
		if !ok {
			s.replyErr(msg, "unsupported")
			return
		}
		if err := fp.SetFormat(req.DataBits, req.StopBits, req.Parity); err != nil {
			s.replyErr(msg, err.Error())
			return
		}
		s.replyOK(msg, nil)

	case "session_info":
		rh, ok := ent.port.(RingHandler)
		if !ok {
			s.replyErr(msg, "unsupported")
			return
		}
		rx, tx := rh.RingHandles()
		s.replyOK(msg, map[string]any{
			"session": types.SerialSessionOpened{RXHandle: uint32(rx), TXHandle: uint32(tx)},
		})

	case "stats":
		if sp, ok := ent.port.(interface{ Stats() types.SerialStats }); ok {
			st := sp.Stats()
			if ent.reader != nil {
				st.DroppedEv += ent.reader.Dropped() + ent.reader.BadChecksums()
			}
			s.replyOK(msg, map[string]any{"stats": st})
			return
		}
		s.invokeReply(msg, ent, periph.Op(verb))

	case "set_period":
		ms := paramU32(msg.Payload, "period_ms", 0)
		if ms == 0 || ent.handle == nil {
			s.replyErr(msg, "invalid payload")
			return
		}
		ms = mathx.Clamp(ms, 10, 3_600_000)
		period := time.Duration(ms) * time.Millisecond
		if _, err := ent.handle.Invoke(softtimer.OpSetPeriod, period); err != nil {
			s.replyErr(msg, err.Error())
			return
		}
		ent.pollEvery = period
		s.pollDue[name] = time.Now().Add(period)
		s.replyOK(msg, map[string]any{"period_ms": ms})

	default:
		// Anything else goes straight through the dispatch layer;
		// unwired operations come back as the unsupported default.
		s.invokeReply(msg, ent, periph.Op(verb))
	}
}

func (s *service) invokeReply(msg *bus.Message, ent *devEntry, op periph.Op) {
	if ent.handle == nil {
		s.replyErr(msg, "unsupported")
		return
	}
	res, err := ent.handle.Invoke(op)
	if err != nil {
		s.replyErr(msg, err.Error())
		return
	}
	s.replyOK(msg, map[string]any{"result": res})
}

// -----------------------------------------------------------------------------
// Events and polling
// -----------------------------------------------------------------------------

func (s *service) handleSerialEvent(ev SerialEvent) {
	ent, ok := s.devices[ev.DevID]
	if !ok {
		return
	}
	s.conn.Publish(s.conn.NewMessage(
		capTopic(ent.kind, ev.DevID, "event"),
		map[string]any{"data": ev.Data, "ts_ms": ev.TS.UnixMilli()},
		false,
	))
}

func (s *service) pollTimer(name string) {
	ent, ok := s.devices[name]
	if !ok || ent.handle == nil {
		return
	}
	res, err := ent.handle.Invoke(softtimer.OpTicks)
	if err != nil {
		s.pubRet(capTopic(ent.kind, name, "state"), linkState(types.LinkDegraded, err.Error()))
		return
	}
	ticks, _ := res.(uint32)
	s.conn.Publish(s.conn.NewMessage(
		capTopic(ent.kind, name, "value"),
		types.TimerValue{Ticks: ticks},
		false,
	))
}

func (s *service) earliestPollDue() time.Time {
	var min time.Time
	for _, t := range s.pollDue {
		if !t.IsZero() && (min.IsZero() || t.Before(min)) {
			min = t
		}
	}
	return min
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (s *service) publishState(level, status string, err error) {
	if err != nil {
		status = status + ": " + err.Error()
	}
	s.conn.Publish(s.conn.NewMessage(bus.T("hal", "state"),
		types.HALState{Level: level, Status: status, TS: time.Now().UnixMilli()}, true))
}

func (s *service) replyOK(req *bus.Message, extra map[string]any) {
	if len(req.ReplyTo) == 0 {
		return
	}
	m := map[string]any{"ok": true}
	for k, v := range extra {
		m[k] = v
	}
	s.conn.Reply(req, m, false)
}

func (s *service) replyErr(req *bus.Message, e string) {
	if len(req.ReplyTo) == 0 {
		return
	}
	s.conn.Reply(req, map[string]any{"ok": false, "error": e}, false)
}

func (s *service) pubRet(t bus.Topic, p any) {
	s.conn.Publish(s.conn.NewMessage(t, p, true))
}

func capTopic(kind, name string, rest ...string) bus.Topic {
	base := bus.T("hal", "cap", kind, name)
	return append(base, rest...)
}

func linkState(link types.Link, detail string) types.CapabilityStatus {
	return types.CapabilityStatus{Link: link, TS: time.Now().UnixMilli(), Error: detail}
}

func payloadBytes(p any) ([]byte, bool) {
	switch v := p.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}

func decodeJSON[T any](src any, dst *T) error {
	switch v := src.(type) {
	case T:
		*dst = v
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)
	}
}

// Package heartbeat periodically publishes a retained liveness beat so
// off-device tooling can tell a quiet node from a dead one. The
// interval is adjustable through the retained config/heartbeat entry.
package heartbeat

import (
	"context"
	"time"

	"serialcore-go/bus"
)

var (
	topicConfig = bus.T("config", "heartbeat")
	topicBeat   = bus.T("heartbeat", "state")
)

type Beat struct {
	Seq  uint32 `json:"seq"`
	TSMs int64  `json:"ts_ms"`
}

type Service struct{}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfig)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(1 * time.Second)
	defer tick.Stop()

	var seq uint32
	for {
		select {
		case <-ctx.Done():
			println("Info: heartbeat service stopping")
			return
		case t := <-tick.C:
			seq++
			conn.Publish(&bus.Message{
				Topic:    topicBeat,
				Payload:  Beat{Seq: seq, TSMs: t.UnixMilli()},
				Retained: true,
			})
		case msg := <-cfgSub.Channel():
			if m, ok := msg.Payload.(map[string]any); ok {
				if interval, ok := asSeconds(m["interval"]); ok && interval > 0 {
					tick.Reset(interval)
					println("Info: heartbeat interval updated")
				}
			}
		}
	}
}

func asSeconds(v any) (time.Duration, bool) {
	switch n := v.(type) {
	case int:
		return time.Duration(n) * time.Second, true
	case int64:
		return time.Duration(n) * time.Second, true
	case float64:
		return time.Duration(n * float64(time.Second)), true
	default:
		return 0, false
	}
}

// Start launches the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}

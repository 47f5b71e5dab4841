package heartbeat

import (
	"context"
	"testing"
	"time"

	"serialcore-go/bus"
)

func TestBeatsArePublishedRetained(t *testing.T) {
	b := bus.New(8)
	conn := b.NewConnection("hb")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Shorten the interval before the first tick via retained config.
	conn.Publish(&bus.Message{
		Topic:    topicConfig,
		Payload:  map[string]any{"interval": 0.01},
		Retained: true,
	})

	svc := &Service{}
	if err := svc.Start(ctx, conn); err != nil {
		t.Fatalf("Start: %v", err)
	}

	sub := conn.Subscribe(topicBeat)
	defer conn.Unsubscribe(sub)

	var first Beat
	select {
	case msg := <-sub.Channel():
		var ok bool
		if first, ok = msg.Payload.(Beat); !ok {
			t.Fatalf("payload type = %T", msg.Payload)
		}
		if !msg.Retained {
			t.Fatal("beat not retained")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no beat within 2s")
	}

	// Sequence advances.
	select {
	case msg := <-sub.Channel():
		beat := msg.Payload.(Beat)
		if beat.Seq <= first.Seq {
			t.Fatalf("seq did not advance: %d then %d", first.Seq, beat.Seq)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no second beat within 2s")
	}
}

func TestInvalidIntervalIsIgnored(t *testing.T) {
	b := bus.New(8)
	conn := b.NewConnection("hb")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn.Publish(&bus.Message{
		Topic:    topicConfig,
		Payload:  map[string]any{"interval": "soon"},
		Retained: true,
	})

	svc := &Service{}
	if err := svc.Start(ctx, conn); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// No panic, no beat faster than the 1s default.
	sub := conn.Subscribe(topicBeat)
	defer conn.Unsubscribe(sub)
	select {
	case <-sub.Channel():
		t.Fatal("beat arrived before the default interval")
	case <-time.After(100 * time.Millisecond):
	}
}

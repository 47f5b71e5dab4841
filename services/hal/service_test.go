package hal

import (
	"bytes"
	"context"
	"testing"
	"time"

	"serialcore-go/bus"
	"serialcore-go/types"
)

func startService(t *testing.T) (*bus.Bus, *SimPortFactory) {
	t.Helper()
	b := bus.New(16)
	ports := NewSimPortFactory(4_000_000, "uart0", "uart1")
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go Run(ctx, b.NewConnection("hal"), ports, 4_000_000)
	return b, ports
}

func recvMsg(t *testing.T, sub *bus.Subscription) *bus.Message {
	t.Helper()
	select {
	case msg := <-sub.Channel():
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message within 1s")
		return nil
	}
}

func testConfig() types.HALConfig {
	return types.HALConfig{Devices: []types.Device{
		{
			ID:   "con0",
			Type: "uart",
			Port: "uart0",
			Params: map[string]any{
				"baud": 9600,
				"mode": "bytes",
			},
		},
		{
			ID:     "tick0",
			Type:   "soft_timer",
			Params: map[string]any{"period_ms": 10},
		},
	}}
}

func TestServiceBuildsDevicesFromRetainedConfig(t *testing.T) {
	b, ports := startService(t)
	pub := b.NewConnection("test")

	pub.Publish(pub.NewMessage(bus.T("config", "hal"), testConfig(), true))

	// Retained info appears for late subscribers.
	infoSub := pub.Subscribe(bus.T("hal", "cap", "serial", "con0", "info"))
	defer pub.Unsubscribe(infoSub)
	var info types.SerialInfo
	deadline := time.After(time.Second)
	for info.Baud != 9600 {
		select {
		case msg := <-infoSub.Channel():
			info, _ = msg.Payload.(types.SerialInfo)
		case <-deadline:
			t.Fatalf("serial info never reached baud 9600: %+v", info)
		}
	}
	if info.Port != "uart0" {
		t.Fatalf("info = %+v", info)
	}
	if ports.Port("uart0").Regs.Divisor() != 103 {
		t.Fatalf("port divisor = %d, want 103", ports.Port("uart0").Regs.Divisor())
	}

	stateSub := pub.Subscribe(bus.T("hal", "cap", "serial", "con0", "state"))
	defer pub.Unsubscribe(stateSub)
	st, _ := recvMsg(t, stateSub).Payload.(types.CapabilityStatus)
	if st.Link != types.LinkUp {
		t.Fatalf("state = %+v, want link up", st)
	}
}

func TestServiceControlWriteReachesTheWire(t *testing.T) {
	b, ports := startService(t)
	pub := b.NewConnection("test")
	pub.Publish(pub.NewMessage(bus.T("config", "hal"), testConfig(), true))

	replySub := pub.Subscribe(bus.T("test", "reply", "1"))
	defer pub.Unsubscribe(replySub)

	msg := pub.NewMessage(bus.T("hal", "cap", "serial", "con0", "control", "write"), []byte("A"), false)
	msg.ReplyTo = bus.T("test", "reply", "1")

	// The service may still be applying config; retry until it answers ok.
	deadline := time.After(time.Second)
	for {
		pub.Publish(msg)
		reply, _ := recvMsg(t, replySub).Payload.(map[string]any)
		if ok, _ := reply["ok"].(bool); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("write never accepted: %v", reply)
		case <-time.After(10 * time.Millisecond):
		}
	}

	regs := ports.Port("uart0").Regs
	deadline = time.After(time.Second)
	for !bytes.Contains(regs.TxLog(), []byte("A")) {
		select {
		case <-deadline:
			t.Fatalf("tx log = %v, want 'A'", regs.TxLog())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestServiceSetBaudRetunesDivisor(t *testing.T) {
	b, ports := startService(t)
	pub := b.NewConnection("test")
	pub.Publish(pub.NewMessage(bus.T("config", "hal"), testConfig(), true))

	replySub := pub.Subscribe(bus.T("test", "reply", "baud"))
	defer pub.Unsubscribe(replySub)

	msg := pub.NewMessage(bus.T("hal", "cap", "serial", "con0", "control", "set_baud"),
		types.SerialSetBaud{Baud: 19200}, false)
	msg.ReplyTo = bus.T("test", "reply", "baud")

	deadline := time.After(time.Second)
	for {
		pub.Publish(msg)
		reply, _ := recvMsg(t, replySub).Payload.(map[string]any)
		if ok, _ := reply["ok"].(bool); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("set_baud never accepted: %v", reply)
		case <-time.After(10 * time.Millisecond):
		}
	}
	// 4 MHz / (4 * 19200) = 52.08 -> 52 -> divisor 51.
	if d := ports.Port("uart0").Regs.Divisor(); d != 51 {
		t.Fatalf("divisor = %d, want 51", d)
	}
}

func TestServicePublishesSerialEvents(t *testing.T) {
	b, ports := startService(t)
	pub := b.NewConnection("test")

	evSub := pub.Subscribe(bus.T("hal", "cap", "serial", "con0", "event"))
	defer pub.Unsubscribe(evSub)

	pub.Publish(pub.NewMessage(bus.T("config", "hal"), testConfig(), true))

	p := ports.Port("uart0")
	deadline := time.After(time.Second)
	for !p.Regs.ReceiverEnabled() {
		select {
		case <-deadline:
			t.Fatal("port never configured")
		case <-time.After(5 * time.Millisecond):
		}
	}
	p.Regs.InjectByte(0x55)
	p.Engine().HandleReceiveInterrupt()

	ev, _ := recvMsg(t, evSub).Payload.(map[string]any)
	data, _ := ev["data"].([]byte)
	if len(data) != 1 || data[0] != 0x55 {
		t.Fatalf("event data = %v, want [0x55]", data)
	}
}

func TestServicePollsTimerCapability(t *testing.T) {
	b, _ := startService(t)
	pub := b.NewConnection("test")

	valSub := pub.Subscribe(bus.T("hal", "cap", "timer", "tick0", "value"))
	defer pub.Unsubscribe(valSub)

	pub.Publish(pub.NewMessage(bus.T("config", "hal"), testConfig(), true))

	// The 10 ms timer should produce a value publication shortly.
	msg := recvMsg(t, valSub)
	if _, ok := msg.Payload.(types.TimerValue); !ok {
		t.Fatalf("payload = %T, want TimerValue", msg.Payload)
	}
}

func TestServiceTearsDownRemovedDevices(t *testing.T) {
	b, _ := startService(t)
	pub := b.NewConnection("test")
	pub.Publish(pub.NewMessage(bus.T("config", "hal"), testConfig(), true))

	stateSub := pub.Subscribe(bus.T("hal", "cap", "serial", "con0", "state"))
	defer pub.Unsubscribe(stateSub)
	st, _ := recvMsg(t, stateSub).Payload.(types.CapabilityStatus)
	if st.Link != types.LinkUp {
		t.Fatalf("initial state = %+v", st)
	}

	// Drop the serial device from config; its state goes down.
	pub.Publish(pub.NewMessage(bus.T("config", "hal"),
		types.HALConfig{Devices: testConfig().Devices[1:]}, true))

	deadline := time.After(time.Second)
	for st.Link != types.LinkDown {
		select {
		case msg := <-stateSub.Channel():
			st, _ = msg.Payload.(types.CapabilityStatus)
		case <-deadline:
			t.Fatalf("state never went down: %+v", st)
		}
	}
}

func TestServiceSessionInfoCarriesRingHandles(t *testing.T) {
	b, _ := startService(t)
	pub := b.NewConnection("test")
	pub.Publish(pub.NewMessage(bus.T("config", "hal"), testConfig(), true))

	replySub := pub.Subscribe(bus.T("test", "reply", "sess"))
	defer pub.Unsubscribe(replySub)
	msg := pub.NewMessage(bus.T("hal", "cap", "serial", "con0", "control", "session_info"), nil, false)
	msg.ReplyTo = bus.T("test", "reply", "sess")

	deadline := time.After(time.Second)
	for {
		pub.Publish(msg)
		reply, _ := recvMsg(t, replySub).Payload.(map[string]any)
		if ok, _ := reply["ok"].(bool); ok {
			sess, _ := reply["session"].(types.SerialSessionOpened)
			if sess.RXHandle == 0 || sess.TXHandle == 0 {
				t.Fatalf("session = %+v, want nonzero handles", sess)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("session_info never accepted: %v", reply)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestServiceUnknownCapabilityIsRejected(t *testing.T) {
	b, _ := startService(t)
	pub := b.NewConnection("test")
	pub.Publish(pub.NewMessage(bus.T("config", "hal"), testConfig(), true))

	replySub := pub.Subscribe(bus.T("test", "reply", "bad"))
	defer pub.Unsubscribe(replySub)
	msg := pub.NewMessage(bus.T("hal", "cap", "serial", "ghost", "control", "write"), []byte("x"), false)
	msg.ReplyTo = bus.T("test", "reply", "bad")
	pub.Publish(msg)

	reply, _ := recvMsg(t, replySub).Payload.(map[string]any)
	if ok, _ := reply["ok"].(bool); ok {
		t.Fatal("write to unknown capability succeeded")
	}
}

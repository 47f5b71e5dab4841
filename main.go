package main

import (
	"context"
	"time"

	"serialcore-go/bus"
	"serialcore-go/services/config"
	"serialcore-go/services/hal"
	"serialcore-go/services/heartbeat"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, deviceID)
	b := bus.New(16)

	ports, clockHz := newPortFactory()
	go hal.Run(ctx, b.NewConnection("hal"), ports, clockHz)

	hb := &heartbeat.Service{}
	if err := hb.Start(ctx, b.NewConnection("heartbeat")); err != nil {
		println("Error: heartbeat:", err.Error())
	}

	// Config goes out last so every subscriber sees the retained values
	// as soon as it attaches.
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	select {}
}

//go:build !rp2040 && !rp2350

// uart-demo exercises the serial engine end to end on simulated
// registers: configure, transmit through the ring-fed session, loop the
// wire back into the receiver, and force an overrun recovery.
package main

import (
	"time"

	"tinygo.org/x/drivers"

	"serialcore-go/services/hal"
)

func main() {
	println("uart-demo: simulated loopback")

	ports := hal.NewSimPortFactory(4_000_000, "uart0")
	p := ports.Port("uart0")

	if err := p.Configure(drivers.UARTConfig{BaudRate: 9600}); err != nil {
		println("configure failed:", err.Error())
		return
	}
	println("configured: 9600 baud, divisor", int(p.Regs.Divisor()))

	// Transmit a message; the session feeds the data register one byte
	// per transmit-empty event. Loop each wire byte back into the
	// receiver.
	msg := "hello, wire\n"
	if _, err := p.Write([]byte(msg)); err != nil {
		println("write failed:", err.Error())
		return
	}
	for i := 0; i < len(msg); i++ {
		b := p.Regs.CompleteTransmit()
		p.Regs.InjectByte(b)
		p.Engine().HandleReceiveInterrupt()
		p.Engine().HandleTransmitInterrupt()
	}

	buf := make([]byte, 64)
	n, _ := p.Read(buf)
	println("looped back:", string(buf[:n]))

	// Back-to-back arrivals without service latch an overrun; the
	// receive handler recovers before delivering the notification.
	p.Regs.InjectByte('X')
	p.Regs.InjectByte('Y')
	p.Engine().HandleReceiveInterrupt()

	st := p.Stats()
	println("stats: rx", int(st.RxBytes), "tx", int(st.TxBytes), "overruns", int(st.Overruns))

	time.Sleep(10 * time.Millisecond)
	println("uart-demo: done")
}

//go:build !rp2040 && !rp2350

// linktest soak-tests the serial path on simulated registers: it paces
// a byte stream at a target rate with a PI governor, loops the wire
// back, and tracks smoothed loop latency. Useful for spotting ring or
// pacing regressions without hardware.
package main

import (
	"time"

	"tinygo.org/x/drivers"

	"serialcore-go/services/hal"
	"serialcore-go/x/conv"
	"serialcore-go/x/filter"
	"serialcore-go/x/pid"
)

const (
	targetBytesPerSec = 960 // one 9600-baud character stream
	cycles            = 50
	window            = 20 * time.Millisecond
)

func main() {
	println("linktest: paced loopback soak")

	ports := hal.NewSimPortFactory(4_000_000, "uart0")
	p := ports.Port("uart0")
	if err := p.Configure(drivers.UARTConfig{BaudRate: 9600}); err != nil {
		println("configure failed:", err.Error())
		return
	}

	// PI governor on the per-window byte budget; smoothed loop latency
	// for the report.
	gov := pid.New(64, 16, 0, 256)
	lat := filter.NewExponential(3)

	perWindow := int32(targetBytesPerSec * int64(window) / int64(time.Second))
	budget := perWindow
	var sent, looped uint32
	buf := make([]byte, 1)

	for cycle := 0; cycle < cycles; cycle++ {
		start := time.Now()
		for i := int32(0); i < budget; i++ {
			if n, _ := p.Write([]byte{byte(i)}); n == 0 {
				break
			}
			sent++
			// Wire round trip: shifter completes, receiver latches.
			b := p.Regs.CompleteTransmit()
			p.Regs.InjectByte(b)
			p.Engine().HandleReceiveInterrupt()
			p.Engine().HandleTransmitInterrupt()
			if n, _ := p.Read(buf); n == 1 {
				looped++
			}
		}
		us := int32(time.Since(start) / time.Microsecond)
		lat.Update(us)

		// Steer next window's budget toward the target pace.
		adj := gov.Update(perWindow, int32(sent)/int32(cycle+1))
		budget = perWindow + adj/8
		if budget < 1 {
			budget = 1
		}
	}

	st := p.Stats()
	num := make([]byte, 20)
	println("sent:", string(conv.Utoa(num, uint64(sent))))
	println("looped:", string(conv.Utoa(num, uint64(looped))))
	println("overruns:", int(st.Overruns))
	println("smoothed window us:", int(lat.Value()))
	if sent != looped || st.Overruns != 0 {
		println("linktest: FAIL")
		return
	}
	println("linktest: PASS")
}

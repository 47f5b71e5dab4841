//go:build !rp2040 && !rp2350

package main

import "serialcore-go/services/hal"

const deviceID = "pico"

// Host builds run against simulated register files; the 4 MHz clock
// matches the documented divisor example (9600 baud -> divisor 103).
const simClockHz = 4_000_000

func newPortFactory() (hal.PortFactory, uint32) {
	return hal.NewSimPortFactory(simClockHz, "uart0", "uart1"), simClockHz
}

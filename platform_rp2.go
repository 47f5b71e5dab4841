//go:build rp2040 || rp2350

package main

import (
	"machine"

	"serialcore-go/services/hal"
)

const deviceID = "pico"

func newPortFactory() (hal.PortFactory, uint32) {
	return hal.HWPortFactory{}, machine.CPUFrequency()
}

//go:build !rp2040 && !rp2350

// uart-console is an interactive harness for the capability dispatch
// layer: each input line is tokenized and routed through a serial
// handle as an abstract operation, so unsupported or misspelled
// operations demonstrate the degradation path rather than crashing.
//
//	> configure 9600 4000000
//	> tx 0x41
//	> rx
//	> stats
package main

import (
	"bufio"
	"os"

	"github.com/google/shlex"

	"serialcore-go/drivers/uart"
	"serialcore-go/periph"
	"serialcore-go/types"
	"serialcore-go/x/conv"
)

func main() {
	regs := uart.NewSimRegs()
	h, engine := uart.NewHandle(regs)
	println("uart-console: type 'help'")

	sc := bufio.NewScanner(os.Stdin)
	for {
		print("> ")
		if !sc.Scan() {
			return
		}
		args, err := shlex.Split(sc.Text())
		if err != nil {
			println("parse error:", err.Error())
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "help":
			println("configure <baud> <clock_hz> | tx <byte> | rx | drain | <op> ...")
		case "configure":
			if len(args) < 3 {
				println("usage: configure <baud> <clock_hz>")
				continue
			}
			baud, ok1 := conv.ParseU32(args[1])
			clk, ok2 := conv.ParseU32(args[2])
			if !ok1 || !ok2 {
				println("bad number")
				continue
			}
			cfg, err := uart.NewConfig(baud, clk)
			if err != nil {
				println("error:", err.Error())
				continue
			}
			if _, err := h.Invoke(uart.OpConfigure, cfg); err != nil {
				println("error:", err.Error())
				continue
			}
			println("ok: divisor", int(cfg.Divisor),
				"achieved", int(uart.AchievedBaud(cfg.Divisor, clk)), "baud")
		case "tx":
			if len(args) < 2 {
				println("usage: tx <byte>")
				continue
			}
			v, ok := conv.ParseU32(args[1])
			if !ok || v > 0xFF {
				println("bad byte")
				continue
			}
			if _, err := h.Invoke(uart.OpTransmit, byte(v)); err != nil {
				println("error:", err.Error())
				continue
			}
			println("ok: wire saw", int(regs.CompleteTransmit()))
			engine.HandleTransmitInterrupt()
		case "rx":
			if len(args) >= 2 {
				// Inject a wire byte, then service the interrupt.
				v, ok := conv.ParseU32(args[1])
				if !ok || v > 0xFF {
					println("bad byte")
					continue
				}
				regs.InjectByte(byte(v))
				engine.HandleReceiveInterrupt()
			}
			res, err := h.Invoke(uart.OpReadByte)
			if err != nil {
				println("error:", err.Error())
				continue
			}
			println("ok:", int(res.(byte)))
		case "stats":
			res, err := h.Invoke(uart.OpStats)
			if err != nil {
				println("error:", err.Error())
				continue
			}
			st := res.(types.SerialStats)
			println("ok: overruns", int(st.Overruns))
		case "drain":
			for _, b := range regs.TxLog() {
				print(string(rune(b)))
			}
			println()
		default:
			// Everything else goes straight through dispatch; unknown
			// operations come back unsupported.
			res, err := h.Invoke(periph.Op(args[0]))
			if err != nil {
				println("error:", err.Error())
				continue
			}
			if res != nil {
				println("ok: result returned")
			} else {
				println("ok")
			}
		}
	}
}

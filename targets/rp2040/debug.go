//go:build rp2040 || rp2350

package main

import (
	"machine"

	"wavegen/core"
)

var debugUART *machine.UART

// InitDebugUART routes the generator's debug output to UART0
// (TX=GPIO0, RX=GPIO1) at 115200 baud
func InitDebugUART() {
	debugUART = machine.UART0

	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GPIO0,
		RX:       machine.GPIO1,
	})
	if err != nil {
		return
	}

	core.SetDebugWriter(func(s string) {
		debugUART.Write([]byte(s))
		debugUART.Write([]byte("\r\n"))
	})
	core.SetDebugEnabled(true)
	core.DebugPrintln("=== wavegen debug UART initialized ===")
}

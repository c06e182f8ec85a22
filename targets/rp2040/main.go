//go:build rp2040 || rp2350

package main

import (
	"time"

	"wavegen/core"
)

// Board wiring: AD9833 on spi0b (SCK=GPIO6, SDATA=GPIO7) with FSYNC on GPIO5
const (
	spiBus     = "spi0b"
	selectLine = "gpio5"
	retryDelay = time.Second
)

func main() {
	InitDebugUART()

	bus, err := configureBus(spiBus, core.SPIConfig{
		Mode: core.DefaultAD9833Mode,
		Rate: core.DefaultAD9833Rate,
	})
	if err != nil {
		halt("SPI: " + err.Error())
	}

	dev, err := core.NewSPIDevice(bus, rpPins{}, selectLine, 0)
	if err != nil {
		halt("select: " + err.Error())
	}

	cfg := core.DefaultAD9833Config()
	var gen *core.AD9833
	for {
		gen, err = core.NewAD9833(dev, cfg)
		if err == nil {
			err = gen.Start()
		}
		if err == nil {
			break
		}
		core.DebugPrintln("bring-up failed: " + err.Error())
		time.Sleep(retryDelay)
	}

	core.DebugPrintln("ad9833 running: 440 Hz sine")
	gen.DumpWrites()

	select {}
}

func halt(msg string) {
	for {
		core.DebugPrintln(msg)
		time.Sleep(5 * retryDelay)
	}
}

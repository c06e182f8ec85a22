package config

import "wavegen/core"

const (
	ConfigDir  = ".wavegen"
	ConfigFile = "config.yaml"

	TransportSPIDev    = "spidev"
	TransportBusPirate = "buspirate"

	DefaultName            = "ad9833"
	DefaultTransport       = TransportSPIDev
	DefaultSelect          = "GPIO8" // CE0 on a Raspberry Pi header, driven as a plain GPIO
	DefaultSerialPort      = "/dev/ttyUSB0"
	DefaultBusPirateSelect = "CS"
	DefaultBaud            = 115200
	DefaultSPIRate         = core.DefaultAD9833Rate
	DefaultSPIMode         = core.DefaultAD9833Mode
	DefaultMasterClock     = core.AD9833_DEFAULT_CLK
	DefaultFrequency       = core.AD9833_DEFAULT_HZ
)

package core

// AD9833 Register Definitions
// Based on AD9833 datasheet Rev. G
// Analog Devices, Inc.

// Register address tags (DB15..DB13)
const (
	AD9833_FREQ0  = 0x4000 // Frequency register 0 (DB15=0, DB14=1)
	AD9833_FREQ1  = 0x8000 // Frequency register 1 (DB15=1, DB14=0)
	AD9833_PHASE0 = 0xC000 // Phase register 0 (DB15=1, DB14=1, DB13=0)
	AD9833_PHASE1 = 0xE000 // Phase register 1 (DB15=1, DB14=1, DB13=1)
)

// Control register bits
const (
	AD9833_CTRL_B28     = 0x2000 // Two consecutive writes load a full 28-bit frequency word
	AD9833_CTRL_FSELECT = 11     // Bit position of the frequency register select
	AD9833_CTRL_PSELECT = 10     // Bit position of the phase register select
	AD9833_CTRL_RESET   = 0x0100 // Hold the DDS core in reset
	AD9833_CTRL_SLEEP1  = 0x0080 // Disable the internal MCLK
	AD9833_CTRL_MODE    = 0x0002 // Triangle output

	// Square output: OPBITEN|DIV2, the DAC MSB routed to VOUT. Both bits
	// are required; OPBITEN alone gives half the output frequency.
	AD9833_CTRL_SQUARE = 0x0028
)

// Field limits
const (
	AD9833_FREQ_BITS   = 28
	AD9833_FREQ_HALF   = 14
	AD9833_FREQ_MASK   = 1<<AD9833_FREQ_HALF - 1 // 0x3FFF
	AD9833_PHASE_MAX   = 4095                    // 12-bit phase, units of 2pi/4096
	AD9833_DEFAULT_CLK = 25000000                // Master clock on common breakout boards
	AD9833_DEFAULT_HZ  = 440
)

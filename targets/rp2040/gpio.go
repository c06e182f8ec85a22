//go:build rp2040 || rp2350

package main

import (
	"fmt"
	"machine"
	"strconv"
	"strings"

	"wavegen/core"
)

const numGPIO = 30

// rpPins resolves "gpioN" names to push-pull outputs
type rpPins struct{}

func (rpPins) ResolvePin(name string) (core.OutputPin, error) {
	lower := strings.ToLower(name)
	if !strings.HasPrefix(lower, "gpio") {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownPin, name)
	}
	n, err := strconv.Atoi(lower[4:])
	if err != nil || n < 0 || n >= numGPIO {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownPin, name)
	}

	pin := machine.Pin(n)
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return core.PinFunc(pin.Set), nil
}

// Package hw implements front-end leaf stages on real buses: GPIO lines for
// the switch matrix, polarity and antenna bias, and a shared SPI bus for the
// baseband codec.
package hw

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Line is a single digital output.
type Line interface {
	Out(high bool) error
}

// PinLine drives a periph GPIO pin.
type PinLine struct {
	Pin gpio.PinOut
}

func (p PinLine) Out(high bool) error {
	return p.Pin.Out(gpio.Level(high))
}

func (p PinLine) String() string { return p.Pin.String() }

// ActiveLow inverts a line whose asserted state is electrically low.
type ActiveLow struct {
	Line Line
}

func (a ActiveLow) Out(high bool) error { return a.Line.Out(!high) }

// OpenHost loads periph host drivers. Call once before OpenPin or OpenSPI.
func OpenHost() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("init periph host: %w", err)
	}
	return nil
}

// OpenPin looks up a GPIO pin by name, e.g. "GPIO17".
func OpenPin(name string) (PinLine, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return PinLine{}, fmt.Errorf("gpio %q not found", name)
	}
	return PinLine{Pin: p}, nil
}

// OpenSPI opens an SPI port by name; an empty name picks the first port.
func OpenSPI(name string) (spi.PortCloser, error) {
	port, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", name, err)
	}
	return port, nil
}

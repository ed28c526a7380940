package main

import (
	"fmt"
	"strconv"

	"periph.io/x/conn/v3/physic"

	"github.com/rjboer/sdrfront/internal/frontend"
	"github.com/rjboer/sdrfront/internal/hw"
	"github.com/rjboer/sdrfront/internal/logging"
	"github.com/rjboer/sdrfront/internal/stage"
)

const (
	sspPeripheralClock = 204 * physic.MegaHertz
	sspPrescale        = 2
	max5864MaxClock    = 20 * physic.MegaHertz
)

func codecTarget() hw.TargetConfig {
	_, f := hw.ClockDivider(sspPeripheralClock, sspPrescale, max5864MaxClock)
	return hw.TargetConfig{Name: "max5864", Frequency: f, WordBits: 8}
}

type backend struct {
	stages frontend.Stages
	close  func() error
}

func selectBackend(cfg cliConfig, logger logging.Logger) (backend, error) {
	switch cfg.backend {
	case "sim", "":
		return simBackend(stage.NewBench()), nil
	case "gpio":
		return gpioBackend(cfg.hardware, logger)
	default:
		return backend{}, fmt.Errorf("unknown backend %s", cfg.backend)
	}
}

func simBackend(bench *stage.Bench) backend {
	return backend{
		stages: frontend.Stages{
			Path:     bench.Path,
			Mixer:    bench.Mixer,
			IF:       bench.IF,
			Codec:    bench.Codec,
			Polarity: bench.Polarity,
			Clock:    bench.Clock,
			Bias:     bench.Bias,
		},
		close: func() error { return nil },
	}
}

// gpioBackend drives the switch matrix, polarity, antenna bias and codec on
// real lines. The synthesizers and clock stay simulated.
func gpioBackend(hc hardwareConfig, logger logging.Logger) (backend, error) {
	b := simBackend(stage.NewBench())

	var (
		line  func(name string) (hw.Line, error)
		codec stage.BasebandCodec = b.stages.Codec
	)
	if hc.RemoteHost != "" {
		remote, err := hw.NewRemoteGPIO(hw.SSHConfig{
			Host:        hc.RemoteHost,
			User:        hc.RemoteUser,
			Password:    hc.RemotePassword,
			KeyPath:     hc.RemoteKeyPath,
			Port:        hc.RemotePort,
			DialRetries: 3,
		}, logger)
		if err != nil {
			return backend{}, err
		}
		line = func(name string) (hw.Line, error) {
			if name == "" {
				return nil, nil
			}
			n, err := strconv.Atoi(name)
			if err != nil {
				return nil, fmt.Errorf("remote gpio %q: %w", name, err)
			}
			return remote.Line(n), nil
		}
		b.close = remote.Close
	} else {
		if err := hw.OpenHost(); err != nil {
			return backend{}, err
		}
		line = func(name string) (hw.Line, error) {
			if name == "" {
				return nil, nil
			}
			p, err := hw.OpenPin(name)
			if err != nil {
				return nil, err
			}
			return p, nil
		}
		port, err := hw.OpenSPI(hc.SPIPort)
		if err != nil {
			return backend{}, err
		}
		cs, err := line(hc.CodecCS)
		if err != nil || cs == nil {
			port.Close()
			return backend{}, fmt.Errorf("codec chip select %q: %v", hc.CodecCS, err)
		}
		target := codecTarget()
		arb, err := hw.NewArbiter(port, logger, target)
		if err != nil {
			port.Close()
			return backend{}, err
		}
		codec = hw.NewCodec(arb.Target(target, cs), logger)
		b.close = port.Close
	}

	var pins hw.SwitchPins
	named := []struct {
		name string
		dst  *hw.Line
	}{
		{hc.TXSelect, &pins.TXSelect},
		{hc.RXSelect, &pins.RXSelect},
		{hc.LowPass, &pins.LowPass},
		{hc.MixBypass, &pins.MixBypass},
		{hc.HighPass, &pins.HighPass},
		{hc.AmpEnable, &pins.AmpEnable},
	}
	for _, n := range named {
		l, err := line(n.name)
		if err != nil {
			b.close()
			return backend{}, err
		}
		*n.dst = l
	}
	invert, err := line(hc.Invert)
	if err != nil || invert == nil {
		b.close()
		return backend{}, fmt.Errorf("polarity line %q: %v", hc.Invert, err)
	}
	notAntPower, err := line(hc.NotAntPower)
	if err != nil || notAntPower == nil {
		b.close()
		return backend{}, fmt.Errorf("antenna bias line %q: %v", hc.NotAntPower, err)
	}

	b.stages.Path = hw.NewRFPath(pins, logger)
	b.stages.Polarity = hw.NewCPLDInvert(invert, logger)
	b.stages.Bias = hw.NewAntennaBias(notAntPower, logger)
	b.stages.Codec = codec
	return b, nil
}

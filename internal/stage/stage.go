// Package stage defines the leaf stages the front-end controller drives.
// Register layouts, bus timing and pin assignments live behind these
// interfaces.
package stage

import (
	"errors"

	"github.com/rjboer/sdrfront/internal/rf"
)

// ErrFrequencyRange is returned by a synthesizer asked for a frequency outside
// its lock range.
var ErrFrequencyRange = errors.New("frequency outside synthesizer range")

// IFMode is the operating mode of the second-IF transceiver.
type IFMode int

const (
	IFStandby IFMode = iota
	IFReceive
	IFTransmit
)

func (m IFMode) String() string {
	switch m {
	case IFStandby:
		return "standby"
	case IFReceive:
		return "rx"
	case IFTransmit:
		return "tx"
	default:
		return "unknown"
	}
}

// CodecMode is the operating mode of the baseband ADC/DAC pair.
type CodecMode int

const (
	CodecShutdown CodecMode = iota
	CodecReceive
	CodecTransmit
)

func (m CodecMode) String() string {
	switch m {
	case CodecShutdown:
		return "shutdown"
	case CodecReceive:
		return "rx"
	case CodecTransmit:
		return "tx"
	default:
		return "unknown"
	}
}

// RFPath drives the antenna/band switch matrix and the RF amplifier.
type RFPath interface {
	Init()
	SetDirection(d rf.Direction)
	SetBand(b rf.Band)
	SetRFAmp(on bool)
}

// FirstMixer is the first local oscillator and mixer.
type FirstMixer interface {
	Init()
	Enable()
	Disable()
	SetFrequency(f rf.Frequency)
	ReadRegister(n uint) uint32
}

// SecondIF is the second-IF transceiver: mode, LO, gains and baseband filter.
// Gain and bandwidth requests outside the chip's range are clamped here.
type SecondIF interface {
	Init()
	SetMode(m IFMode)
	SetFrequency(f rf.Frequency) error
	SetLNAGain(db int8)
	SetVGAGain(db int8)
	SetTXVGAGain(db int8)
	SetLPFBandwidth(minimum uint32)
	ReadRegister(n uint) uint32
	TempSense() uint8
}

// BasebandCodec is the ADC/DAC pair.
type BasebandCodec interface {
	Init()
	SetMode(m CodecMode)
}

// Polarity is the spectral-inversion control bit in programmable logic.
type Polarity interface {
	Init()
	SetInvert(invert bool)
}

// Clock sets the baseband sampling rate.
type Clock interface {
	SetSamplingFrequency(rate uint32)
}

// AntennaBias switches DC bias onto the antenna port.
type AntennaBias interface {
	Set(on bool)
}

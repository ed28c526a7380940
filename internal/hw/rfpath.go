package hw

import (
	"github.com/rjboer/sdrfront/internal/logging"
	"github.com/rjboer/sdrfront/internal/rf"
)

// SwitchPins are the control lines of the RF switch matrix. Nil lines are
// skipped, for boards that hard-wire part of the matrix.
type SwitchPins struct {
	TXSelect  Line
	RXSelect  Line
	LowPass   Line
	MixBypass Line
	HighPass  Line
	AmpEnable Line
}

// RFPath routes the antenna through the band filter and amplifier chosen by
// the controller. All lines are rewritten on every change.
type RFPath struct {
	pins      SwitchPins
	logger    logging.Logger
	direction rf.Direction
	band      rf.Band
	amp       bool
}

func NewRFPath(pins SwitchPins, logger logging.Logger) *RFPath {
	return &RFPath{pins: pins, logger: logging.Subsystem(logger, "rf_path"), band: rf.BandMid}
}

func (p *RFPath) Init() {
	p.direction = rf.Receive
	p.band = rf.BandMid
	p.amp = false
	p.apply()
}

func (p *RFPath) SetDirection(d rf.Direction) {
	p.direction = d
	p.apply()
}

func (p *RFPath) SetBand(b rf.Band) {
	p.band = b
	p.apply()
}

func (p *RFPath) SetRFAmp(on bool) {
	p.amp = on
	p.apply()
}

func (p *RFPath) apply() {
	tx := p.direction == rf.Transmit
	p.out("tx_select", p.pins.TXSelect, tx)
	p.out("rx_select", p.pins.RXSelect, !tx)
	p.out("low_pass", p.pins.LowPass, p.band == rf.BandLow)
	p.out("mix_bypass", p.pins.MixBypass, p.band == rf.BandMid)
	p.out("high_pass", p.pins.HighPass, p.band == rf.BandHigh)
	p.out("amp_enable", p.pins.AmpEnable, p.amp)
}

func (p *RFPath) out(name string, l Line, v bool) {
	if l == nil {
		return
	}
	if err := l.Out(v); err != nil {
		p.logger.Error("drive switch line", logging.F("line", name), logging.F("error", err))
	}
}

package hw

import "github.com/rjboer/sdrfront/internal/logging"

// CPLDInvert drives the programmable-logic spectral inversion input.
type CPLDInvert struct {
	line   Line
	logger logging.Logger
}

func NewCPLDInvert(line Line, logger logging.Logger) *CPLDInvert {
	return &CPLDInvert{line: line, logger: logging.Subsystem(logger, "cpld")}
}

func (c *CPLDInvert) Init() { c.SetInvert(false) }

func (c *CPLDInvert) SetInvert(invert bool) {
	if err := c.line.Out(invert); err != nil {
		c.logger.Error("write invert bit", logging.F("invert", invert), logging.F("error", err))
	}
}

// AntennaBias switches antenna DC bias through a MOSFET whose gate is pulled
// low to turn bias on.
type AntennaBias struct {
	power  Line
	logger logging.Logger
}

func NewAntennaBias(notPower Line, logger logging.Logger) *AntennaBias {
	return &AntennaBias{power: ActiveLow{Line: notPower}, logger: logging.Subsystem(logger, "antenna_bias")}
}

func (b *AntennaBias) Set(on bool) {
	if err := b.power.Out(on); err != nil {
		b.logger.Error("switch antenna bias", logging.F("on", on), logging.F("error", err))
	}
}

package hw

import (
	"github.com/rjboer/sdrfront/internal/logging"
	"github.com/rjboer/sdrfront/internal/stage"
)

// MAX5864 operating-mode commands.
const (
	max5864Shutdown = 0x00
	max5864Rx       = 0x02
	max5864Tx       = 0x03
)

// Codec drives a MAX5864-class ADC/DAC through a bus target. Bus errors are
// logged and absorbed.
type Codec struct {
	target *Target
	logger logging.Logger
	mode   stage.CodecMode
}

func NewCodec(target *Target, logger logging.Logger) *Codec {
	return &Codec{target: target, logger: logging.Subsystem(logger, "codec")}
}

func (c *Codec) Init() {
	c.SetMode(stage.CodecShutdown)
}

func (c *Codec) SetMode(m stage.CodecMode) {
	cmd := uint16(max5864Shutdown)
	switch m {
	case stage.CodecReceive:
		cmd = max5864Rx
	case stage.CodecTransmit:
		cmd = max5864Tx
	}
	if _, err := c.target.Transfer(cmd); err != nil {
		c.logger.Error("set codec mode", logging.F("mode", m), logging.F("error", err))
		return
	}
	c.mode = m
}

// Mode returns the last mode the chip acknowledged.
func (c *Codec) Mode() stage.CodecMode { return c.mode }

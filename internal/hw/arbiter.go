package hw

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/rjboer/sdrfront/internal/logging"
)

// TargetConfig describes one chip on a shared SPI bus.
type TargetConfig struct {
	Name      string
	Frequency physic.Frequency // maximum SPI clock the chip accepts
	WordBits  int              // 8 or 16
}

// BusFrequency returns the clock every target on a shared bus can accept.
func BusFrequency(targets ...TargetConfig) physic.Frequency {
	var f physic.Frequency
	for _, t := range targets {
		if t.Frequency > 0 && (f == 0 || t.Frequency < f) {
			f = t.Frequency
		}
	}
	return f
}

// ClockDivider picks the serial clock rate divider for a chip that accepts at
// most limit, on a controller clocked at pclk with a fixed prescaler. The
// returned rate never exceeds limit unless even the largest divider cannot
// reach it.
func ClockDivider(pclk physic.Frequency, prescale int64, limit physic.Frequency) (scr uint8, actual physic.Frequency) {
	if prescale < 1 {
		prescale = 1
	}
	div := int64(1)
	if step := prescale * int64(limit); step > 0 {
		div = (int64(pclk) + step - 1) / step
	}
	if div < 1 {
		div = 1
	}
	if div > 256 {
		div = 256
	}
	return uint8(div - 1), pclk / physic.Frequency(prescale*div)
}

// Arbiter time-shares one SPI connection between chips with separate
// chip-select lines. Transfers to different targets never interleave.
type Arbiter struct {
	mu     sync.Mutex
	conn   spi.Conn
	logger logging.Logger
}

// NewArbiter connects port at a clock every target accepts, mode 0, bytes.
func NewArbiter(port spi.Port, logger logging.Logger, targets ...TargetConfig) (*Arbiter, error) {
	freq := BusFrequency(targets...)
	if freq == 0 {
		return nil, fmt.Errorf("spi arbiter: no target clock configured")
	}
	conn, err := port.Connect(freq, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("spi arbiter connect at %s: %w", freq, err)
	}
	return &Arbiter{conn: conn, logger: logging.Subsystem(logger, "spi")}, nil
}

// Target is one chip's handle on the arbitrated bus.
type Target struct {
	arbiter *Arbiter
	cfg     TargetConfig
	cs      Line
}

// Target registers a chip. cs is the chip-select line, asserted low.
func (a *Arbiter) Target(cfg TargetConfig, cs Line) *Target {
	if cfg.WordBits == 0 {
		cfg.WordBits = 8
	}
	return &Target{arbiter: a, cfg: cfg, cs: cs}
}

// Name identifies the target in logs.
func (t *Target) Name() string { return t.cfg.Name }

// Transfer shifts words out and returns the words shifted in. Words are sent
// most significant byte first.
func (t *Target) Transfer(words ...uint16) ([]uint16, error) {
	width := t.cfg.WordBits / 8
	if width != 1 && width != 2 {
		return nil, fmt.Errorf("%s: unsupported word size %d bits", t.cfg.Name, t.cfg.WordBits)
	}
	w := make([]byte, len(words)*width)
	for i, word := range words {
		if width == 2 {
			w[2*i] = byte(word >> 8)
			w[2*i+1] = byte(word)
		} else {
			w[i] = byte(word)
		}
	}
	r := make([]byte, len(w))

	a := t.arbiter
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := t.cs.Out(false); err != nil {
		return nil, fmt.Errorf("%s: assert chip select: %w", t.cfg.Name, err)
	}
	txErr := a.conn.Tx(w, r)
	if err := t.cs.Out(true); err != nil && txErr == nil {
		txErr = fmt.Errorf("release chip select: %w", err)
	}
	if txErr != nil {
		return nil, fmt.Errorf("%s: spi transfer: %w", t.cfg.Name, txErr)
	}

	out := make([]uint16, len(words))
	for i := range out {
		if width == 2 {
			out[i] = uint16(r[2*i])<<8 | uint16(r[2*i+1])
		} else {
			out[i] = uint16(r[i])
		}
	}
	return out, nil
}

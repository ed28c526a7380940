package stage

import (
	"fmt"
	"sync"

	"github.com/rjboer/sdrfront/internal/rf"
)

// Journal records the operations applied to simulated stages in call order.
type Journal struct {
	mu  sync.Mutex
	ops []string
}

func (j *Journal) record(format string, args ...any) {
	if j == nil {
		return
	}
	j.mu.Lock()
	j.ops = append(j.ops, fmt.Sprintf(format, args...))
	j.mu.Unlock()
}

// Ops returns a copy of the recorded operations, or nil when none are recorded.
func (j *Journal) Ops() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.ops) == 0 {
		return nil
	}
	out := make([]string, len(j.ops))
	copy(out, j.ops)
	return out
}

// Reset discards recorded operations.
func (j *Journal) Reset() {
	j.mu.Lock()
	j.ops = nil
	j.mu.Unlock()
}

// SimRFPath is an in-memory RF switch matrix.
type SimRFPath struct {
	journal     *Journal
	Initialized bool
	Direction   rf.Direction
	Band        rf.Band
	RFAmp       bool
}

func NewSimRFPath(j *Journal) *SimRFPath { return &SimRFPath{journal: j} }

func (p *SimRFPath) Init() {
	p.Initialized = true
	p.journal.record("rf_path.init")
}

func (p *SimRFPath) SetDirection(d rf.Direction) {
	p.Direction = d
	p.journal.record("rf_path.direction %s", d)
}

func (p *SimRFPath) SetBand(b rf.Band) {
	p.Band = b
	p.journal.record("rf_path.band %s", b)
}

func (p *SimRFPath) SetRFAmp(on bool) {
	p.RFAmp = on
	p.journal.record("rf_path.rf_amp %t", on)
}

// SimFirstMixer is an in-memory first LO/mixer. Register 0 holds the enable
// flag and register 1 the LO frequency in kHz.
type SimFirstMixer struct {
	journal     *Journal
	Initialized bool
	Enabled     bool
	Frequency   rf.Frequency
}

func NewSimFirstMixer(j *Journal) *SimFirstMixer { return &SimFirstMixer{journal: j} }

func (m *SimFirstMixer) Init() {
	m.Initialized = true
	m.journal.record("first_mixer.init")
}

func (m *SimFirstMixer) Enable() {
	m.Enabled = true
	m.journal.record("first_mixer.enable")
}

func (m *SimFirstMixer) Disable() {
	m.Enabled = false
	m.journal.record("first_mixer.disable")
}

func (m *SimFirstMixer) SetFrequency(f rf.Frequency) {
	m.Frequency = f
	m.journal.record("first_mixer.frequency %d", int64(f))
}

func (m *SimFirstMixer) ReadRegister(n uint) uint32 {
	switch n {
	case 0:
		return boolRegister(m.Enabled)
	case 1:
		return uint32(m.Frequency / 1000)
	default:
		return 0
	}
}

// Second-IF ranges, matching a MAX2839-class transceiver.
const (
	MaxLNAGain   = 40
	lnaGainStep  = 8
	MaxVGAGain   = 62
	vgaGainStep  = 2
	MaxTXVGAGain = 47
)

var (
	SecondLOMin = rf.MHz(2150)
	SecondLOMax = rf.MHz(2750)

	// LPFBandwidths lists the selectable baseband filter bandwidths in Hz.
	LPFBandwidths = []uint32{
		1_750_000, 2_500_000, 3_500_000, 5_000_000, 5_500_000, 6_000_000,
		7_000_000, 8_000_000, 9_000_000, 10_000_000, 12_000_000, 14_000_000,
		15_000_000, 20_000_000, 24_000_000, 28_000_000,
	}
)

// LPFBandwidthFor returns the smallest supported bandwidth that is at least
// minimum, or the widest one when none is.
func LPFBandwidthFor(minimum uint32) uint32 {
	for _, bw := range LPFBandwidths {
		if bw >= minimum {
			return bw
		}
	}
	return LPFBandwidths[len(LPFBandwidths)-1]
}

// ClampGain limits db to [0, max] and rounds down to a multiple of step.
func ClampGain(db int8, max int, step int) int {
	v := int(db)
	if v < 0 {
		v = 0
	}
	if v > max {
		v = max
	}
	return v - v%step
}

// SimSecondIF is an in-memory second-IF transceiver. Registers 0..5 hold
// mode, LO in kHz, LNA, VGA, TX VGA gains and the LPF bandwidth in kHz.
type SimSecondIF struct {
	journal      *Journal
	Initialized  bool
	Mode         IFMode
	Frequency    rf.Frequency
	LNAGain      int
	VGAGain      int
	TXVGAGain    int
	LPFBandwidth uint32
	// RawTemp is returned unmasked by TempSense.
	RawTemp uint8
}

func NewSimSecondIF(j *Journal) *SimSecondIF { return &SimSecondIF{journal: j} }

func (s *SimSecondIF) Init() {
	s.Initialized = true
	s.Mode = IFStandby
	s.journal.record("second_if.init")
}

func (s *SimSecondIF) SetMode(m IFMode) {
	s.Mode = m
	s.journal.record("second_if.mode %s", m)
}

func (s *SimSecondIF) SetFrequency(f rf.Frequency) error {
	if f < SecondLOMin || f > SecondLOMax {
		s.journal.record("second_if.frequency %d rejected", int64(f))
		return fmt.Errorf("second IF LO %v: %w", f, ErrFrequencyRange)
	}
	s.Frequency = f
	s.journal.record("second_if.frequency %d", int64(f))
	return nil
}

func (s *SimSecondIF) SetLNAGain(db int8) {
	s.LNAGain = ClampGain(db, MaxLNAGain, lnaGainStep)
	s.journal.record("second_if.lna_gain %d", s.LNAGain)
}

func (s *SimSecondIF) SetVGAGain(db int8) {
	s.VGAGain = ClampGain(db, MaxVGAGain, vgaGainStep)
	s.journal.record("second_if.vga_gain %d", s.VGAGain)
}

func (s *SimSecondIF) SetTXVGAGain(db int8) {
	s.TXVGAGain = ClampGain(db, MaxTXVGAGain, 1)
	s.journal.record("second_if.tx_vga_gain %d", s.TXVGAGain)
}

func (s *SimSecondIF) SetLPFBandwidth(minimum uint32) {
	s.LPFBandwidth = LPFBandwidthFor(minimum)
	s.journal.record("second_if.lpf_bandwidth %d", s.LPFBandwidth)
}

func (s *SimSecondIF) ReadRegister(n uint) uint32 {
	switch n {
	case 0:
		return uint32(s.Mode)
	case 1:
		return uint32(s.Frequency / 1000)
	case 2:
		return uint32(s.LNAGain)
	case 3:
		return uint32(s.VGAGain)
	case 4:
		return uint32(s.TXVGAGain)
	case 5:
		return s.LPFBandwidth / 1000
	default:
		return 0
	}
}

func (s *SimSecondIF) TempSense() uint8 { return s.RawTemp }

// SimCodec is an in-memory baseband codec.
type SimCodec struct {
	journal     *Journal
	Initialized bool
	Mode        CodecMode
}

func NewSimCodec(j *Journal) *SimCodec { return &SimCodec{journal: j} }

func (c *SimCodec) Init() {
	c.Initialized = true
	c.Mode = CodecShutdown
	c.journal.record("codec.init")
}

func (c *SimCodec) SetMode(m CodecMode) {
	c.Mode = m
	c.journal.record("codec.mode %s", m)
}

// SimPolarity is an in-memory inversion bit. Writes counts every SetInvert.
type SimPolarity struct {
	journal     *Journal
	Initialized bool
	Invert      bool
	Writes      int
}

func NewSimPolarity(j *Journal) *SimPolarity { return &SimPolarity{journal: j} }

func (p *SimPolarity) Init() {
	p.Initialized = true
	p.journal.record("polarity.init")
}

func (p *SimPolarity) SetInvert(invert bool) {
	p.Invert = invert
	p.Writes++
	p.journal.record("polarity.invert %t", invert)
}

// SimClock records the last sampling rate.
type SimClock struct {
	journal *Journal
	Rate    uint32
}

func NewSimClock(j *Journal) *SimClock { return &SimClock{journal: j} }

func (c *SimClock) SetSamplingFrequency(rate uint32) {
	c.Rate = rate
	c.journal.record("clock.rate %d", rate)
}

// SimAntennaBias records the bias switch state.
type SimAntennaBias struct {
	journal *Journal
	On      bool
}

func NewSimAntennaBias(j *Journal) *SimAntennaBias { return &SimAntennaBias{journal: j} }

func (b *SimAntennaBias) Set(on bool) {
	b.On = on
	b.journal.record("antenna_bias %t", on)
}

// Bench bundles a full set of simulated stages sharing one journal.
type Bench struct {
	Journal  *Journal
	Path     *SimRFPath
	Mixer    *SimFirstMixer
	IF       *SimSecondIF
	Codec    *SimCodec
	Polarity *SimPolarity
	Clock    *SimClock
	Bias     *SimAntennaBias
}

// NewBench builds simulated stages for tests and dry runs.
func NewBench() *Bench {
	j := &Journal{}
	return &Bench{
		Journal:  j,
		Path:     NewSimRFPath(j),
		Mixer:    NewSimFirstMixer(j),
		IF:       NewSimSecondIF(j),
		Codec:    NewSimCodec(j),
		Polarity: NewSimPolarity(j),
		Clock:    NewSimClock(j),
		Bias:     NewSimAntennaBias(j),
	}
}

func boolRegister(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Package frontend sequences the RF front end: tuning across the cascaded
// mixer stages, receive/transmit mode changes, and the spectral-inversion bit
// that depends on both.
//
// A Controller is not safe for concurrent use. Every method is a straight
// sequence of stage calls; callers sharing one Controller must serialize
// access themselves.
package frontend

import (
	"errors"
	"fmt"

	"github.com/rjboer/sdrfront/internal/logging"
	"github.com/rjboer/sdrfront/internal/rf"
	"github.com/rjboer/sdrfront/internal/stage"
	"github.com/rjboer/sdrfront/internal/tuning"
)

var (
	// ErrUnsupportedFrequency is returned when no tuning plan covers the
	// requested frequency. No stage is touched in that case.
	ErrUnsupportedFrequency = errors.New("frequency not covered by any tuning plan")
	// ErrUnknownStage is returned by ReadRegister for a stage without registers.
	ErrUnknownStage = errors.New("unknown stage")
)

// Stages are the leaf stages a Controller drives.
type Stages struct {
	Path     stage.RFPath
	Mixer    stage.FirstMixer
	IF       stage.SecondIF
	Codec    stage.BasebandCodec
	Polarity stage.Polarity
	Clock    stage.Clock
	Bias     stage.AntennaBias
}

// InvertTable gives the analog baseband inversion per direction, indexed by
// rf.Direction. It differs between hardware revisions.
type InvertTable [2]bool

var (
	// RevisionR9 inverts analog baseband on receive only.
	RevisionR9 = InvertTable{rf.Receive: true, rf.Transmit: false}
	// RevisionLegacy compensates in programmable logic and never inverts.
	RevisionLegacy = InvertTable{}
)

// State is a snapshot of the controller-owned state.
type State struct {
	Direction      rf.Direction `json:"direction"`
	Frequency      rf.Frequency `json:"frequencyHz"`
	Band           rf.Band      `json:"band"`
	FirstLOActive  bool         `json:"firstLoActive"`
	MixerInvert    bool         `json:"mixerInvert"`
	BasebandInvert bool         `json:"basebandInvert"`
	Polarity       bool         `json:"polarity"`
	Active         bool         `json:"active"`
}

// Reporter receives a State snapshot after every change to controller state.
type Reporter interface {
	ReportState(State)
}

// Option customizes a Controller.
type Option func(*Controller)

// WithPlanner replaces the default tuning planner.
func WithPlanner(p tuning.Planner) Option {
	return func(c *Controller) {
		if p != nil {
			c.planner = p
		}
	}
}

// WithLogger sets the logger; the process default is used otherwise.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.logger = logging.Subsystem(l, "frontend") }
}

// WithBasebandInvert selects the hardware revision's inversion table.
func WithBasebandInvert(t InvertTable) Option {
	return func(c *Controller) { c.invertTable = t }
}

// WithReporter attaches a state observer.
func WithReporter(r Reporter) Option {
	return func(c *Controller) { c.reporter = r }
}

// Controller owns direction and inversion state and orchestrates the stages.
type Controller struct {
	stages      Stages
	planner     tuning.Planner
	logger      logging.Logger
	reporter    Reporter
	invertTable InvertTable

	direction      rf.Direction
	mixerInvert    bool
	basebandInvert bool
	polarity       bool

	frequency     rf.Frequency
	band          rf.Band
	firstLOActive bool
	active        bool
}

// New builds a Controller over the given stages. Call Init before use.
func New(stages Stages, opts ...Option) *Controller {
	c := &Controller{
		stages:      stages,
		planner:     tuning.Create,
		logger:      logging.Subsystem(nil, "frontend"),
		invertTable: RevisionR9,
		direction:   rf.Receive,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init powers up antenna bias in the off state and initializes every stage in
// dependency order. The bus arbiter behind the stages must already exist.
func (c *Controller) Init() {
	c.stages.Bias.Set(false)
	c.stages.Path.Init()
	c.stages.Mixer.Init()
	c.stages.IF.Init()
	c.stages.Codec.Init()
	c.stages.Polarity.Init()
	c.logger.Info("front end initialized")
	c.report()
}

// SetDirection switches receive/transmit. Hardware is rewritten on every
// call, including repeats of the current direction. Anything other than
// rf.Transmit is treated as rf.Receive.
func (c *Controller) SetDirection(d rf.Direction) {
	if d != rf.Transmit {
		d = rf.Receive
	}
	c.direction = d
	c.basebandInvert = c.invertTable[d]
	c.recomputePolarity()

	ifMode, codecMode := stage.IFReceive, stage.CodecReceive
	if d == rf.Transmit {
		ifMode, codecMode = stage.IFTransmit, stage.CodecTransmit
	}
	c.stages.IF.SetMode(ifMode)
	c.stages.Path.SetDirection(d)
	c.stages.Codec.SetMode(codecMode)

	c.logger.Debug("direction set", logging.F("direction", d), logging.F("polarity", c.polarity))
	c.report()
}

// SetTuningFrequency retunes the front end to f.
//
// An uncovered frequency returns ErrUnsupportedFrequency with no stage
// touched. Otherwise the first mixer is disabled first, and the RF path and
// polarity follow the new plan even when the second-IF LO rejects its
// frequency; that rejection is returned and the previous tuned frequency
// stays reported.
func (c *Controller) SetTuningFrequency(f rf.Frequency) error {
	plan := c.planner(f)
	if !plan.Valid {
		c.logger.Warn("tuning rejected", logging.F("frequency_hz", int64(f)))
		return fmt.Errorf("tune %v: %w", f, ErrUnsupportedFrequency)
	}

	c.stages.Mixer.Disable()
	c.firstLOActive = false
	if plan.NeedsFirstLO() {
		c.stages.Mixer.SetFrequency(plan.FirstLO)
		c.stages.Mixer.Enable()
		c.firstLOActive = true
	}

	ifErr := c.stages.IF.SetFrequency(plan.SecondLO)

	c.stages.Path.SetBand(plan.Band)
	c.band = plan.Band
	c.mixerInvert = plan.MixerInvert
	c.recomputePolarity()

	if ifErr != nil {
		c.logger.Warn("second IF rejected LO",
			logging.F("frequency_hz", int64(f)),
			logging.F("second_lo_hz", int64(plan.SecondLO)),
			logging.F("error", ifErr))
		c.report()
		return fmt.Errorf("tune %v: second IF: %w", f, ifErr)
	}

	c.frequency = f
	c.logger.Debug("tuned",
		logging.F("frequency_hz", int64(f)),
		logging.F("first_lo_hz", int64(plan.FirstLO)),
		logging.F("second_lo_hz", int64(plan.SecondLO)),
		logging.F("band", plan.Band),
		logging.F("polarity", c.polarity))
	c.report()
	return nil
}

// recomputePolarity writes mixerInvert XOR basebandInvert to programmable
// logic. Both mutation paths end here.
func (c *Controller) recomputePolarity() {
	c.polarity = c.mixerInvert != c.basebandInvert
	c.stages.Polarity.SetInvert(c.polarity)
}

func (c *Controller) SetRFAmp(on bool) { c.stages.Path.SetRFAmp(on) }

func (c *Controller) SetLNAGain(db int8) { c.stages.IF.SetLNAGain(db) }

func (c *Controller) SetVGAGain(db int8) { c.stages.IF.SetVGAGain(db) }

func (c *Controller) SetTXGain(db int8) { c.stages.IF.SetTXVGAGain(db) }

// SetBasebandFilterBandwidth selects the narrowest filter of at least minimum Hz.
func (c *Controller) SetBasebandFilterBandwidth(minimum uint32) {
	c.stages.IF.SetLPFBandwidth(minimum)
}

func (c *Controller) SetBasebandRate(rate uint32) { c.stages.Clock.SetSamplingFrequency(rate) }

func (c *Controller) SetAntennaBias(on bool) { c.stages.Bias.Set(on) }

// Disable quiesces the front end, radiating and power-hungry stages first.
func (c *Controller) Disable() {
	c.SetAntennaBias(false)
	c.stages.Codec.SetMode(stage.CodecShutdown)
	c.stages.IF.SetMode(stage.IFStandby)
	c.stages.Mixer.Disable()
	c.firstLOActive = false
	c.SetRFAmp(false)
	c.active = false
	c.logger.Info("front end disabled")
	c.report()
}

// Enable brings the front end up with cfg.
func (c *Controller) Enable(cfg Configuration) error {
	return c.Configure(cfg)
}

// Configure re-applies every field of cfg. Direction goes last so mode and
// polarity settle against the final tuning. A tuning failure does not stop
// the remaining steps; it is returned once all of them have run.
func (c *Controller) Configure(cfg Configuration) error {
	tuneErr := c.SetTuningFrequency(cfg.TuningFrequency)
	c.SetRFAmp(cfg.RFAmp)
	c.SetLNAGain(cfg.LNAGain)
	c.SetVGAGain(cfg.VGAGain)
	c.SetBasebandRate(cfg.BasebandRate)
	c.SetBasebandFilterBandwidth(cfg.BasebandFilterBandwidth)
	c.active = true
	c.SetDirection(cfg.Direction)
	return tuneErr
}

// State returns a snapshot of controller-owned state.
func (c *Controller) State() State {
	return State{
		Direction:      c.direction,
		Frequency:      c.frequency,
		Band:           c.band,
		FirstLOActive:  c.firstLOActive,
		MixerInvert:    c.mixerInvert,
		BasebandInvert: c.basebandInvert,
		Polarity:       c.polarity,
		Active:         c.active,
	}
}

func (c *Controller) report() {
	if c.reporter != nil {
		c.reporter.ReportState(c.State())
	}
}

// Package tuning maps a target frequency onto a frequency plan: which local
// oscillators run at what frequency and which RF path carries the signal.
//
// The planner is a pure function; the front-end controller consumes its
// output and never stores it beyond the call that requested it.
package tuning

import "github.com/rjboer/sdrfront/internal/rf"

// Plan is the per-stage realization of a requested center frequency.
type Plan struct {
	Valid       bool
	FirstLO     rf.Frequency // zero when the first mixer is bypassed
	SecondLO    rf.Frequency
	Band        rf.Band
	MixerInvert bool
}

// NeedsFirstLO reports whether the first mixer stage takes part in the plan.
func (p Plan) NeedsFirstLO() bool { return p.FirstLO != 0 }

// Planner produces a plan for a target frequency.
type Planner func(target rf.Frequency) Plan

var (
	MinFrequency = rf.MHz(1)
	MaxFrequency = rf.MHz(7250)

	// Second-IF direct-conversion window.
	midBandLow  = rf.MHz(2150)
	midBandHigh = rf.MHz(2750)
)

// Create is the default three-band planner.
//
// Below the second-IF window the first mixer runs high-side injection, which
// inverts the spectrum. Inside the window the second IF tunes directly. Above
// it the first mixer runs low-side injection.
func Create(target rf.Frequency) Plan {
	switch {
	case target < MinFrequency || target > MaxFrequency:
		return Plan{}
	case target < midBandLow:
		second := lowBandSecondLO(target)
		return Plan{
			Valid:       true,
			FirstLO:     target + second,
			SecondLO:    second,
			Band:        rf.BandLow,
			MixerInvert: true,
		}
	case target < midBandHigh:
		return Plan{
			Valid:    true,
			SecondLO: target,
			Band:     rf.BandMid,
		}
	default:
		second := highBandSecondLO(target)
		return Plan{
			Valid:    true,
			FirstLO:  target - second,
			SecondLO: second,
			Band:     rf.BandHigh,
		}
	}
}

// The second LO slides with the target so first-LO harmonics stay out of the
// IF passband.
func lowBandSecondLO(target rf.Frequency) rf.Frequency {
	return rf.MHz(2650) - target/7
}

func highBandSecondLO(target rf.Frequency) rf.Frequency {
	return rf.MHz(2500) - (target-midBandHigh)/20
}

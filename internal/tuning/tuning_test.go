package tuning

import (
	"testing"

	"github.com/rjboer/sdrfront/internal/rf"
)

func TestCreateRejectsOutOfRange(t *testing.T) {
	for _, f := range []rf.Frequency{0, -1, MinFrequency - 1, MaxFrequency + 1} {
		if plan := Create(f); plan.Valid {
			t.Fatalf("expected invalid plan for %d, got %+v", f, plan)
		}
	}
}

func TestCreateMidBandIsDirect(t *testing.T) {
	plan := Create(rf.MHz(2400))
	if !plan.Valid {
		t.Fatal("expected valid plan")
	}
	if plan.NeedsFirstLO() {
		t.Fatalf("expected no first LO, got %v", plan.FirstLO)
	}
	if plan.SecondLO != rf.MHz(2400) || plan.Band != rf.BandMid || plan.MixerInvert {
		t.Fatalf("unexpected plan %+v", plan)
	}
}

func TestCreateLowBandInverts(t *testing.T) {
	target := rf.MHz(433)
	plan := Create(target)
	if !plan.Valid || plan.Band != rf.BandLow || !plan.MixerInvert {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if plan.FirstLO-plan.SecondLO != target {
		t.Fatalf("first LO minus second LO should equal target: %v - %v", plan.FirstLO, plan.SecondLO)
	}
}

func TestCreateHighBandLowSide(t *testing.T) {
	target := rf.MHz(5800)
	plan := Create(target)
	if !plan.Valid || plan.Band != rf.BandHigh || plan.MixerInvert {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if plan.FirstLO+plan.SecondLO != target {
		t.Fatalf("first LO plus second LO should equal target: %v + %v", plan.FirstLO, plan.SecondLO)
	}
}

func TestSecondLOStaysInsideIFWindow(t *testing.T) {
	for f := MinFrequency; f <= MaxFrequency; f += rf.MHz(50) {
		plan := Create(f)
		if plan.SecondLO < midBandLow || plan.SecondLO >= midBandHigh {
			t.Fatalf("second LO %v for target %v outside IF window", plan.SecondLO, f)
		}
	}
}

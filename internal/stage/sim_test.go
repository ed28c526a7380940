package stage

import (
	"errors"
	"testing"

	"github.com/rjboer/sdrfront/internal/rf"
)

func TestSecondIFRejectsOutOfRangeLO(t *testing.T) {
	bench := NewBench()
	if err := bench.IF.SetFrequency(rf.MHz(2400)); err != nil {
		t.Fatalf("in-range LO failed: %v", err)
	}
	err := bench.IF.SetFrequency(rf.MHz(1000))
	if !errors.Is(err, ErrFrequencyRange) {
		t.Fatalf("expected ErrFrequencyRange, got %v", err)
	}
	if bench.IF.Frequency != rf.MHz(2400) {
		t.Fatalf("rejected LO must not change frequency, got %v", bench.IF.Frequency)
	}
}

func TestSecondIFClampsGains(t *testing.T) {
	s := NewSimSecondIF(nil)
	s.SetLNAGain(100)
	s.SetVGAGain(-5)
	s.SetTXVGAGain(20)
	if s.LNAGain != MaxLNAGain {
		t.Fatalf("LNA gain not clamped: %d", s.LNAGain)
	}
	if s.VGAGain != 0 {
		t.Fatalf("VGA gain not clamped: %d", s.VGAGain)
	}
	if s.TXVGAGain != 20 {
		t.Fatalf("TX VGA gain changed: %d", s.TXVGAGain)
	}
	s.SetLNAGain(21)
	if s.LNAGain != 16 {
		t.Fatalf("LNA gain not quantized: %d", s.LNAGain)
	}
	s.SetVGAGain(33)
	if s.VGAGain != 32 {
		t.Fatalf("VGA gain not quantized: %d", s.VGAGain)
	}
}

func TestLPFBandwidthFor(t *testing.T) {
	cases := []struct {
		min, want uint32
	}{
		{0, 1_750_000},
		{1_750_000, 1_750_000},
		{1_750_001, 2_500_000},
		{9_500_000, 10_000_000},
		{50_000_000, 28_000_000},
	}
	for _, c := range cases {
		if got := LPFBandwidthFor(c.min); got != c.want {
			t.Fatalf("LPFBandwidthFor(%d) = %d, want %d", c.min, got, c.want)
		}
	}
}

func TestJournalRecordsInOrder(t *testing.T) {
	bench := NewBench()
	bench.Mixer.Disable()
	bench.Mixer.SetFrequency(rf.MHz(3000))
	bench.Mixer.Enable()
	want := []string{"first_mixer.disable", "first_mixer.frequency 3000000000", "first_mixer.enable"}
	got := bench.Journal.Ops()
	if len(got) != len(want) {
		t.Fatalf("unexpected ops %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("op %d = %q, want %q", i, got[i], want[i])
		}
	}
	bench.Journal.Reset()
	if ops := bench.Journal.Ops(); ops != nil {
		t.Fatalf("expected nil ops after reset, got %q", ops)
	}
}

func TestRegisterShadows(t *testing.T) {
	bench := NewBench()
	bench.Mixer.SetFrequency(rf.MHz(2833))
	bench.Mixer.Enable()
	if bench.Mixer.ReadRegister(0) != 1 || bench.Mixer.ReadRegister(1) != 2_833_000 {
		t.Fatalf("unexpected mixer registers %d %d", bench.Mixer.ReadRegister(0), bench.Mixer.ReadRegister(1))
	}
	bench.IF.SetMode(IFTransmit)
	if bench.IF.ReadRegister(0) != uint32(IFTransmit) {
		t.Fatalf("unexpected mode register %d", bench.IF.ReadRegister(0))
	}
	if bench.IF.ReadRegister(99) != 0 {
		t.Fatal("unknown register should read zero")
	}
}

package rf

import "testing"

func TestParseDirection(t *testing.T) {
	cases := map[string]Direction{"rx": Receive, "receive": Receive, "": Receive, "tx": Transmit, "transmit": Transmit}
	for in, want := range cases {
		got, err := ParseDirection(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: got %v want %v", in, got, want)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Fatal("expected error for unknown direction")
	}
}

func TestFrequencyString(t *testing.T) {
	if got := MHz(2400).String(); got != "2400.000000 MHz" {
		t.Fatalf("unexpected string %q", got)
	}
}

func TestDirectionTextRoundTrip(t *testing.T) {
	text, err := Transmit.MarshalText()
	if err != nil || string(text) != "tx" {
		t.Fatalf("marshal: %q %v", text, err)
	}
	var d Direction
	if err := d.UnmarshalText([]byte("tx")); err != nil || d != Transmit {
		t.Fatalf("unmarshal: %v %v", d, err)
	}
	if err := d.UnmarshalText([]byte("up")); err == nil {
		t.Fatal("expected error")
	}
}

func TestBandText(t *testing.T) {
	for _, b := range []Band{BandLow, BandMid, BandHigh} {
		text, _ := b.MarshalText()
		var got Band
		if err := got.UnmarshalText(text); err != nil || got != b {
			t.Fatalf("band %v: got %v, %v", b, got, err)
		}
	}
	if _, err := ParseBand("uhf"); err == nil {
		t.Fatal("expected error for unknown band")
	}
}

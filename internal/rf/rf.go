// Package rf holds the value types shared by every front-end stage.
package rf

import "fmt"

// Frequency is a radio frequency in Hz.
type Frequency int64

// MHz converts a frequency in megahertz to Hz.
func MHz(v int64) Frequency { return Frequency(v * 1_000_000) }

func (f Frequency) String() string {
	return fmt.Sprintf("%.6f MHz", float64(f)/1e6)
}

// Direction selects whether the front end receives or transmits.
type Direction int

const (
	Receive Direction = iota
	Transmit
)

func (d Direction) String() string {
	switch d {
	case Receive:
		return "rx"
	case Transmit:
		return "tx"
	default:
		return "unknown"
	}
}

// ParseDirection converts "rx"/"tx" (or "receive"/"transmit") to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "rx", "receive", "":
		return Receive, nil
	case "tx", "transmit":
		return Transmit, nil
	default:
		return Receive, fmt.Errorf("unsupported direction %q", s)
	}
}

// Band identifies the RF path filter route for a frequency range.
type Band int

const (
	BandLow Band = iota
	BandMid
	BandHigh
)

func (b Band) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandMid:
		return "mid"
	case BandHigh:
		return "high"
	default:
		return "unknown"
	}
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (b Band) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// ParseBand converts a band name to a Band.
func ParseBand(s string) (Band, error) {
	switch s {
	case "low":
		return BandLow, nil
	case "mid":
		return BandMid, nil
	case "high":
		return BandHigh, nil
	default:
		return BandLow, fmt.Errorf("unsupported band %q", s)
	}
}

func (b *Band) UnmarshalText(text []byte) error {
	parsed, err := ParseBand(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

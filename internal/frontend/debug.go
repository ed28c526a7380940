package frontend

import "fmt"

// StageID names a stage with readable registers.
type StageID int

const (
	StageFirstMixer StageID = iota
	StageSecondIF
)

func (s StageID) String() string {
	switch s {
	case StageFirstMixer:
		return "first_mixer"
	case StageSecondIF:
		return "second_if"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ParseStageID converts a stage name to a StageID.
func ParseStageID(s string) (StageID, error) {
	switch s {
	case "first_mixer", "first_if", "mixer":
		return StageFirstMixer, nil
	case "second_if", "if":
		return StageSecondIF, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownStage)
	}
}

// ReadRegister returns a raw register value for diagnostics.
func (c *Controller) ReadRegister(id StageID, register uint) (uint32, error) {
	switch id {
	case StageFirstMixer:
		return c.stages.Mixer.ReadRegister(register), nil
	case StageSecondIF:
		return c.stages.IF.ReadRegister(register), nil
	default:
		return 0, fmt.Errorf("read register %d on %v: %w", register, id, ErrUnknownStage)
	}
}

// TempSense returns the second-IF die temperature reading (5 bits).
func (c *Controller) TempSense() uint8 {
	return c.stages.IF.TempSense() & 0x1f
}

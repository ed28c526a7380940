package telemetry

import (
	"github.com/rjboer/sdrfront/internal/frontend"
	"github.com/rjboer/sdrfront/internal/logging"
)

// StdoutReporter logs every state snapshot.
type StdoutReporter struct {
	logger logging.Logger
}

// NewStdoutReporter builds a stdout reporter with the provided logger.
func NewStdoutReporter(logger logging.Logger) StdoutReporter {
	return StdoutReporter{logger: logging.Subsystem(logger, "telemetry")}
}

func (r StdoutReporter) ReportState(s frontend.State) {
	fields := []logging.Field{
		logging.F("direction", s.Direction),
		logging.F("band", s.Band),
		logging.F("polarity", s.Polarity),
		logging.F("active", s.Active),
	}
	if s.Frequency != 0 {
		fields = append(fields, logging.F("frequency_hz", int64(s.Frequency)))
	}
	if s.FirstLOActive {
		fields = append(fields, logging.F("first_lo", "on"))
	}
	r.logger.Info("front end state", fields...)
}

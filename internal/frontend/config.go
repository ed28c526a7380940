package frontend

import "github.com/rjboer/sdrfront/internal/rf"

// Configuration is the full set of values applied by Configure.
type Configuration struct {
	TuningFrequency         rf.Frequency `json:"tuningFrequencyHz"`
	RFAmp                   bool         `json:"rfAmp"`
	LNAGain                 int8         `json:"lnaGainDb"`
	VGAGain                 int8         `json:"vgaGainDb"`
	BasebandRate            uint32       `json:"basebandRateHz"`
	BasebandFilterBandwidth uint32       `json:"basebandFilterBandwidthHz"`
	Direction               rf.Direction `json:"direction"`
}

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/rjboer/sdrfront/internal/frontend"
	"github.com/rjboer/sdrfront/internal/logging"
	"github.com/rjboer/sdrfront/internal/rf"
)

type cliConfig struct {
	frequency   int64
	direction   string
	rfAmp       bool
	lnaGain     int
	vgaGain     int
	txGain      int
	rate        uint
	filterBW    uint
	antennaBias bool
	revision    string
	backend     string
	logLevel    string
	logFormat   string
	webAddr     string
	advertise   bool
	dump        bool
	hold        bool
	discover    time.Duration
	hardware    hardwareConfig
}

// hardwareConfig is only read from the config file.
type hardwareConfig struct {
	Board       string `json:"board"`
	SPIPort     string `json:"spi_port"`
	CodecCS     string `json:"codec_cs"`
	TXSelect    string `json:"tx_select"`
	RXSelect    string `json:"rx_select"`
	LowPass     string `json:"low_pass"`
	MixBypass   string `json:"mix_bypass"`
	HighPass    string `json:"high_pass"`
	AmpEnable   string `json:"amp_enable"`
	Invert      string `json:"invert"`
	NotAntPower string `json:"not_ant_power"`

	// When RemoteHost is set the pin fields above are sysfs GPIO numbers on
	// that host and the codec is simulated.
	RemoteHost     string `json:"remote_host"`
	RemoteUser     string `json:"remote_user"`
	RemotePassword string `json:"remote_password"`
	RemoteKeyPath  string `json:"remote_key_path"`
	RemotePort     int    `json:"remote_port"`
}

type persistentConfig struct {
	Frequency   int64          `json:"frequency_hz"`
	Direction   string         `json:"direction"`
	RFAmp       bool           `json:"rf_amp"`
	LNAGain     int            `json:"lna_gain_db"`
	VGAGain     int            `json:"vga_gain_db"`
	TXGain      int            `json:"tx_gain_db"`
	Rate        uint           `json:"baseband_rate_hz"`
	FilterBW    uint           `json:"baseband_filter_bw_hz"`
	AntennaBias bool           `json:"antenna_bias"`
	Revision    string         `json:"revision"`
	Backend     string         `json:"backend"`
	LogLevel    string         `json:"log_level"`
	LogFormat   string         `json:"log_format"`
	WebAddr     string         `json:"web_addr"`
	Advertise   bool           `json:"advertise"`
	Hardware    hardwareConfig `json:"hardware"`
}

func parseConfig(args []string, lookup func(string) (string, bool), defaults persistentConfig, stderr io.Writer) (cliConfig, error) {
	cfg := cliConfig{hardware: defaults.Hardware}
	fs := flag.NewFlagSet("frontendctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Int64Var(&cfg.frequency, "frequency", envInt64(lookup, "FRONTEND_FREQUENCY", defaults.Frequency), "Center frequency in Hz")
	fs.StringVar(&cfg.direction, "direction", envString(lookup, "FRONTEND_DIRECTION", defaults.Direction), "Direction (rx|tx)")
	fs.BoolVar(&cfg.rfAmp, "rf-amp", envBool(lookup, "FRONTEND_RF_AMP", defaults.RFAmp), "Enable the RF amplifier")
	fs.IntVar(&cfg.lnaGain, "lna-gain", envInt(lookup, "FRONTEND_LNA_GAIN", defaults.LNAGain), "LNA gain (dB)")
	fs.IntVar(&cfg.vgaGain, "vga-gain", envInt(lookup, "FRONTEND_VGA_GAIN", defaults.VGAGain), "Baseband VGA gain (dB)")
	fs.IntVar(&cfg.txGain, "tx-gain", envInt(lookup, "FRONTEND_TX_GAIN", defaults.TXGain), "TX VGA gain (dB)")
	fs.UintVar(&cfg.rate, "baseband-rate", envUint(lookup, "FRONTEND_BASEBAND_RATE", defaults.Rate), "Baseband sampling rate in Hz")
	fs.UintVar(&cfg.filterBW, "filter-bw", envUint(lookup, "FRONTEND_FILTER_BW", defaults.FilterBW), "Minimum baseband filter bandwidth in Hz")
	fs.BoolVar(&cfg.antennaBias, "antenna-bias", envBool(lookup, "FRONTEND_ANTENNA_BIAS", defaults.AntennaBias), "Enable antenna DC bias")
	fs.StringVar(&cfg.revision, "revision", envString(lookup, "FRONTEND_REVISION", defaults.Revision), "Hardware revision (r9|legacy)")
	fs.StringVar(&cfg.backend, "backend", envString(lookup, "FRONTEND_BACKEND", defaults.Backend), "Stage backend (sim|gpio)")
	fs.StringVar(&cfg.logLevel, "log-level", envString(lookup, "FRONTEND_LOG_LEVEL", defaults.LogLevel), "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.logFormat, "log-format", envString(lookup, "FRONTEND_LOG_FORMAT", defaults.LogFormat), "Log format (text|json)")
	fs.StringVar(&cfg.webAddr, "web-addr", envString(lookup, "FRONTEND_WEB_ADDR", defaults.WebAddr), "Status server listen address used with -hold (e.g. :8080)")
	fs.BoolVar(&cfg.advertise, "advertise", envBool(lookup, "FRONTEND_ADVERTISE", defaults.Advertise), "Announce the status server over mDNS")
	fs.BoolVar(&cfg.dump, "dump", false, "Print stage registers and temperature after configuring")
	fs.BoolVar(&cfg.hold, "hold", false, "Keep the front end enabled until interrupted")
	fs.DurationVar(&cfg.discover, "discover", 0, "List status servers found over mDNS within this window and exit")

	if err := fs.Parse(args); err != nil {
		return cliConfig{}, err
	}
	if cfg.lnaGain < -128 || cfg.lnaGain > 127 || cfg.vgaGain < -128 || cfg.vgaGain > 127 || cfg.txGain < -128 || cfg.txGain > 127 {
		return cliConfig{}, fmt.Errorf("gains must fit in a signed byte")
	}
	if cfg.rate > math.MaxUint32 || cfg.filterBW > math.MaxUint32 {
		return cliConfig{}, fmt.Errorf("baseband rate and filter bandwidth must fit in 32 bits")
	}
	if cfg.discover < 0 {
		return cliConfig{}, fmt.Errorf("discover window must not be negative")
	}
	if _, err := logging.ParseLevel(cfg.logLevel); err != nil {
		return cliConfig{}, err
	}
	if _, err := logging.ParseFormat(cfg.logFormat); err != nil {
		return cliConfig{}, err
	}
	if _, err := rf.ParseDirection(cfg.direction); err != nil {
		return cliConfig{}, err
	}
	if _, err := invertTable(cfg.revision); err != nil {
		return cliConfig{}, err
	}
	return cfg, nil
}

func (c cliConfig) configuration() frontend.Configuration {
	d, _ := rf.ParseDirection(c.direction)
	return frontend.Configuration{
		TuningFrequency:         rf.Frequency(c.frequency),
		RFAmp:                   c.rfAmp,
		LNAGain:                 int8(c.lnaGain),
		VGAGain:                 int8(c.vgaGain),
		BasebandRate:            uint32(c.rate),
		BasebandFilterBandwidth: uint32(c.filterBW),
		Direction:               d,
	}
}

func invertTable(revision string) (frontend.InvertTable, error) {
	switch revision {
	case "r9", "":
		return frontend.RevisionR9, nil
	case "legacy":
		return frontend.RevisionLegacy, nil
	default:
		return frontend.InvertTable{}, fmt.Errorf("unknown hardware revision %q", revision)
	}
}

func persistentFromCLI(cfg cliConfig) persistentConfig {
	return persistentConfig{
		Frequency:   cfg.frequency,
		Direction:   cfg.direction,
		RFAmp:       cfg.rfAmp,
		LNAGain:     cfg.lnaGain,
		VGAGain:     cfg.vgaGain,
		TXGain:      cfg.txGain,
		Rate:        cfg.rate,
		FilterBW:    cfg.filterBW,
		AntennaBias: cfg.antennaBias,
		Revision:    cfg.revision,
		Backend:     cfg.backend,
		LogLevel:    cfg.logLevel,
		LogFormat:   cfg.logFormat,
		WebAddr:     cfg.webAddr,
		Advertise:   cfg.advertise,
		Hardware:    cfg.hardware,
	}
}

func loadOrCreateConfig(path string) (persistentConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := defaultPersistentConfig()
			if saveErr := saveConfig(path, cfg); saveErr != nil {
				return persistentConfig{}, saveErr
			}
			return cfg, nil
		}
		return persistentConfig{}, err
	}
	defer f.Close()

	var cfg persistentConfig
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return persistentConfig{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

func saveConfig(path string, cfg persistentConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func defaultPersistentConfig() persistentConfig {
	return persistentConfig{
		Frequency: 2_450_000_000,
		Direction: "rx",
		LNAGain:   16,
		VGAGain:   20,
		TXGain:    0,
		Rate:      10_000_000,
		FilterBW:  9_000_000,
		Revision:  "r9",
		Backend:   "sim",
		LogLevel:  "info",
		LogFormat: "text",
		WebAddr:   ":8080",
		Hardware: hardwareConfig{
			Board:       "hackrf-one",
			SPIPort:     "/dev/spidev0.0",
			CodecCS:     "GPIO8",
			TXSelect:    "GPIO5",
			RXSelect:    "GPIO6",
			LowPass:     "GPIO13",
			MixBypass:   "GPIO19",
			HighPass:    "GPIO26",
			AmpEnable:   "GPIO20",
			Invert:      "GPIO21",
			NotAntPower: "GPIO16",
		},
	}
}

func envInt(lookup func(string) (string, bool), key string, def int) int {
	if val, ok := lookup(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envInt64(lookup func(string) (string, bool), key string, def int64) int64 {
	if val, ok := lookup(key); ok {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func envUint(lookup func(string) (string, bool), key string, def uint) uint {
	if val, ok := lookup(key); ok {
		if parsed, err := strconv.ParseUint(val, 10, 32); err == nil {
			return uint(parsed)
		}
	}
	return def
}

func envBool(lookup func(string) (string, bool), key string, def bool) bool {
	if val, ok := lookup(key); ok {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return def
}

func envString(lookup func(string) (string, bool), key, def string) string {
	if val, ok := lookup(key); ok {
		return val
	}
	return def
}

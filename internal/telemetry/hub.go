package telemetry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rjboer/sdrfront/internal/frontend"
	"github.com/rjboer/sdrfront/internal/logging"
)

// Config is the hub's runtime configuration.
type Config struct {
	HistoryLimit int `json:"historyLimit"`
}

const (
	minHistoryLimit = 1
	maxHistoryLimit = 10_000
)

func defaultConfig() Config {
	return Config{HistoryLimit: 500}
}

func validateConfig(cfg Config, base Config) (Config, error) {
	if base.HistoryLimit == 0 {
		base = defaultConfig()
	}
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = base.HistoryLimit
	}
	if cfg.HistoryLimit < minHistoryLimit || cfg.HistoryLimit > maxHistoryLimit {
		return Config{}, fmt.Errorf("history limit must be between %d and %d", minHistoryLimit, maxHistoryLimit)
	}
	return cfg, nil
}

// Sample is one front-end state snapshot.
type Sample struct {
	Timestamp time.Time      `json:"timestamp"`
	State     frontend.State `json:"state"`
}

// Hub keeps recent front-end state snapshots and fans them out to
// subscribers. It is safe for concurrent use; the controller writes while
// HTTP handlers read.
type Hub struct {
	mu          sync.RWMutex
	history     []Sample
	subscribers map[chan Sample]struct{}
	config      Config
	logger      logging.Logger
}

// NewHub builds a hub keeping at most historyLimit samples.
func NewHub(historyLimit int, logger logging.Logger) *Hub {
	cfg, err := validateConfig(Config{HistoryLimit: historyLimit}, defaultConfig())
	if err != nil {
		cfg = defaultConfig()
	}
	return &Hub{
		subscribers: make(map[chan Sample]struct{}),
		config:      cfg,
		logger:      logging.Subsystem(logger, "telemetry"),
	}
}

// ReportState implements frontend.Reporter.
func (h *Hub) ReportState(s frontend.State) {
	sample := Sample{Timestamp: time.Now(), State: s}

	h.mu.Lock()
	h.history = append(h.history, sample)
	if len(h.history) > h.config.HistoryLimit {
		h.history = h.history[len(h.history)-h.config.HistoryLimit:]
	}
	for ch := range h.subscribers {
		select {
		case ch <- sample:
		default:
			h.logger.Debug("subscriber lagging, sample dropped")
		}
	}
	h.mu.Unlock()
}

// History returns a copy of stored samples, oldest first.
func (h *Hub) History() []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Sample, len(h.history))
	copy(out, h.history)
	return out
}

// Latest returns the most recent sample.
func (h *Hub) Latest() (Sample, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.history) == 0 {
		return Sample{}, false
	}
	return h.history[len(h.history)-1], true
}

// ConfigSnapshot returns the current configuration.
func (h *Hub) ConfigSnapshot() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

// Subscribe registers a listener for live updates.
func (h *Hub) Subscribe() (chan Sample, func()) {
	ch := make(chan Sample, 16)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	cancel := func() {
		h.mu.Lock()
		delete(h.subscribers, ch)
		close(ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// MultiReporter fans state snapshots out to several reporters.
type MultiReporter []frontend.Reporter

func (m MultiReporter) ReportState(s frontend.State) {
	for _, r := range m {
		if r != nil {
			r.ReportState(s)
		}
	}
}

func (h *Hub) applyConfig(cfg Config) {
	h.config = cfg
	if len(h.history) > cfg.HistoryLimit {
		h.history = h.history[len(h.history)-cfg.HistoryLimit:]
	}
}

func (h *Hub) handleHistory(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.History())
}

func (h *Hub) handleState(w http.ResponseWriter, _ *http.Request) {
	sample, ok := h.Latest()
	if !ok {
		http.Error(w, "no state reported yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sample)
}

func (h *Hub) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.ConfigSnapshot())
}

func (h *Hub) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var incoming Config
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		http.Error(w, fmt.Sprintf("invalid config payload: %v", err), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	cfg, err := validateConfig(incoming, h.config)
	if err == nil {
		h.applyConfig(cfg)
	}
	h.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(cfg)
}

func (h *Hub) handleLive(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := h.Subscribe()
	defer cancel()

	if sample, ok := h.Latest(); ok {
		writeEvent(w, sample)
	}
	flusher.Flush()

	for {
		select {
		case sample, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, sample)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, sample Sample) {
	payload, _ := json.Marshal(sample)
	w.Write([]byte("data: "))
	w.Write(payload)
	w.Write([]byte("\n\n"))
}

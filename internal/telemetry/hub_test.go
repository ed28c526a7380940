package telemetry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rjboer/sdrfront/internal/frontend"
	"github.com/rjboer/sdrfront/internal/logging"
	"github.com/rjboer/sdrfront/internal/rf"
)

func newTestHub(limit int) *Hub {
	return NewHub(limit, logging.New(logging.Debug, logging.Text, io.Discard))
}

func TestHubTrimsHistory(t *testing.T) {
	hub := newTestHub(3)
	for i := 1; i <= 5; i++ {
		hub.ReportState(frontend.State{Frequency: rf.MHz(int64(i))})
	}
	history := hub.History()
	if len(history) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(history))
	}
	if history[0].State.Frequency != rf.MHz(3) || history[2].State.Frequency != rf.MHz(5) {
		t.Fatalf("unexpected history %+v", history)
	}
	latest, ok := hub.Latest()
	if !ok || latest.State.Frequency != rf.MHz(5) {
		t.Fatalf("unexpected latest %+v", latest)
	}
}

func TestNewHubFallsBackOnInvalidLimit(t *testing.T) {
	if got := newTestHub(-4).ConfigSnapshot().HistoryLimit; got != defaultConfig().HistoryLimit {
		t.Fatalf("expected default limit, got %d", got)
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	hub := newTestHub(10)
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.ReportState(frontend.State{Direction: rf.Transmit, Polarity: true})
	select {
	case sample := <-ch:
		if sample.State.Direction != rf.Transmit || !sample.State.Polarity {
			t.Fatalf("unexpected sample %+v", sample)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for sample")
	}
}

func TestMultiReporterFansOut(t *testing.T) {
	a, b := newTestHub(5), newTestHub(5)
	MultiReporter{a, nil, b}.ReportState(frontend.State{Active: true})
	if len(a.History()) != 1 || len(b.History()) != 1 {
		t.Fatal("expected both hubs to receive the snapshot")
	}
}

func TestHandleStateBeforeAndAfterReport(t *testing.T) {
	hub := newTestHub(5)
	handler := hub.Handler()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before any report, got %d", rr.Code)
	}

	hub.ReportState(frontend.State{Frequency: rf.MHz(2400), Band: rf.BandMid, Polarity: true})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{`"frequencyHz":2400000000`, `"band":"mid"`, `"direction":"rx"`, `"polarity":true`} {
		if !strings.Contains(body, want) {
			t.Fatalf("response %s missing %s", body, want)
		}
	}
}

func TestHandleHistory(t *testing.T) {
	hub := newTestHub(5)
	hub.ReportState(frontend.State{})
	hub.ReportState(frontend.State{Active: true})

	rr := httptest.NewRecorder()
	hub.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	var samples []Sample
	if err := json.NewDecoder(rr.Body).Decode(&samples); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(samples) != 2 || !samples[1].State.Active {
		t.Fatalf("unexpected history %+v", samples)
	}
}

func TestHandleSetConfig(t *testing.T) {
	hub := newTestHub(10)
	for i := 0; i < 6; i++ {
		hub.ReportState(frontend.State{})
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/config/update", bytes.NewBufferString(`{"historyLimit":4}`))
	hub.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if hub.ConfigSnapshot().HistoryLimit != 4 || len(hub.History()) != 4 {
		t.Fatalf("config not applied: %+v, %d samples", hub.ConfigSnapshot(), len(hub.History()))
	}

	rr = httptest.NewRecorder()
	hub.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/config/update", bytes.NewBufferString(`{"historyLimit":999999}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range limit, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	hub.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/config/update", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestStdoutReporterLogs(t *testing.T) {
	var buf bytes.Buffer
	r := NewStdoutReporter(logging.New(logging.Info, logging.Text, &buf))
	r.ReportState(frontend.State{Frequency: rf.MHz(433), Band: rf.BandLow, FirstLOActive: true})
	out := buf.String()
	for _, want := range []string{"front end state", "subsystem=telemetry", "frequency_hz=433000000", "band=low", "first_lo=on"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log %q missing %q", out, want)
		}
	}
}

func TestHandleLiveStreamsLatest(t *testing.T) {
	hub := newTestHub(10)
	hub.ReportState(frontend.State{Direction: rf.Transmit, Active: true})

	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/live")
	if err != nil {
		t.Fatalf("get live: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	if !strings.HasPrefix(line, "data: ") || !strings.Contains(line, `"direction":"tx"`) {
		t.Fatalf("unexpected event %q", line)
	}
}

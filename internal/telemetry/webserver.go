package telemetry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rjboer/sdrfront/internal/logging"
)

// WebServer exposes front-end state history and live updates over HTTP. It is
// read-only with respect to the radio.
type WebServer struct {
	srv    *http.Server
	hub    *Hub
	logger logging.Logger
}

// NewWebServer builds the status server.
func NewWebServer(addr string, hub *Hub, logger logging.Logger) *WebServer {
	return &WebServer{
		hub:    hub,
		srv:    &http.Server{Addr: addr, Handler: hub.Handler()},
		logger: logging.Subsystem(logger, "webserver"),
	}
}

// Handler returns the status routes.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", h.handleState)
	mux.HandleFunc("/api/history", h.handleHistory)
	mux.HandleFunc("/api/live", h.handleLive)
	mux.HandleFunc("/api/config", h.handleGetConfig)
	mux.HandleFunc("/api/config/update", h.handleSetConfig)
	return mux
}

// Listen binds the server address. Start serves on the returned listener.
func (w *WebServer) Listen() (net.Listener, error) {
	return net.Listen("tcp", w.srv.Addr)
}

// Start serves on ln and shuts down when ctx is canceled.
func (w *WebServer) Start(ctx context.Context, ln net.Listener) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := w.srv.Shutdown(shutdownCtx); err != nil {
			w.logger.Warn("shutdown", logging.F("error", err))
		}
	}()

	if err := w.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		w.logger.Error("serve", logging.F("error", err))
	}
}

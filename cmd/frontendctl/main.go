// Command frontendctl configures the radio front end once, optionally holds
// it enabled while serving read-only status, and quiesces it on exit.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rjboer/sdrfront/internal/frontend"
	"github.com/rjboer/sdrfront/internal/logging"
	"github.com/rjboer/sdrfront/internal/mdns"
	"github.com/rjboer/sdrfront/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "frontendctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, lookup func(string) (string, bool)) error {
	configPath := envString(lookup, "FRONTEND_CONFIG", "frontend.json")
	persistentCfg, err := loadOrCreateConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg, err := parseConfig(args, lookup, persistentCfg, stderr)
	if err != nil {
		return err
	}
	logger, err := logging.Parse(cfg.logLevel, cfg.logFormat, stderr)
	if err != nil {
		return err
	}
	if err := saveConfig(configPath, persistentFromCLI(cfg)); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	logging.SetDefault(logger)

	if cfg.discover > 0 {
		return discover(ctx, stdout, cfg.discover)
	}

	be, err := selectBackend(cfg, logger)
	if err != nil {
		return fmt.Errorf("select backend: %w", err)
	}
	defer func() {
		if err := be.close(); err != nil {
			logger.Warn("close backend", logging.F("error", err))
		}
	}()

	revision, _ := invertTable(cfg.revision)
	reporters := telemetry.MultiReporter{telemetry.NewStdoutReporter(logger)}
	var hub *telemetry.Hub
	if cfg.hold && cfg.webAddr != "" {
		hub = telemetry.NewHub(500, logger)
		reporters = append(reporters, hub)
	}

	ctrl := frontend.New(be.stages,
		frontend.WithLogger(logger),
		frontend.WithReporter(reporters),
		frontend.WithBasebandInvert(revision),
	)
	ctrl.Init()
	defer ctrl.Disable()

	tuneErr := ctrl.Enable(cfg.configuration())
	ctrl.SetTXGain(int8(cfg.txGain))
	ctrl.SetAntennaBias(cfg.antennaBias)
	if tuneErr != nil {
		return tuneErr
	}

	if cfg.dump {
		if err := dumpRegisters(stdout, ctrl); err != nil {
			return err
		}
	}
	if err := json.NewEncoder(stdout).Encode(ctrl.State()); err != nil {
		return err
	}

	if !cfg.hold {
		return nil
	}
	if hub != nil {
		if err := serveStatus(ctx, cfg, hub, logger); err != nil {
			return err
		}
	}
	logger.Info("holding front end enabled (Ctrl+C to stop)")
	<-ctx.Done()
	return nil
}

func serveStatus(ctx context.Context, cfg cliConfig, hub *telemetry.Hub, logger logging.Logger) error {
	srv := telemetry.NewWebServer(cfg.webAddr, hub, logger)
	ln, err := srv.Listen()
	if err != nil {
		return fmt.Errorf("status server: %w", err)
	}
	go srv.Start(ctx, ln)
	logger.Info("status server listening", logging.F("addr", ln.Addr().String()))

	if !cfg.advertise {
		return nil
	}
	port := ln.Addr().(*net.TCPAddr).Port
	host, _ := os.Hostname()
	stopAdvert, err := mdns.Advertise(announcement(cfg, host, port))
	if err != nil {
		logger.Warn("mdns advertise", logging.F("error", err))
		return nil
	}
	go func() {
		<-ctx.Done()
		stopAdvert()
	}()
	return nil
}

func announcement(cfg cliConfig, host string, port int) mdns.Announcement {
	return mdns.Announcement{
		Instance: "frontendctl on " + host,
		Port:     port,
		Board:    cfg.hardware.Board,
		Revision: cfg.revision,
	}
}

func discover(ctx context.Context, w io.Writer, window time.Duration) error {
	hosts, err := mdns.Discover(ctx, window)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	for _, h := range hosts {
		addr := h.Hostname
		if len(h.Addresses) > 0 {
			addr = h.Addresses[0].String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", h.Instance, net.JoinHostPort(addr, strconv.Itoa(h.Port)), strings.Join(h.TXT, ","))
	}
	return nil
}

func dumpRegisters(w io.Writer, ctrl *frontend.Controller) error {
	for _, id := range []frontend.StageID{frontend.StageFirstMixer, frontend.StageSecondIF} {
		for n := uint(0); n < 6; n++ {
			v, err := ctrl.ReadRegister(id, n)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s[%d] = 0x%08x\n", id, n, v)
		}
	}
	fmt.Fprintf(w, "temp_sense = %d\n", ctrl.TempSense())
	return nil
}

// Command light-controller drives the status LED and push-button of a light
// controller and bridges them to the mesh side over MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sweeney/light-controller/internal/config"
	"github.com/sweeney/light-controller/internal/device"
	"github.com/sweeney/light-controller/internal/events"
	"github.com/sweeney/light-controller/internal/gpio"
	"github.com/sweeney/light-controller/internal/led"
	"github.com/sweeney/light-controller/internal/logger"
	"github.com/sweeney/light-controller/internal/metrics"
	"github.com/sweeney/light-controller/internal/mqtt"
	"github.com/sweeney/light-controller/internal/status"
	"github.com/sweeney/light-controller/internal/ui"
	"github.com/sweeney/light-controller/internal/web"
)

func main() {
	configPath := flag.String("config", "/etc/light-controller.toml", "Configuration file (defaults are used if it does not exist)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", `HTTP status address (overrides config, "off" disables)`)
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	printState := flag.Bool("print-state", false, "Print current button state and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: load config: %v", err)
	}
	applyFlags(&cfg, *broker, *httpAddr, *logLevel)

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyFlags overrides configuration values given on the command line.
func applyFlags(cfg *config.Config, broker, httpAddr, logLevel string) {
	if broker != "" {
		cfg.MQTT.Broker = broker
	}
	switch httpAddr {
	case "":
	case "off":
		cfg.HTTP.Addr = ""
	default:
		cfg.HTTP.Addr = httpAddr
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
}

func run(cfg config.Config, printState bool) error {
	lg, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		return err
	}

	// Initialize GPIO
	sink := &edgeSink{}
	button, err := gpio.NewRealButton(cfg.Button.Chip, cfg.Button.Pin, cfg.Button.ActiveLow, sink.handle)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer button.Close()

	// Print state mode
	if printState {
		pressed, err := button.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Printf("Button: %s\n", status.ButtonState(pressed))
		return nil
	}

	driver, err := led.NewSysfsDriver(cfg.LED.SysfsRoot, cfg.LED.Name)
	if err != nil {
		return fmt.Errorf("init led: %w", err)
	}
	defer driver.Close()

	tracker := status.NewTracker(time.Now(), statusConfig(cfg))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Initialize MQTT
	client, err := mqtt.NewRealClient(mqtt.Options{
		Broker:             cfg.MQTT.Broker,
		ClientID:           cfg.MQTT.ClientID,
		Topics:             mqtt.Topics{Prefix: cfg.MQTT.Prefix},
		OnConnectionChange: tracker.SetMQTTConnected,
	}, lg)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer client.Close()

	a, err := wire(cfg, button, sink, driver, client, tracker, lg)
	if err != nil {
		return err
	}
	defer a.close()

	// Publish startup event with full status snapshot
	publishSystem(client, tracker, "STARTUP", "", lg)

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, a.metrics.Handler())
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				lg.WithError(err).Error("HTTP server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		lg.WithField("addr", cfg.HTTP.Addr).Info("HTTP status server listening")
	}

	lg.With(logger.Fields{
		"chip":   cfg.Button.Chip,
		"pin":    cfg.Button.Pin,
		"led":    cfg.LED.Name,
		"broker": cfg.MQTT.Broker,
		"action": cfg.Device.PressAction,
	}).Info("Started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(a.ui, client, tracker, sigCh, lg)
}

// edgeSink forwards button edges to the UI once it exists, so the line can
// be requested (and its level read) before the UI is built.
type edgeSink struct {
	ui atomic.Pointer[ui.UserInterface]
}

func (s *edgeSink) handle(active bool) {
	if u := s.ui.Load(); u != nil {
		u.Interrupt(active)
	}
}

// client is what the daemon needs from the broker connection.
type client interface {
	mqtt.Publisher
	mqtt.Subscriber
}

type app struct {
	ui      *ui.UserInterface
	device  *device.Device
	metrics *metrics.Metrics
	bus     *events.Bus
	stop    func()
}

func (a *app) close() {
	a.stop()
	a.bus.Close()
}

// wire builds the UI worker and device facade on top of the given hardware
// and broker connection.
func wire(cfg config.Config, button gpio.Button, sink *edgeSink, driver led.Driver, c client, tracker *status.Tracker, lg *logger.Log) (*app, error) {
	level, err := button.Read()
	if err != nil {
		return nil, fmt.Errorf("read gpio: %w", err)
	}

	m := metrics.New()
	bus := events.New()

	u := ui.New(ui.Config{
		LED:             driver,
		Brightness:      cfg.LED.Brightness,
		PressDebounce:   cfg.Button.PressDebounce,
		ReleaseDebounce: cfg.Button.ReleaseDebounce,
		InitialLevel:    level,
		Log:             lg,
		Metrics:         m,
		Tracker:         tracker,
		Bus:             bus,
	})
	sink.ui.Store(u)

	// Catch an edge that arrived before the sink was connected.
	if now, err := button.Read(); err == nil && now != level {
		u.Interrupt(now)
	}

	topics := mqtt.Topics{Prefix: cfg.MQTT.Prefix}
	dev := device.New(device.Config{
		UI:          u,
		Bus:         bus,
		Tracker:     tracker,
		Topics:      topics,
		PressAction: cfg.Device.PressAction,
		Log:         lg,
	})
	u.Attach(dev)

	stop := device.Forward(bus, c, lg)
	if err := dev.Subscribe(c); err != nil {
		stop()
		bus.Close()
		return nil, err
	}

	return &app{ui: u, device: dev, metrics: m, bus: bus, stop: stop}, nil
}

// worker is the part of the UI the main loop drives.
type worker interface {
	Run(ctx context.Context) error
}

// runLoop runs the UI worker until a signal arrives, then publishes the
// shutdown event.
func runLoop(w worker, publisher mqtt.Publisher, tracker *status.Tracker, sig <-chan os.Signal, lg *logger.Log) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case s := <-sig:
		lg.WithField("signal", s).Info("Shutting down")
		cancel()
		<-done
		publishSystem(publisher, tracker, "SHUTDOWN", signalName(s), lg)
		return nil

	case err := <-done:
		return fmt.Errorf("ui worker: %w", err)
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

func publishSystem(publisher mqtt.Publisher, tracker *status.Tracker, event, reason string, lg *logger.Log) {
	snap := tracker.Snapshot()
	ev := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	}
	if err := publisher.PublishSystem(ev); err != nil {
		lg.WithError(err).WithField("event", event).Warn("Failed to publish system event")
		return
	}
	lg.WithField("event", event).Info("Published system event")
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		Chip:              cfg.Button.Chip,
		Pin:               cfg.Button.Pin,
		ActiveLow:         cfg.Button.ActiveLow,
		PressDebounceMs:   cfg.Button.PressDebounce.Milliseconds(),
		ReleaseDebounceMs: cfg.Button.ReleaseDebounce.Milliseconds(),
		LED:               cfg.LED.Name,
		Brightness:        cfg.LED.Brightness,
		Broker:            cfg.MQTT.Broker,
		Prefix:            cfg.MQTT.Prefix,
		HTTPAddr:          cfg.HTTP.Addr,
		PressAction:       cfg.Device.PressAction,
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

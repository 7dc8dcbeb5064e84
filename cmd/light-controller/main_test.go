package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/light-controller/internal/config"
	"github.com/sweeney/light-controller/internal/gpio"
	"github.com/sweeney/light-controller/internal/led"
	"github.com/sweeney/light-controller/internal/logger"
	"github.com/sweeney/light-controller/internal/logic"
	"github.com/sweeney/light-controller/internal/mqtt"
	"github.com/sweeney/light-controller/internal/status"
)

// TestEnvVarNames verifies the env var constants match what pi-helper writes
// to /run/pi-helper.env.
func TestEnvVarNames(t *testing.T) {
	want := map[string]string{
		"NETWORK_TYPE":        envNetworkType,
		"NETWORK_IP":          envNetworkIP,
		"NETWORK_STATUS":      envNetworkStatus,
		"NETWORK_GATEWAY":     envNetworkGateway,
		"NETWORK_WIFI_STATUS": envNetworkWifiStatus,
		"NETWORK_WIFI_SSID":   envNetworkWifiSSID,
	}
	for canonical, got := range want {
		if got != canonical {
			t.Errorf("env var constant: got %q, want %q", got, canonical)
		}
	}
}

func TestReadNetworkInfo(t *testing.T) {
	if info := readNetworkInfo(); info != nil {
		t.Errorf("expected nil when NETWORK_STATUS is unset, got %+v", info)
	}

	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkIP, "192.168.1.100")
	t.Setenv(envNetworkWifiSSID, "MyNetwork")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo")
	}
	if info.Status != "connected" || info.IP != "192.168.1.100" || info.SSID != "MyNetwork" {
		t.Errorf("unexpected info %+v", info)
	}
	if info.Type != "" {
		t.Errorf("Type: got %q, want empty", info.Type)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name                       string
		broker, httpAddr, logLevel string
		wantBroker, wantHTTP       string
		wantLevel                  string
	}{
		{"no overrides", "", "", "", "tcp://127.0.0.1:1883", ":80", "info"},
		{"broker", "tcp://10.0.0.2:1883", "", "", "tcp://10.0.0.2:1883", ":80", "info"},
		{"http", "", ":8080", "", "tcp://127.0.0.1:1883", ":8080", "info"},
		{"http off", "", "off", "", "tcp://127.0.0.1:1883", "", "info"},
		{"log level", "", "", "debug", "tcp://127.0.0.1:1883", ":80", "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			applyFlags(&cfg, tt.broker, tt.httpAddr, tt.logLevel)
			if cfg.MQTT.Broker != tt.wantBroker {
				t.Errorf("broker: got %q, want %q", cfg.MQTT.Broker, tt.wantBroker)
			}
			if cfg.HTTP.Addr != tt.wantHTTP {
				t.Errorf("http: got %q, want %q", cfg.HTTP.Addr, tt.wantHTTP)
			}
			if cfg.Log.Level != tt.wantLevel {
				t.Errorf("level: got %q, want %q", cfg.Log.Level, tt.wantLevel)
			}
		})
	}
}

func TestSignalName(t *testing.T) {
	if got := signalName(syscall.SIGINT); got != "SIGINT" {
		t.Errorf("got %q, want SIGINT", got)
	}
	if got := signalName(syscall.SIGTERM); got != "SIGTERM" {
		t.Errorf("got %q, want SIGTERM", got)
	}
	if got := signalName(syscall.SIGHUP); got != "UNKNOWN" {
		t.Errorf("got %q, want UNKNOWN", got)
	}
}

func TestStatusConfig(t *testing.T) {
	sc := statusConfig(config.Default())
	if sc.PressDebounceMs != 100 || sc.ReleaseDebounceMs != 1000 {
		t.Errorf("debounce: got %d/%d, want 100/1000", sc.PressDebounceMs, sc.ReleaseDebounceMs)
	}
	if sc.PressAction != config.ActionToggle {
		t.Errorf("press action: got %q", sc.PressAction)
	}
}

// --- runLoop tests ---

type fakeWorker struct {
	err     error
	stopped chan struct{}
}

func (w *fakeWorker) Run(ctx context.Context) error {
	if w.err != nil {
		return w.err
	}
	<-ctx.Done()
	close(w.stopped)
	return ctx.Err()
}

func TestRunLoopShutdown(t *testing.T) {
	for _, sig := range []os.Signal{syscall.SIGINT, syscall.SIGTERM} {
		t.Run(signalName(sig), func(t *testing.T) {
			w := &fakeWorker{stopped: make(chan struct{})}
			pub := mqtt.NewFakePublisher()
			tracker := status.NewTracker(time.Now(), status.Config{Broker: "tcp://test:1883"})
			sigCh := make(chan os.Signal, 1)
			sigCh <- sig

			if err := runLoop(w, pub, tracker, sigCh, logger.Discard()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			select {
			case <-w.stopped:
			default:
				t.Error("worker was not stopped before returning")
			}

			events := pub.Systems()
			if len(events) != 1 {
				t.Fatalf("expected 1 system event, got %d", len(events))
			}
			if events[0].Event != "SHUTDOWN" || events[0].Reason != signalName(sig) || !events[0].Retained {
				t.Errorf("unexpected event %+v", events[0])
			}

			var parsed status.StatusJSON
			if err := json.Unmarshal(pub.SystemPayloads[0], &parsed); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if parsed.Status.Reason != signalName(sig) {
				t.Errorf("payload reason: got %q", parsed.Status.Reason)
			}
			if parsed.Status.MQTT.Broker != "tcp://test:1883" {
				t.Errorf("payload broker: got %q", parsed.Status.MQTT.Broker)
			}
		})
	}
}

func TestRunLoopWorkerError(t *testing.T) {
	w := &fakeWorker{err: errors.New("boom")}
	pub := mqtt.NewFakePublisher()
	tracker := status.NewTracker(time.Now(), status.Config{})

	err := runLoop(w, pub, tracker, make(chan os.Signal), logger.Discard())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(pub.Systems()) != 0 {
		t.Error("no shutdown event expected on worker failure")
	}
}

func TestRunLoopShutdownPublishFailure(t *testing.T) {
	w := &fakeWorker{stopped: make(chan struct{})}
	pub := mqtt.NewFakePublisher()
	pub.PublishError = errors.New("offline")
	sigCh := make(chan os.Signal, 1)
	sigCh <- syscall.SIGTERM

	if err := runLoop(w, pub, status.NewTracker(time.Now(), status.Config{}), sigCh, logger.Discard()); err != nil {
		t.Errorf("publish failure should not fail shutdown: %v", err)
	}
}

// --- wiring ---

type fakeClient struct {
	*mqtt.FakePublisher
	*mqtt.FakeSubscriber
}

type wired struct {
	app     *app
	button  *gpio.FakeButton
	driver  *led.FakeDriver
	client  fakeClient
	tracker *status.Tracker
}

func newWired(t *testing.T, action string) wired {
	t.Helper()
	cfg := config.Default()
	cfg.MQTT.Prefix = "hall"
	cfg.Button.PressDebounce = 10 * time.Millisecond
	cfg.Button.ReleaseDebounce = 20 * time.Millisecond
	cfg.Device.PressAction = action

	sink := &edgeSink{}
	button := gpio.NewFakeButton(sink.handle)
	driver := led.NewFakeDriver()
	c := fakeClient{mqtt.NewFakePublisher(), mqtt.NewFakeSubscriber()}
	tracker := status.NewTracker(time.Now(), statusConfig(cfg))

	a, err := wire(cfg, button, sink, driver, c, tracker, logger.Discard())
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	t.Cleanup(a.close)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.ui.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return wired{app: a, button: button, driver: driver, client: c, tracker: tracker}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestWireButtonToggle(t *testing.T) {
	w := newWired(t, config.ActionToggle)

	w.button.Press()
	waitFor(t, "button publish", func() bool { return len(w.client.Buttons()) == 1 })
	waitFor(t, "light publish", func() bool { return len(w.client.Lights()) == 1 })

	if b := w.client.Buttons()[0]; b.Presses != 1 || b.Action != config.ActionToggle {
		t.Errorf("unexpected button event %+v", b)
	}
	if l := w.client.Lights()[0]; !l.On || l.Source != "local" {
		t.Errorf("unexpected light event %+v", l)
	}
	if !w.app.device.LightOn() {
		t.Error("light should be on")
	}
	waitFor(t, "local switch colour", func() bool {
		last, _ := w.driver.Last()
		return last.Colour == logic.ColourYellow
	})
}

func TestWireButtonJoin(t *testing.T) {
	w := newWired(t, config.ActionJoin)

	w.button.Press()
	waitFor(t, "join blink", func() bool {
		return w.tracker.Snapshot().Event == logic.EventNetworkConnect
	})
	waitFor(t, "button publish", func() bool { return len(w.client.Buttons()) == 1 })
	if b := w.client.Buttons()[0]; b.Action != config.ActionJoin {
		t.Errorf("expected join action, got %q", b.Action)
	}
}

func TestWireNotifications(t *testing.T) {
	w := newWired(t, config.ActionToggle)

	if n := w.client.Deliver("hall/notify/identify", []byte(`{"seconds":5}`)); n != 1 {
		t.Fatalf("expected the device to be subscribed, got %d handlers", n)
	}
	waitFor(t, "identify", func() bool {
		return w.tracker.Snapshot().Event == logic.EventIdentify
	})
	waitFor(t, "LED publish", func() bool {
		for _, e := range w.client.LEDs() {
			if e.Event == "IDENTIFY" {
				return true
			}
		}
		return false
	})

	w.client.Deliver("hall/notify/network", []byte(`{"configured":true,"state":"FAILED"}`))
	waitFor(t, "network failure", func() bool {
		return w.tracker.Snapshot().Event == logic.EventNetworkConfiguredFailed
	})
}

func TestWireButtonHeldAtStartup(t *testing.T) {
	cfg := config.Default()
	sink := &edgeSink{}
	button := gpio.NewFakeButton(sink.handle)
	button.Press()

	c := fakeClient{mqtt.NewFakePublisher(), mqtt.NewFakeSubscriber()}
	a, err := wire(cfg, button, sink, led.NewFakeDriver(), c, status.NewTracker(time.Now(), status.Config{}), logger.Discard())
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	defer a.close()

	if got := len(c.Buttons()); got != 0 {
		t.Errorf("held button should not count as a press, got %d", got)
	}
}

func TestWireReadError(t *testing.T) {
	button := gpio.NewFakeButton(nil)
	button.ReadError = errors.New("line busy")
	c := fakeClient{mqtt.NewFakePublisher(), mqtt.NewFakeSubscriber()}

	_, err := wire(config.Default(), button, &edgeSink{}, led.NewFakeDriver(), c, status.NewTracker(time.Now(), status.Config{}), logger.Discard())
	if err == nil {
		t.Error("expected error")
	}
}

func TestWireSubscribeError(t *testing.T) {
	sub := mqtt.NewFakeSubscriber()
	sub.SubscribeError = errors.New("not authorised")
	c := fakeClient{mqtt.NewFakePublisher(), sub}

	_, err := wire(config.Default(), gpio.NewFakeButton(nil), &edgeSink{}, led.NewFakeDriver(), c, status.NewTracker(time.Now(), status.Config{}), logger.Discard())
	if err == nil {
		t.Error("expected error")
	}
}

// Package config loads the daemon configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sweeney/light-controller/internal/gpio"
	"github.com/sweeney/light-controller/internal/led"
	"github.com/sweeney/light-controller/internal/logic"
)

// Config is the daemon configuration.
type Config struct {
	Button ButtonConf `toml:"button"`
	LED    LEDConf    `toml:"led"`
	MQTT   MQTTConf   `toml:"mqtt"`
	HTTP   HTTPConf   `toml:"http"`
	Log    LogConf    `toml:"log"`
	Device DeviceConf `toml:"device"`
}

// ButtonConf configures the push-button line.
type ButtonConf struct {
	Chip            string        `toml:"chip"`
	Pin             int           `toml:"pin"`
	ActiveLow       bool          `toml:"active_low"`
	PressDebounce   time.Duration `toml:"press_debounce"`
	ReleaseDebounce time.Duration `toml:"release_debounce"`
}

// LEDConf configures the status LED.
type LEDConf struct {
	Name       string `toml:"name"`
	Brightness uint8  `toml:"brightness"`
	SysfsRoot  string `toml:"sysfs_root"`
}

// MQTTConf configures the broker connection.
type MQTTConf struct {
	Broker   string `toml:"broker"`
	ClientID string `toml:"client_id"`
	Prefix   string `toml:"prefix"`
}

// HTTPConf configures the status server. An empty Addr disables it.
type HTTPConf struct {
	Addr string `toml:"addr"`
}

// LogConf configures logging.
type LogConf struct {
	Level string `toml:"level"`
}

// DeviceConf configures what a button press does.
type DeviceConf struct {
	PressAction string `toml:"press_action"`
}

// Press actions.
const (
	ActionToggle = "toggle"
	ActionJoin   = "join"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Button: ButtonConf{
			Chip:            gpio.DefaultChip,
			Pin:             gpio.DefaultPin,
			ActiveLow:       true,
			PressDebounce:   logic.DefaultPressDebounce,
			ReleaseDebounce: logic.DefaultReleaseDebounce,
		},
		LED: LEDConf{
			Name:       "rgb:status",
			Brightness: 32,
			SysfsRoot:  led.DefaultSysfsRoot,
		},
		MQTT: MQTTConf{
			Broker:   "tcp://127.0.0.1:1883",
			ClientID: "light-controller",
			Prefix:   "light-controller",
		},
		HTTP:   HTTPConf{Addr: ":80"},
		Log:    LogConf{Level: "info"},
		Device: DeviceConf{PressAction: ActionToggle},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is not
// an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("parse %s: unknown keys %v", path, undecoded)
	}

	return cfg, cfg.Validate()
}

// Validate checks values that the rest of the daemon relies on.
func (c Config) Validate() error {
	if c.Button.PressDebounce <= 0 || c.Button.ReleaseDebounce <= 0 {
		return errors.New("button debounce windows must be positive")
	}
	if c.Button.Pin < 0 {
		return fmt.Errorf("invalid button pin %d", c.Button.Pin)
	}
	switch c.Device.PressAction {
	case ActionToggle, ActionJoin:
	default:
		return fmt.Errorf("unknown press_action %q", c.Device.PressAction)
	}
	if c.MQTT.Prefix == "" {
		return errors.New("mqtt prefix must not be empty")
	}
	return nil
}

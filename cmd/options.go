// Package cmd holds the tf96ctl command-line options and the one-shot
// subcommands that talk to the chip without starting the API server.
package cmd

import (
	"time"

	"github.com/smazurov/tf96ctl/internal/led"
	"github.com/smazurov/tf96ctl/internal/logging"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8096" toml:"server.port" env:"SERVER_PORT"`

	// Device settings
	DevicePort             string `help:"Serial device connected to the TF96" default:"/dev/ttyACM0" toml:"device.port" env:"DEVICE_PORT"`
	DeviceBaud             int    `help:"Serial baud rate" default:"115200" toml:"device.baud" env:"DEVICE_BAUD"`
	DeviceReadTimeoutMs    int    `help:"Register read timeout in milliseconds" default:"1000" toml:"device.read_timeout_ms" env:"DEVICE_READ_TIMEOUT_MS"`
	DeviceSim              bool   `help:"Use an in-memory chip instead of the serial port" default:"false" toml:"device.sim" env:"DEVICE_SIM"`
	DeviceChannelMin       int    `help:"Lowest accepted channel intensity (0 or 1)" default:"0" toml:"device.channel_min" env:"DEVICE_CHANNEL_MIN"`
	DeviceDefaultIntensity int    `help:"Intensity applied to every channel at startup" default:"2" toml:"device.default_intensity" env:"DEVICE_DEFAULT_INTENSITY"`
	DeviceMasterIntensity  int    `help:"Master intensity applied at startup" default:"15" toml:"device.master_intensity" env:"DEVICE_MASTER_INTENSITY"`
	DeviceDumpRegisters    bool   `help:"Log registers 0x00-0x0f after startup" default:"true" toml:"device.dump_registers" env:"DEVICE_DUMP_REGISTERS"`

	// Blink settings
	BlinkEnabled        bool `help:"Start with blinking enabled" default:"false" toml:"blink.enabled" env:"BLINK_ENABLED"`
	BlinkControl        int  `help:"Blink speed control, 0 (slow) to 10 (fastest)" default:"0" toml:"blink.control" env:"BLINK_CONTROL"`
	BlinkTickIntervalMs int  `help:"Blink scheduler tick interval in milliseconds" default:"10" toml:"blink.tick_interval_ms" env:"BLINK_TICK_INTERVAL_MS"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Update settings
	UpdateRepository string `help:"GitHub repository checked for releases" default:"smazurov/tf96ctl" toml:"update.repository" env:"UPDATE_REPOSITORY"`
	UpdatePrerelease bool   `help:"Consider prereleases when checking for updates" default:"false" toml:"update.prerelease" env:"UPDATE_PRERELEASE"`

	// Logging settings
	LoggingLevel    string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingProtocol string `help:"Wire protocol logging level" default:"info" toml:"logging.protocol" env:"LOGGING_PROTOCOL"`
	LoggingSerial   string `help:"Serial port logging level" default:"info" toml:"logging.serial" env:"LOGGING_SERIAL"`
	LoggingLED      string `help:"LED model logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
	LoggingAPI      string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP     string `help:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
	LoggingConfig   string `help:"Config watcher logging level" default:"info" toml:"logging.config" env:"LOGGING_CONFIG"`
	LoggingMetrics  string `help:"Metrics logging level" default:"info" toml:"logging.metrics" env:"LOGGING_METRICS"`
	LoggingUpdater  string `help:"Update checker logging level" default:"info" toml:"logging.updater" env:"LOGGING_UPDATER"`
}

// DeviceConfig returns the link settings for led.New.
func (o *Options) DeviceConfig() led.Config {
	return led.Config{
		Port:        o.DevicePort,
		BaudRate:    o.DeviceBaud,
		ReadTimeout: time.Duration(o.DeviceReadTimeoutMs) * time.Millisecond,
		Sim:         o.DeviceSim,
		ChannelMin:  o.DeviceChannelMin,
	}
}

// LogConfig returns the logging settings.
func (o *Options) LogConfig() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Modules: map[string]string{
			"protocol": o.LoggingProtocol,
			"serial":   o.LoggingSerial,
			"led":      o.LoggingLED,
			"api":      o.LoggingAPI,
			"http":     o.LoggingHTTP,
			"config":   o.LoggingConfig,
			"metrics":  o.LoggingMetrics,
			"updater":  o.LoggingUpdater,
		},
	}
}

// TickInterval is the blink scheduler period, never below one millisecond.
func (o *Options) TickInterval() time.Duration {
	if o.BlinkTickIntervalMs < 1 {
		return time.Millisecond
	}
	return time.Duration(o.BlinkTickIntervalMs) * time.Millisecond
}

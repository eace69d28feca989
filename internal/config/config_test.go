package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/cobra"
)

type deviceOptions struct {
	Config string `help:"Config file path"`

	DevicePort          string   `toml:"device.port" env:"DEVICE_PORT"`
	DeviceSim           bool     `toml:"device.sim" env:"DEVICE_SIM"`
	DeviceBaud          int      `toml:"device.baud" env:"DEVICE_BAUD"`
	DeviceReadTimeoutMs int64    `toml:"device.read_timeout_ms" env:"DEVICE_READ_TIMEOUT_MS"`
	BlinkControl        int      `toml:"blink.control" env:"BLINK_CONTROL"`
	Gamma               float64  `toml:"color.gamma" env:"COLOR_GAMMA"`
	Groups              []string `toml:"color.groups" env:"COLOR_GROUPS"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeConfig(t, `
[device]
port = "/dev/ttyUSB3"
sim = true
baud = 9600
read_timeout_ms = 250

[blink]
control = 7

[color]
gamma = 2
groups = ["led1", "signal"]
`)

	opts := &deviceOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.DevicePort != "/dev/ttyUSB3" {
		t.Errorf("DevicePort = %q, want /dev/ttyUSB3", opts.DevicePort)
	}
	if !opts.DeviceSim {
		t.Error("DeviceSim = false, want true")
	}
	if opts.DeviceBaud != 9600 {
		t.Errorf("DeviceBaud = %d, want 9600", opts.DeviceBaud)
	}
	if opts.DeviceReadTimeoutMs != 250 {
		t.Errorf("DeviceReadTimeoutMs = %d, want 250", opts.DeviceReadTimeoutMs)
	}
	if opts.BlinkControl != 7 {
		t.Errorf("BlinkControl = %d, want 7", opts.BlinkControl)
	}
	if opts.Gamma != 2 {
		t.Errorf("Gamma = %v, want 2", opts.Gamma)
	}
	if want := []string{"led1", "signal"}; !reflect.DeepEqual(opts.Groups, want) {
		t.Errorf("Groups = %v, want %v", opts.Groups, want)
	}
}

func TestLoadConfigFromEnvVars(t *testing.T) {
	t.Setenv("TF96_DEVICE_PORT", "/dev/ttyS1")
	t.Setenv("TF96_DEVICE_SIM", "true")
	t.Setenv("TF96_DEVICE_BAUD", "57600")
	t.Setenv("TF96_BLINK_CONTROL", "0x3")
	t.Setenv("TF96_COLOR_GAMMA", "1.8")
	t.Setenv("TF96_COLOR_GROUPS", "led2, led3")

	opts := &deviceOptions{}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.DevicePort != "/dev/ttyS1" {
		t.Errorf("DevicePort = %q, want /dev/ttyS1", opts.DevicePort)
	}
	if !opts.DeviceSim {
		t.Error("DeviceSim = false, want true")
	}
	if opts.DeviceBaud != 57600 {
		t.Errorf("DeviceBaud = %d, want 57600", opts.DeviceBaud)
	}
	if opts.BlinkControl != 3 {
		t.Errorf("BlinkControl = %d, want 3", opts.BlinkControl)
	}
	if opts.Gamma != 1.8 {
		t.Errorf("Gamma = %v, want 1.8", opts.Gamma)
	}
	if want := []string{"led2", "led3"}; !reflect.DeepEqual(opts.Groups, want) {
		t.Errorf("Groups = %v, want %v", opts.Groups, want)
	}
}

func TestLoadConfigEnvOverridesToml(t *testing.T) {
	path := writeConfig(t, `
[device]
port = "/dev/ttyUSB0"
baud = 9600
`)
	t.Setenv("TF96_DEVICE_PORT", "/dev/ttyACM1")

	opts := &deviceOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.DevicePort != "/dev/ttyACM1" {
		t.Errorf("DevicePort = %q, want env override", opts.DevicePort)
	}
	if opts.DeviceBaud != 9600 {
		t.Errorf("DeviceBaud = %d, want 9600 from TOML", opts.DeviceBaud)
	}
}

func TestLoadConfigChangedFlagsWin(t *testing.T) {
	path := writeConfig(t, `
[device]
port = "/dev/ttyUSB0"
baud = 9600
`)
	t.Setenv("TF96_DEVICE_BAUD", "19200")

	opts := &deviceOptions{Config: path}
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&opts.DevicePort, "device-port", "", "")
	cmd.Flags().IntVar(&opts.DeviceBaud, "device-baud", 115200, "")
	if err := cmd.Flags().Parse([]string{"--device-port", "/dev/cli", "--device-baud", "4800"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if err := LoadConfig(opts, cmd); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.DevicePort != "/dev/cli" {
		t.Errorf("DevicePort = %q, want CLI value", opts.DevicePort)
	}
	if opts.DeviceBaud != 4800 {
		t.Errorf("DeviceBaud = %d, want CLI value over env", opts.DeviceBaud)
	}
}

func TestLoadConfigTypeMismatch(t *testing.T) {
	path := writeConfig(t, `
[device]
baud = "fast"
`)
	if err := LoadConfig(&deviceOptions{Config: path}, nil); err == nil {
		t.Fatal("expected error for string in integer field")
	}

	t.Setenv("TF96_DEVICE_SIM", "maybe")
	if err := LoadConfig(&deviceOptions{}, nil); err == nil {
		t.Fatal("expected error for unparsable env bool")
	}
}

func TestLoadConfigRejectsNonPointer(t *testing.T) {
	if err := LoadConfig(deviceOptions{}, nil); err == nil {
		t.Fatal("expected error for non-pointer options")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	opts := &deviceOptions{Config: filepath.Join(t.TempDir(), "missing.toml")}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig should not fail for missing file: %v", err)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeConfig(t, "[device\nport = ")
	if err := LoadConfig(&deviceOptions{Config: path}, nil); err == nil {
		t.Fatal("LoadConfig should fail for invalid TOML")
	}
}

func TestGetNestedValue(t *testing.T) {
	data := map[string]any{
		"device": map[string]any{
			"serial": map[string]any{"path": "/dev/ttyACM0"},
			"sim":    true,
		},
		"root": "value",
	}

	tests := []struct {
		path string
		want any
	}{
		{"root", "value"},
		{"device.sim", true},
		{"device.serial.path", "/dev/ttyACM0"},
		{"device.missing", nil},
		{"root.child", nil},
		{"nope.nope", nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := getNestedValue(data, tt.path); got != tt.want {
				t.Errorf("getNestedValue(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := map[string]string{
		"Port":                   "port",
		"DevicePort":             "device-port",
		"DeviceReadTimeoutMs":    "device-read-timeout-ms",
		"DeviceDefaultIntensity": "device-default-intensity",
		"LoggingAPI":             "logging-api",
		"LoggingHTTP":            "logging-http",
		"LoggingLED":             "logging-led",
		"SSEIntervalMs":          "sse-interval-ms",
	}
	for in, want := range tests {
		if got := fieldNameToFlag(in); got != want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadLoggingModuleLevels(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "warn"
format = "json"
protocol = "debug"

[logging.modules]
led = "error"
api = "debug"
`)

	cfg := LoadLoggingConfig(path)
	if cfg.Level != "warn" || cfg.Format != "json" {
		t.Errorf("Level/Format = %q/%q, want warn/json", cfg.Level, cfg.Format)
	}
	want := map[string]string{"protocol": "debug", "led": "error", "api": "debug"}
	if !reflect.DeepEqual(cfg.Modules, want) {
		t.Errorf("Modules = %v, want %v", cfg.Modules, want)
	}
}

func TestLoadLoggingConfigDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.toml")} {
		cfg := LoadLoggingConfig(path)
		if cfg.Level != "info" || cfg.Format != "text" || len(cfg.Modules) != 0 {
			t.Errorf("LoadLoggingConfig(%q) = %+v, want defaults", path, cfg)
		}
	}
}

func TestLoadLiveConfig(t *testing.T) {
	path := writeConfig(t, `
[device]
port = "/dev/ttyACM0"
master_intensity = 9

[blink]
enabled = true

[logging]
level = "debug"
`)

	live, err := LoadLiveConfig(path)
	if err != nil {
		t.Fatalf("LoadLiveConfig failed: %v", err)
	}
	if live.BlinkEnabled == nil || !*live.BlinkEnabled {
		t.Errorf("BlinkEnabled = %v, want true", live.BlinkEnabled)
	}
	if live.BlinkControl != nil {
		t.Errorf("BlinkControl = %d, want absent", *live.BlinkControl)
	}
	if live.MasterIntensity == nil || *live.MasterIntensity != 9 {
		t.Errorf("MasterIntensity = %v, want 9", live.MasterIntensity)
	}
	if live.Logging == nil || live.Logging.Level != "debug" {
		t.Errorf("Logging = %+v, want level debug", live.Logging)
	}
}

func TestLoadLiveConfigWithoutLoggingTable(t *testing.T) {
	live, err := LoadLiveConfig(writeConfig(t, "[blink]\ncontrol = 3\n"))
	if err != nil {
		t.Fatalf("LoadLiveConfig failed: %v", err)
	}
	if live.BlinkControl == nil || *live.BlinkControl != 3 {
		t.Errorf("BlinkControl = %v, want 3", live.BlinkControl)
	}
	if live.Logging != nil {
		t.Errorf("Logging = %+v, want nil without a [logging] table", live.Logging)
	}
}

func TestLoadLiveConfigErrors(t *testing.T) {
	if _, err := LoadLiveConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadLiveConfig(writeConfig(t, "[blink\n")); err == nil {
		t.Error("expected error for invalid TOML")
	}
}

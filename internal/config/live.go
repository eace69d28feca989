package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/tf96ctl/internal/logging"
)

// LiveConfig is the subset of the config file applied while serving,
// without a restart. Nil pointers mean the key is absent and the running
// value is kept.
type LiveConfig struct {
	BlinkEnabled    *bool
	BlinkControl    *int
	MasterIntensity *int
	// Logging is nil when the file has no [logging] table.
	Logging *logging.Config
}

type liveFile struct {
	Blink struct {
		Enabled *bool `toml:"enabled"`
		Control *int  `toml:"control"`
	} `toml:"blink"`
	Device struct {
		MasterIntensity *int `toml:"master_intensity"`
	} `toml:"device"`
	Logging map[string]any `toml:"logging"`
}

// LoadLiveConfig reads the hot-reloadable keys from path.
func LoadLiveConfig(path string) (LiveConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LiveConfig{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var f liveFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return LiveConfig{}, fmt.Errorf("failed to parse TOML config %s: %w", path, err)
	}

	live := LiveConfig{
		BlinkEnabled:    f.Blink.Enabled,
		BlinkControl:    f.Blink.Control,
		MasterIntensity: f.Device.MasterIntensity,
	}
	if f.Logging != nil {
		logCfg := LoadLoggingConfig(path)
		live.Logging = &logCfg
	}
	return live, nil
}

package cmd

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/vernav/pkg/settings"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// Config is the merged vernav configuration: embedded defaults overlaid
// with an optional user file. Optional booleans are pointers so a user
// file can flip a default off.
type Config struct {
	App struct {
		BaseDir     string `yaml:"base_dir"`
		LivePreview *bool  `yaml:"live_preview"`
	} `yaml:"app"`
	Thumbnails struct {
		Enabled     *bool  `yaml:"enabled"`
		Width       int    `yaml:"width"`
		Height      int    `yaml:"height"`
		Reformat    string `yaml:"reformat"`
		FrameMode   string `yaml:"frame_mode"`
		CustomFrame int    `yaml:"custom_frame"`
		Workers     int    `yaml:"workers"`
		Capacity    int    `yaml:"capacity"`
	} `yaml:"thumbnails"`
	Apply struct {
		ChangeRange *bool `yaml:"change_range"`
		SetMissing  *bool `yaml:"set_missing"`
	} `yaml:"apply"`
	Sort struct {
		Key string `yaml:"key"`
	} `yaml:"sort"`
	Keys map[string]string `yaml:"keys"`
}

// loadMergedConfig decodes the embedded defaults, then overlays the user
// file at cfgPath when given. Fields absent from the user file keep their
// default values.
func loadMergedConfig(cfgPath string) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}
	if cfgPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", cfgPath, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", cfgPath, err)
	}
	return cfg, nil
}

// resolveConfigPath returns the explicit path if set, otherwise the XDG
// path ($XDG_CONFIG_HOME/vernav/config.yaml) or ~/.config/vernav/config.yaml
// if present.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	candidate := ""
	if xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

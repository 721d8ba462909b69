// Package config loads application settings from environment variables and
// an optional config file, under the DECKSCAN_ prefix.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the application's settings surface. Every field has an env
// binding: DECKSCAN_PORT, DECKSCAN_DATABASE_URL, and so on.
type Config struct {
	Port        int    `mapstructure:"port"`
	UploadDir   string `mapstructure:"upload_dir"`
	DatabaseURL string `mapstructure:"database_url"`

	VisionAPIKey    string  `mapstructure:"vision_api_key"`
	VisionPerMinute float64 `mapstructure:"vision_per_minute"`
	VisionBurst     int     `mapstructure:"vision_burst"`

	UpscaleTool        string `mapstructure:"upscale_tool"`
	UpscaleInterpreter string `mapstructure:"upscale_interpreter"`

	ZoneProfiles string `mapstructure:"zone_profiles"`

	WatchDir string `mapstructure:"watch_dir"`
}

// Load reads configuration from the environment, and from an optional yaml
// file when path is non-empty. Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DECKSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv can surface env-only values
	// through Unmarshal.
	v.SetDefault("port", 8080)
	v.SetDefault("upload_dir", "tmp/uploads")
	v.SetDefault("database_url", "")
	v.SetDefault("vision_api_key", "")
	v.SetDefault("vision_per_minute", 30)
	v.SetDefault("vision_burst", 5)
	v.SetDefault("upscale_tool", "")
	v.SetDefault("upscale_interpreter", "python3")
	v.SetDefault("zone_profiles", "")
	v.SetDefault("watch_dir", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

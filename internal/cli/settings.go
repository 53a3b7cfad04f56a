package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings are the CLI defaults, read from a settings file, SKYPROJ_* env
// vars and flags, in increasing priority.
type Settings struct {
	Site        string  `mapstructure:"site"`
	CacheDir    string  `mapstructure:"cache_dir"`
	RedisURL    string  `mapstructure:"redis_url"`
	CachePrefix string  `mapstructure:"cache_prefix"`
	Formats     string  `mapstructure:"formats"`
	Scale       float64 `mapstructure:"scale"`
	Background  string  `mapstructure:"background"`
	PlotConfig  string  `mapstructure:"plot_config"`
}

// newViper returns a viper instance with defaults and env binding. When path
// is empty, skyproj.toml is looked up in the working directory and the
// user's config directory.
func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetDefault("site", "")
	v.SetDefault("cache_dir", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("cache_prefix", "")
	v.SetDefault("formats", "svg")
	v.SetDefault("scale", 1.0)
	v.SetDefault("background", "white")
	v.SetDefault("plot_config", "")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, appName))
		}
	}

	v.SetEnvPrefix("SKYPROJ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// loadSettings reads settings from v. A missing settings file is not an
// error unless it was named explicitly.
func loadSettings(v *viper.Viper, explicit bool) (Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Settings{}, err
		}
	}
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

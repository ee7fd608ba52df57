package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the client's settings. Values come from defaults, an
// optional storefront.yaml and STOREFRONT_* environment variables, in
// increasing precedence.
type Config struct {
	APIBaseURL     string        `mapstructure:"api_base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CredentialFile string        `mapstructure:"credential_file"`
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
}

func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("api_base_url", "http://localhost:8080/api")
	v.SetDefault("request_timeout", 15*time.Second)
	v.SetDefault("search_debounce", 500*time.Millisecond)
	v.SetDefault("credential_file", defaultCredentialFile())

	v.SetConfigName("storefront")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "storefront"))
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func defaultCredentialFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "storefront", "token")
}

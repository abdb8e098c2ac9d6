package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // "local" uses the memory store
}

type FirestoreConfig struct {
	ProjectID string `mapstructure:"project_id"`
	AppID     string `mapstructure:"app_id"` // data partition under artifacts/{app_id}
}

type AuthConfig struct {
	Skip bool `mapstructure:"skip"` // local dev only
}

type AllocatorConfig struct {
	StateDir string `mapstructure:"state_dir"`
}

type ZakatConfig struct {
	// FallbackGoldPrice is used when the spot fetch fails, IDR per gram.
	FallbackGoldPrice int64 `mapstructure:"fallback_gold_price"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Firestore FirestoreConfig `mapstructure:"firestore"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Allocator AllocatorConfig `mapstructure:"allocator"`
	Zakat     ZakatConfig     `mapstructure:"zakat"`
}

// Load reads configuration from the given file path, defaulting to
// config.yaml in the working directory. Environment variables prefixed
// with DOMPET_ override file values, e.g. DOMPET_SERVER_PORT=9000.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetDefault("server.port", 8111)
	v.SetDefault("server.mode", "local")
	v.SetDefault("firestore.app_id", "dompet-keluarga")
	v.SetDefault("allocator.state_dir", "./data/allocator")
	v.SetDefault("zakat.fallback_gold_price", 700_000)

	v.SetEnvPrefix("DOMPET")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; defaults plus env cover local runs.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

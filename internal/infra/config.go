package infra

import (
	"errors"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/llenroc/Libra/internal/domain"
)

// InstrumentConfig declares one tracked trading pair. The instrument set is
// fixed at startup.
type InstrumentConfig struct {
	Symbol        string `yaml:"symbol"`
	VwapPrecision int32  `yaml:"vwap_precision"`
}

// Config holds the full application configuration. Secrets may be
// overridden through environment variables after the file is loaded.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		Gemini struct {
			WSURL     string `yaml:"ws_url"`
			RestURL   string `yaml:"rest_url"`
			APIKey    string `yaml:"api_key"`
			APISecret string `yaml:"api_secret"`
			Sandbox   bool   `yaml:"sandbox"`
		} `yaml:"gemini"`
	} `yaml:"api"`

	Instruments []InstrumentConfig `yaml:"instruments"`

	Heartbeat struct {
		StaleAfterMS    int `yaml:"stale_after_ms"`
		CheckIntervalMS int `yaml:"check_interval_ms"`
	} `yaml:"heartbeat"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	// Sandbox mode swaps in the sandbox endpoints wholesale.
	if cfg.API.Gemini.Sandbox {
		cfg.API.Gemini.WSURL = "wss://api.sandbox.gemini.com"
		cfg.API.Gemini.RestURL = "https://api.sandbox.gemini.com"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	g := &c.API.Gemini
	if !strings.HasPrefix(g.WSURL, "ws://") && !strings.HasPrefix(g.WSURL, "wss://") {
		return &domain.ConfigError{Field: "api.gemini.ws_url", Err: errors.New("must be a ws:// or wss:// URL")}
	}
	if !strings.HasPrefix(g.RestURL, "http://") && !strings.HasPrefix(g.RestURL, "https://") {
		return &domain.ConfigError{Field: "api.gemini.rest_url", Err: errors.New("must be an http(s) URL")}
	}
	if len(c.Instruments) == 0 {
		return &domain.ConfigError{Field: "instruments", Err: errors.New("at least one instrument is required")}
	}
	for _, inst := range c.Instruments {
		if inst.Symbol == "" {
			return &domain.ConfigError{Field: "instruments.symbol", Err: errors.New("symbol must not be empty")}
		}
		if inst.VwapPrecision < 0 {
			return &domain.ConfigError{Field: "instruments.vwap_precision", Err: errors.New("precision must be non-negative")}
		}
	}
	if c.Heartbeat.StaleAfterMS <= 0 {
		return &domain.ConfigError{Field: "heartbeat.stale_after_ms", Err: errors.New("must be positive")}
	}
	if c.Heartbeat.CheckIntervalMS <= 0 {
		return &domain.ConfigError{Field: "heartbeat.check_interval_ms", Err: errors.New("must be positive")}
	}
	return nil
}

// Symbols returns the configured instrument symbols in declaration order.
func (c *Config) Symbols() []string {
	symbols := make([]string, len(c.Instruments))
	for i, inst := range c.Instruments {
		symbols[i] = inst.Symbol
	}
	return symbols
}

// Precisions returns symbol -> VWAP rounding places.
func (c *Config) Precisions() map[string]int32 {
	precisions := make(map[string]int32, len(c.Instruments))
	for _, inst := range c.Instruments {
		precisions[inst.Symbol] = inst.VwapPrecision
	}
	return precisions
}

// overrideWithEnv overrides secrets from the environment when present.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("LIBRA_GEMINI_KEY"); key != "" {
		cfg.API.Gemini.APIKey = key
	}
	if secret := os.Getenv("LIBRA_GEMINI_SECRET"); secret != "" {
		cfg.API.Gemini.APISecret = secret
	}
}

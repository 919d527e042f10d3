package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielpatrickdp/persona-fusion/internal/creative"
	"github.com/danielpatrickdp/persona-fusion/internal/environment"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix namespaces environment overrides: log.level → PERSONA_LOG_LEVEL.
const EnvPrefix = "PERSONA"

// #region types

// Config is the resolved runtime configuration.
type Config struct {
	DBPath   string         `mapstructure:"db_path"`
	Log      LogConfig      `mapstructure:"log"`
	Weather  WeatherConfig  `mapstructure:"weather"`
	Profiles ProfilesConfig `mapstructure:"profiles"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Codec    CodecConfig    `mapstructure:"codec"`
	GenAI    GenAIConfig    `mapstructure:"genai"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// WeatherConfig points at an OpenWeather-compatible API. An empty APIKey
// means every weather lookup uses the fallback reading.
type WeatherConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ProfilesConfig points at the country profile service. An empty BaseURL
// selects the built-in static tables.
type ProfilesConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// CodecConfig addresses the gRPC creative service.
type CodecConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

// GenAIConfig enables direct image generation when no codec service runs.
type GenAIConfig struct {
	APIKey     string `mapstructure:"api_key"`
	ImageModel string `mapstructure:"image_model"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// #endregion types

// #region defaults

// DefaultConfig returns a config that runs fully offline: fallback weather,
// static profiles and placeholder portraits.
func DefaultConfig() *Config {
	return &Config{
		DBPath: "persona.db",
		Log:    LogConfig{Level: "info"},
		Weather: WeatherConfig{
			BaseURL: "https://api.openweathermap.org",
			Timeout: 5 * time.Second,
		},
		Profiles: ProfilesConfig{Timeout: 5 * time.Second},
		Cache:    CacheConfig{MaxEntries: environment.DefaultMaxEntries},
		Codec:    CodecConfig{Addr: "localhost:50051"},
		GenAI:    GenAIConfig{ImageModel: creative.DefaultImageModel},
		HTTP:     HTTPConfig{Addr: ":8080"},
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("weather.base_url", d.Weather.BaseURL)
	v.SetDefault("weather.api_key", d.Weather.APIKey)
	v.SetDefault("weather.timeout", d.Weather.Timeout)
	v.SetDefault("profiles.base_url", d.Profiles.BaseURL)
	v.SetDefault("profiles.timeout", d.Profiles.Timeout)
	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)
	v.SetDefault("codec.addr", d.Codec.Addr)
	v.SetDefault("codec.enabled", d.Codec.Enabled)
	v.SetDefault("genai.api_key", d.GenAI.APIKey)
	v.SetDefault("genai.image_model", d.GenAI.ImageModel)
	v.SetDefault("http.addr", d.HTTP.Addr)
}

// #endregion defaults

// #region load

// Load layers an optional YAML file over the defaults, then applies
// PERSONA_* environment overrides. An empty path skips the file.
// OPENWEATHER_API_KEY and GEMINI_API_KEY are honored as aliases.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("weather.api_key", EnvPrefix+"_WEATHER_API_KEY", "OPENWEATHER_API_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("genai.api_key", EnvPrefix+"_GENAI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the process cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Weather.Timeout <= 0 {
		errs = append(errs, errors.New("weather.timeout must be positive"))
	}
	if c.Profiles.Timeout <= 0 {
		errs = append(errs, errors.New("profiles.timeout must be positive"))
	}
	if c.Cache.MaxEntries <= 0 {
		errs = append(errs, errors.New("cache.max_entries must be positive"))
	}
	if c.Codec.Enabled && c.Codec.Addr == "" {
		errs = append(errs, errors.New("codec.addr is required when codec.enabled"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// #endregion load

package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/DevPanchal02/dental-edge-sub000/internal/app"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
		// CacheTTL bounds how long saved progress and results live in redis.
		CacheTTL string `yaml:"cacheTTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL string `yaml:"ttl"`
	} `yaml:"quiz"`
	Engine struct {
		ContentTimeout      string `yaml:"contentTimeout"`
		AutosaveInterval    string `yaml:"autosaveInterval"`
		TimerPeriod         string `yaml:"timerPeriod"`
		SaveDebounce        string `yaml:"saveDebounce"`
		PrometricDelay      string `yaml:"prometricDelay"`
		PracticeDuration    string `yaml:"practiceDuration"`
		PreviewQuestions    int    `yaml:"previewQuestions"`
		PreviewDisplayCount int    `yaml:"previewDisplayCount"`
	} `yaml:"engine"`
}

// Load reads YAML config from path, then applies environment overrides. A .env file in
// the working directory is loaded first when present. A missing YAML file is not an
// error; the defaults and environment apply.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Postgres.URL, "DATABASE_URL")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// EngineOptions maps the engine section onto session options. Unset values keep the
// engine defaults.
func (c Config) EngineOptions() app.Options {
	def := app.DefaultOptions()
	e := c.Engine
	opts := app.Options{
		ContentTimeout:      TTLDuration(e.ContentTimeout, def.ContentTimeout),
		AutosaveInterval:    TTLDuration(e.AutosaveInterval, def.AutosaveInterval),
		TimerPeriod:         TTLDuration(e.TimerPeriod, def.TimerPeriod),
		SaveDebounce:        TTLDuration(e.SaveDebounce, def.SaveDebounce),
		PrometricDelay:      TTLDuration(e.PrometricDelay, def.PrometricDelay),
		PracticeDuration:    TTLDuration(e.PracticeDuration, def.PracticeDuration),
		PreviewQuestions:    def.PreviewQuestions,
		PreviewDisplayCount: def.PreviewDisplayCount,
	}
	if e.PreviewQuestions > 0 {
		opts.PreviewQuestions = e.PreviewQuestions
	}
	if e.PreviewDisplayCount > 0 {
		opts.PreviewDisplayCount = e.PreviewDisplayCount
	}
	return opts
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

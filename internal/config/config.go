package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Mode  string `yaml:"mode"`  // dev or prod
		Level string `yaml:"level"` // empty uses the mode default
	} `yaml:"log"`
	Storage struct {
		Backend   string `yaml:"backend"` // memory, redis, postgres or sqlite
		Namespace string `yaml:"namespace"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Content struct {
		Model     string `yaml:"model"`
		APIKeyEnv string `yaml:"api_key_env"`
		RelayURL  string `yaml:"relay_url"`
		Timeout   string `yaml:"timeout"`
		CacheTTL  string `yaml:"cache_ttl"`
	} `yaml:"content"`
	Game struct {
		PointsPerCorrect int `yaml:"points_per_correct"`
		PointsToLevelUp  int `yaml:"points_to_level_up"`
	} `yaml:"game"`
	Report struct {
		AppName string  `yaml:"app_name"`
		Footer  string  `yaml:"footer"`
		Margin  float64 `yaml:"margin"`
	} `yaml:"report"`
	Courses []string `yaml:"courses"`
}

// Load reads YAML config from path. A missing file yields the defaults so the
// service can run with nothing but environment variables.
func Load(path string) (Config, error) {
	// .env is optional; it only seeds variables not already exported.
	_ = godotenv.Load()

	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Mode == "" {
		c.Log.Mode = "dev"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "memory"
	}
	if c.Storage.Namespace == "" {
		c.Storage.Namespace = "eduquest"
	}
	if c.Content.Model == "" {
		c.Content.Model = "gemini-2.5-flash"
	}
	if c.Content.APIKeyEnv == "" {
		c.Content.APIKeyEnv = "API_KEY"
	}
	if c.Game.PointsPerCorrect <= 0 {
		c.Game.PointsPerCorrect = 10
	}
	if c.Game.PointsToLevelUp <= 0 {
		c.Game.PointsToLevelUp = 100
	}
	if c.Report.AppName == "" {
		c.Report.AppName = "EduQuest"
	}
	if c.Report.Footer == "" {
		c.Report.Footer = "Creado por Christian Núñez Vega, Asesor Pedagógico, Programa PACE-UDA, 2025."
	}
	if c.Report.Margin <= 0 {
		c.Report.Margin = 50
	}
	if len(c.Courses) == 0 {
		c.Courses = []string{"4°AHC", "4°ATP", "4°BTP", "4°CTP", "4°DTP"}
	}
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

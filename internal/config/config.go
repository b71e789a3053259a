package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type (
	// Config holds everything the poll loop needs. Secrets come from the
	// environment; the rest may also be set in a YAML file.
	Config struct {
		Telegram Telegram `yaml:"telegram"`
		Store    Store    `yaml:"store"`
		HTTP     HTTP     `yaml:"http"`
		LogLevel string   `yaml:"log_level" env:"LOG_LEVEL"`
	}

	Telegram struct {
		Token        string        `yaml:"-" env:"TELEGRAM_BOT_TOKEN"`
		APIURL       string        `yaml:"api_url" env:"TELEGRAM_API_URL"`
		PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
		Timeout      time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT"`
		UTF8Decode   bool          `yaml:"utf8_decode" env:"UTF8_DECODE"`
		ParseMode    string        `yaml:"parse_mode" env:"PARSE_MODE"`
		// NotifyChatIDs receive start/stop notices, comma separated in the environment.
		NotifyChatIDs []int64 `yaml:"notify_chat_ids" env:"TELEGRAM_CHAT_IDS" envSeparator:","`
	}

	Store struct {
		Driver      string `yaml:"driver" env:"STORE_DRIVER"` // bolt, postgres or none
		BoltPath    string `yaml:"bolt_path" env:"BOLT_PATH"`
		DatabaseURL string `yaml:"-" env:"DATABASE_URL"`
	}

	HTTP struct {
		// Port of the status server, empty disables it.
		Port string `yaml:"port" env:"PORT"`
	}
)

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Telegram: Telegram{
			PollInterval: time.Second,
			Timeout:      15 * time.Second,
			ParseMode:    "HTML",
		},
		Store: Store{
			Driver:   "none",
			BoltPath: "tgpoll.db",
		},
		LogLevel: "info",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then .env, then the process environment. The result is not
// validated, so callers can apply their own overrides before Validate.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is required")
	}
	if c.Telegram.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Telegram.PollInterval)
	}
	switch c.Store.Driver {
	case "none", "":
	case "bolt":
		if c.Store.BoltPath == "" {
			return fmt.Errorf("bolt store needs BOLT_PATH")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("postgres store needs DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// ParseChatIDs splits a comma-separated string of chat IDs.
func ParseChatIDs(chatIDs string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(chatIDs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("chat id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

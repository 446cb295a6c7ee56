package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables holding the Telegram credentials.
const (
	EnvBotToken = "BOT_TOKEN"
	EnvChatID   = "CHAT_ID"
)

type Config struct {
	Notifications NotificationConfig `yaml:"notifications"`
	Watch         WatchConfig        `yaml:"watch"`
	Exec          ExecConfig         `yaml:"exec"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Log           LogConfig          `yaml:"log"`
}

type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Ntfy     NtfyConfig     `yaml:"ntfy"`
	Discord  DiscordConfig  `yaml:"discord"`
	Webhook  WebhookConfig  `yaml:"webhook"`
}

// TelegramConfig is always active; the credentials are mandatory.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
	APIURL   string `yaml:"api_url"` // default: https://api.telegram.org
}

type NtfyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Topic   string `yaml:"topic"`
	Server  string `yaml:"server"`
	Token   string `yaml:"token"`
}

type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Method  string `yaml:"method"`
}

type WatchConfig struct {
	PollInterval string `yaml:"poll_interval"` // default: "1s"
	Probe        string `yaml:"probe"`         // "ps" or "gopsutil"
	DedupePIDs   bool   `yaml:"dedupe_pids"`   // one sub-watcher per pid when watching by name
	Spinner      bool   `yaml:"spinner"`
}

type ExecConfig struct {
	Shell          string `yaml:"shell"`
	MirrorExitCode bool   `yaml:"mirror_exit_code"`
	CaptureLimit   int    `yaml:"capture_limit"` // bytes kept per stream
}

type MetricsConfig struct {
	Listen string `yaml:"listen"` // e.g. ":9464"; empty disables the endpoint
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads and parses the config file, expanding env vars
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns sane defaults
func DefaultConfig() *Config {
	return &Config{
		Watch: WatchConfig{
			PollInterval: "1s",
			Probe:        "ps",
			DedupePIDs:   true,
			Spinner:      true,
		},
		Exec: ExecConfig{
			Shell:          "sh",
			MirrorExitCode: true,
			CaptureLimit:   64 * 1024,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyEnv fills the Telegram credentials from the environment. Values set
// in the environment win over the config file.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBotToken); ok && v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v, ok := lookup(EnvChatID); ok && v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

// Validate checks the config for errors
func (c *Config) Validate() error {
	if c.Notifications.Telegram.BotToken == "" {
		return fmt.Errorf("%s not set: telegram bot token is required", EnvBotToken)
	}
	if c.Notifications.Telegram.ChatID == "" {
		return fmt.Errorf("%s not set: telegram chat id is required", EnvChatID)
	}

	if c.Notifications.Ntfy.Enabled && c.Notifications.Ntfy.Topic == "" {
		return fmt.Errorf("ntfy topic is required when ntfy is enabled")
	}

	if _, err := c.PollInterval(); err != nil {
		return err
	}

	switch strings.ToLower(c.Watch.Probe) {
	case "ps", "gopsutil":
	default:
		return fmt.Errorf("invalid watch probe: %s (must be ps or gopsutil)", c.Watch.Probe)
	}

	if c.Exec.Shell == "" {
		return fmt.Errorf("exec shell must not be empty")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	return nil
}

// PollInterval parses watch.poll_interval.
func (c *Config) PollInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid poll_interval %q: %w", c.Watch.PollInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid poll_interval %q: must be positive", c.Watch.PollInterval)
	}
	return d, nil
}

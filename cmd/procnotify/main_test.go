package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

var creds = envMap(map[string]string{"BOT_TOKEN": "token", "CHAT_ID": "42"})

func TestLoadConfig_DefaultsWithEnv(t *testing.T) {
	cfg, err := loadConfig(&options{}, creds)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Notifications.Telegram.BotToken != "token" || cfg.Notifications.Telegram.ChatID != "42" {
		t.Errorf("credentials not applied: %+v", cfg.Notifications.Telegram)
	}
	if cfg.Watch.PollInterval != "1s" {
		t.Errorf("PollInterval = %q, want 1s", cfg.Watch.PollInterval)
	}
}

func TestLoadConfig_MissingCredentials(t *testing.T) {
	_, err := loadConfig(&options{}, envMap(map[string]string{"CHAT_ID": "42"}))
	if err == nil || !strings.Contains(err.Error(), "BOT_TOKEN") {
		t.Errorf("error = %v, want missing BOT_TOKEN", err)
	}

	_, err = loadConfig(&options{}, envMap(map[string]string{"BOT_TOKEN": "t"}))
	if err == nil || !strings.Contains(err.Error(), "CHAT_ID") {
		t.Errorf("error = %v, want missing CHAT_ID", err)
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "procnotify.yaml")
	yaml := "watch:\n  poll_interval: 5s\n  probe: ps\nlog:\n  level: warn\n"
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(&options{
		cfgPath:       path,
		interval:      "250ms",
		probe:         "gopsutil",
		logLevel:      "debug",
		metricsListen: "127.0.0.1:9464",
	}, creds)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Watch.PollInterval != "250ms" || cfg.Watch.Probe != "gopsutil" ||
		cfg.Log.Level != "debug" || cfg.Metrics.Listen != "127.0.0.1:9464" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadConfig_InvalidOverride(t *testing.T) {
	_, err := loadConfig(&options{interval: "-1s"}, creds)
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("error = %v, want invalid config", err)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(&options{cfgPath: filepath.Join(t.TempDir(), "nope.yaml")}, creds)
	if err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Errorf("error = %v, want loading config error", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"pid", "name", "exec", "test", "version"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestPidCmd_RejectsBadPID(t *testing.T) {
	for _, arg := range []string{"abc", "0", "-5"} {
		root := newRootCmd()
		root.SetArgs([]string{"pid", "--", arg})
		root.SetOut(&strings.Builder{})
		root.SetErr(&strings.Builder{})
		if err := root.Execute(); err == nil {
			t.Errorf("pid %q should be rejected", arg)
		}
	}
}

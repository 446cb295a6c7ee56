package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Fullex26/procnotify/internal/config"
	"github.com/Fullex26/procnotify/internal/metrics"
	"github.com/Fullex26/procnotify/internal/monitor"
	"github.com/Fullex26/procnotify/internal/watchers"
	"github.com/Fullex26/procnotify/pkg/models"
)

type options struct {
	cfgPath       string
	interval      string
	probe         string
	logLevel      string
	metricsListen string
	summary       bool
	noSpinner     bool
}

// exitCode is what the process exits with once cobra returns.
var exitCode int

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "procnotify",
		Short:        "🔔 procnotify — Telegram notifications when a process finishes",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.cfgPath, "config", "", "optional config file path")
	pf.StringVar(&opts.interval, "interval", "", "poll interval, e.g. 1s (overrides watch.poll_interval)")
	pf.StringVar(&opts.probe, "probe", "", "process table backend: ps or gopsutil")
	pf.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&opts.metricsListen, "metrics-listen", "", "serve Prometheus metrics on this address")
	pf.BoolVar(&opts.summary, "summary", false, "print a table of this run's events at exit")
	pf.BoolVar(&opts.noSpinner, "no-spinner", false, "disable the progress spinner")

	root.AddCommand(
		pidCmd(opts),
		nameCmd(opts),
		execCmd(opts),
		testCmd(opts),
		versionCmd(),
	)
	return root
}

func pidCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pid <PID>",
		Short: "Notify when the process with this PID terminates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := models.ParsePID(args[0])
			if err != nil {
				return err
			}
			return watch(opts, target)
		},
	}
}

func nameCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "name <PROCESS_NAME>",
		Short: "Notify when all processes with this name have terminated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := models.ByName(args[0])
			if err := target.Validate(); err != nil {
				return err
			}
			return watch(opts, target)
		},
	}
}

func execCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <COMMAND>",
		Short: "Run a shell command and notify when it finishes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := models.ByCommand(strings.Join(args, " "))
			if err := target.Validate(); err != nil {
				return err
			}
			return watch(opts, target)
		},
	}
	// Everything after the command's first word belongs to the command.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func testCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a test notification to all configured channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, os.LookupEnv)
			if err != nil {
				return err
			}

			m, err := monitor.New(cfg)
			if err != nil {
				return fmt.Errorf("initializing monitor: %w", err)
			}
			defer m.Close()

			fmt.Println("🔔 Sending test notification...")
			if err := m.TestNotifiers(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("✅ Test notification sent!")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("procnotify v%s\nhttps://github.com/Fullex26/procnotify\n", monitor.Version)
		},
	}
}

func watch(opts *options, target models.Target) error {
	cfg, err := loadConfig(opts, os.LookupEnv)
	if err != nil {
		return err
	}

	var mopts []monitor.Option
	if cfg.Watch.Spinner && !opts.noSpinner {
		mopts = append(mopts, monitor.WithIndicator(watchers.SpinnerIndicators(os.Stdout)))
	}

	m, err := monitor.New(cfg, mopts...)
	if err != nil {
		return fmt.Errorf("initializing monitor: %w", err)
	}
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Metrics.Listen != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Listen); err != nil {
				slog.Error("metrics endpoint failed", "addr", cfg.Metrics.Listen, "error", err)
			}
		}()
	}

	exitCode = m.Run(ctx, target)

	if opts.summary {
		fmt.Println()
		if err := m.WriteSummary(os.Stdout); err != nil {
			slog.Error("failed to print summary", "error", err)
		}
	}
	return nil
}

// loadConfig builds the run's configuration: defaults or the config file,
// then credentials from the environment, then command-line overrides.
func loadConfig(opts *options, lookup func(string) (string, bool)) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.cfgPath != "" {
		var err error
		cfg, err = config.Load(opts.cfgPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	cfg.ApplyEnv(lookup)

	if opts.interval != "" {
		cfg.Watch.PollInterval = opts.interval
	}
	if opts.probe != "" {
		cfg.Watch.Probe = opts.probe
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.metricsListen != "" {
		cfg.Metrics.Listen = opts.metricsListen
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	})))
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

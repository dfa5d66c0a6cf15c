// Package main provides Nova, a terminal browser shell that answers queries
// and addresses with a generative model. It runs as a full-screen TUI by
// default, or as a one-shot command when -query is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	appconfig "github.com/thelegendaryrichman/nova/pkg/config"
	"github.com/thelegendaryrichman/nova/pkg/dispatch"
	"github.com/thelegendaryrichman/nova/pkg/environment"
	"github.com/thelegendaryrichman/nova/pkg/executor/cli"
	"github.com/thelegendaryrichman/nova/pkg/executor/tui"
	"github.com/thelegendaryrichman/nova/pkg/session"
	"github.com/thelegendaryrichman/nova/pkg/types"
)

const version = "0.1.0"

// Config holds the application configuration
type Config struct {
	Provider     appconfig.ProviderFlags
	ConfigPath   string
	Query        string
	Mode         string
	Interactive  bool
	NoLocation   bool
	ShowVersion  bool
	resolvedMode types.Mode
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("Nova v%s\n", version)
		return
	}

	if err := config.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config); err != nil {
		stop()
		log.Fatalf("Application error: %v", err)
	}
}

// parseFlags parses command line flags
func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.Provider.Provider, "provider", "", "Model provider: gemini or openai (default gemini)")
	flag.StringVar(&config.Provider.APIKey, "api-key", "", "Provider API key (or set GEMINI_API_KEY / OPENAI_API_KEY)")
	flag.StringVar(&config.Provider.BaseURL, "base-url", "", "OpenAI-compatible base URL (or set OPENAI_BASE_URL)")
	flag.StringVar(&config.Provider.Models.Fast, "model-fast", "", "Model for the fast profile")
	flag.StringVar(&config.Provider.Models.Search, "model-search", "", "Model for the live-search profile")
	flag.StringVar(&config.Provider.Models.Deep, "model-deep", "", "Model for the deep-reasoning profile")
	flag.StringVar(&config.ConfigPath, "config", "", "Path to config file (default ~/.nova/config.yaml)")
	flag.StringVar(&config.Query, "query", "", "Run a single query and print the result")
	flag.StringVar(&config.Mode, "mode", "fast", "Initial profile: fast, search (live) or deep")
	flag.BoolVar(&config.Interactive, "cli", false, "Use the line-oriented interface instead of the TUI")
	flag.BoolVar(&config.NoLocation, "no-location", false, "Skip the startup location lookup")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Nova - a terminal super-browser\n\n")
		fmt.Fprintf(os.Stderr, "Usage: nova [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY     Gemini API key (GOOGLE_API_KEY also accepted)\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY     OpenAI API key\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_BASE_URL    OpenAI API base URL (for compatible APIs)\n")
		fmt.Fprintf(os.Stderr, "  NOVA_LOG_DIR       Log directory (default ~/.nova/logs)\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  nova                                        # Start the TUI\n")
		fmt.Fprintf(os.Stderr, "  nova -mode search                           # Start in live-search mode\n")
		fmt.Fprintf(os.Stderr, "  nova -query \"best pizza nearby\" -mode search\n")
		fmt.Fprintf(os.Stderr, "  nova -provider openai -base-url https://openrouter.ai/api/v1\n")
	}

	flag.Parse()
	return config
}

// validate checks that the configuration is valid
func (c *Config) validate() error {
	mode, err := types.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	c.resolvedMode = mode
	return nil
}

// run executes the main application logic
func run(ctx context.Context, config *Config) error {
	if err := appconfig.Initialize(config.ConfigPath); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	settings, err := appconfig.ResolveProvider(config.Provider)
	if err != nil {
		return err
	}

	provider, err := appconfig.BuildProvider(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}
	client := dispatch.NewClient(provider, settings.DispatchOptions()...)

	env := environment.NewState(true)
	monitor := startEnvironment(ctx, env, config, provider.GetBaseURL())

	manager := session.NewManager(env, client)

	if config.Query != "" || config.Interactive {
		opts := []cli.ExecutorOption{cli.WithMode(config.resolvedMode)}
		if config.Query != "" {
			opts = append(opts, cli.WithQuery(config.Query))
		}
		return cli.NewExecutor(manager, opts...).Run(ctx)
	}

	manager.SetMode(config.resolvedMode)
	return tui.NewExecutor(manager, tui.WithMonitor(monitor)).Run(ctx)
}

// startEnvironment launches the connectivity, location and latency signal
// sources. They stop when ctx is cancelled. providerURL is the backend the
// connectivity probe targets by default.
func startEnvironment(ctx context.Context, env *environment.State, config *Config, providerURL string) *environment.ConnectivityMonitor {
	section := appconfig.GetEnvironment()

	monitor := environment.NewConnectivityMonitor(env, section.MonitorOptions(providerURL)...)
	go monitor.Run(ctx)

	if section.IsLocationEnabled() && !config.NoLocation {
		locator := environment.NewLocator(env, section.LocatorOptions()...)
		if config.Query != "" && config.resolvedMode == types.ModeSearch {
			// A one-shot search only gets a location bias if it is known
			// before dispatch.
			locator.Run(ctx)
		} else {
			go locator.Run(ctx)
		}
	}

	// A one-shot query exits before the first tick, so only interactive
	// sessions animate latency.
	if config.Query == "" {
		go environment.NewLatencySimulator(env, section.LatencyOptions()...).Run(ctx)
	}

	return monitor
}

// Package cli implements the obvious command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/obvious/pkg/buildinfo"
	"github.com/matzehuels/obvious/pkg/config"
	"github.com/matzehuels/obvious/pkg/factory"
	"github.com/matzehuels/obvious/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "obvious"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer
	status     io.Writer
	registry   *factory.Registry
	configPath string
	verbose    bool
	cfg        *config.Config
	lookupEnv  func(string) (string, bool)
}

// New creates a new CLI instance writing logs to w and results to stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    newLogger(w, level),
		out:       os.Stdout,
		status:    w,
		registry:  factory.DefaultRegistry(),
		lookupEnv: os.LookupEnv,
	}
}

// SetOutput redirects command results (tables, status lines) to w.
func (c *CLI) SetOutput(w io.Writer) { c.out = w }

// spin starts a spinner on the log writer.
func (c *CLI) spin(ctx context.Context, message string) *spinner {
	return newSpinner(ctx, c.status, message).start()
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Obvious inspects and stores tables, networks and trees",
		Long: `Obvious is a CLI for the obvious data model: typed tables with stable row
ids, and networks and trees stored as a node table plus an edge table.

It reads JSON documents, validates their structure through a configurable
storage backend, and keeps snapshots in a file or redis store.`,
		Version:           buildinfo.Get().Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.backendsCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file, applies environment overrides and sets
// the log level. --verbose wins over the configured level.
func (c *CLI) loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	cfg.FromEnv(c.lookupEnv)
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := cfg.LogLevel()
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	c.cfg = cfg
	c.Logger.Debug("config loaded", "backend", cfg.Backend, "store", cfg.Store.Kind)
	return nil
}

// currentConfig returns the loaded configuration, or the defaults when a command
// runs without the root pre-run (as in tests).
func (c *CLI) currentConfig() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Factory and Store
// =============================================================================

// newFactory builds the factory for the configured backend.
func (c *CLI) newFactory() (*factory.Factory, error) {
	return factory.FromConfig(c.registry, c.currentConfig(), factory.WithLogger(c.Logger))
}

// newSnapshots opens the configured store. The caller closes the cache.
func (c *CLI) newSnapshots(ctx context.Context) (*store.Snapshots, error) {
	cfg := c.currentConfig()
	cache, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	return store.NewSnapshots(cache,
		store.WithTTL(cfg.Store.TTL.Duration),
		store.WithLogger(c.Logger),
	), nil
}

// backendsCommand lists the registered storage backends.
func (c *CLI) backendsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the available storage backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current := c.currentConfig().Backend
			for _, name := range c.registry.Names() {
				if name == current {
					c.printKeyValue(name, StyleHighlight.Render("configured"))
					continue
				}
				c.printKeyValue(name, "")
			}
			return nil
		},
	}
}

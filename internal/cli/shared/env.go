package shared

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/stackgen/stackgen/internal/catalog"
	"github.com/stackgen/stackgen/internal/config"
	clierrors "github.com/stackgen/stackgen/internal/errors"
	"github.com/stackgen/stackgen/internal/logging"
	"go.uber.org/zap"
)

// Env is the configuration, logger and feature catalog a command runs with.
type Env struct {
	Config  *config.Configuration
	Logger  *zap.Logger
	Catalog *catalog.Catalog
}

// LoadConfig reads the --config flag and loads the layered configuration.
// An explicitly passed --config path must exist.
func LoadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if cmd.Flags().Changed("config") {
		if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
			return nil, clierrors.ConfigFileNotFound(configPath)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		if configPath == "" {
			configPath = config.ProjectConfigPath()
		}
		return nil, clierrors.ConfigParseError(configPath, err)
	}
	return cfg, nil
}

// NewLogger builds the diagnostic logger. --debug forces debug level.
func NewLogger(cmd *cobra.Command, cfg *config.Configuration) (*zap.Logger, error) {
	level := cfg.LogLevel
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = "debug"
	}
	log, err := logging.New(level, cfg.LogFormat)
	if err != nil {
		return nil, clierrors.WrapWithMessage(err, clierrors.Configuration, "building logger",
			"Check log_level and log_format in the config")
	}
	return log, nil
}

// LoadEnv loads configuration, the logger and the feature catalog.
func LoadEnv(cmd *cobra.Command) (*Env, error) {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := NewLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load(catalog.Options{
		Dir:          cfg.CatalogDir,
		TemplatesDir: cfg.TemplatesDir,
		Logger:       log,
	})
	if err != nil {
		return nil, clierrors.CatalogInvalid(err)
	}
	return &Env{Config: cfg, Logger: log, Catalog: cat}, nil
}

// StateDir resolves the configured state directory against a project root.
func StateDir(root string, cfg *config.Configuration) string {
	if filepath.IsAbs(cfg.StateDir) {
		return cfg.StateDir
	}
	return filepath.Join(root, cfg.StateDir)
}

// CheckFeatures rejects ids missing from the catalog.
func (e *Env) CheckFeatures(ids []string) error {
	for _, id := range ids {
		if _, ok := e.Catalog.Registry.Get(id); !ok {
			return clierrors.UnknownFeature(id, e.Catalog.Registry.IDs())
		}
	}
	return nil
}

// Sync flushes the logger, ignoring the errors zap reports for terminals.
func (e *Env) Sync() {
	if e == nil || e.Logger == nil {
		return
	}
	_ = e.Logger.Sync()
}

// ArgError converts a cobra argument validation error into an argument CLIError.
func ArgError(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine(),
		fmt.Sprintf("Run '%s --help' for usage", cmd.CommandPath()))
}

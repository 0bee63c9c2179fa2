// Package config loads stackgen tool configuration. Answers to feature
// prompts are not configuration; they live in the answers package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override (STACKGEN_MAX_RETRIES).
const EnvPrefix = "STACKGEN_"

// Configuration represents the stackgen tool configuration
type Configuration struct {
	CatalogDir        string `koanf:"catalog_dir"`
	TemplatesDir      string `koanf:"templates_dir"`
	StateDir          string `koanf:"state_dir" validate:"required"`
	Shell             string `koanf:"shell" validate:"required"`
	ScriptTimeout     int    `koanf:"script_timeout" validate:"min=0,max=86400"` // Seconds per script; 0 disables the timeout
	MaxRetries        int    `koanf:"max_retries" validate:"min=1,max=10"`
	ShowProgress      bool   `koanf:"show_progress"`   // Show spinners during execution
	NonInteractive    bool   `koanf:"non_interactive"` // Never prompt; use defaults and supplied answers
	MaxHistoryEntries int    `koanf:"max_history_entries" validate:"min=0"`
	LogLevel          string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat         string `koanf:"log_format" validate:"oneof=console json"`
}

// ScriptTimeoutDuration returns script_timeout as a duration (0 = none).
func (c *Configuration) ScriptTimeoutDuration() time.Duration {
	return time.Duration(c.ScriptTimeout) * time.Second
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > project config > user config > defaults.
// localConfigPath replaces the project config path when non-empty; a
// missing file at either path is not an error.
func Load(localConfigPath string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	if userPath, err := UserConfigPath(); err == nil {
		if err := loadFile(k, userPath); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if localConfigPath == "" {
		localConfigPath = ProjectConfigPath()
	}
	if err := loadFile(k, localConfigPath); err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}

	// Override with environment variables (highest priority)
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateStruct(&cfg, localConfigPath); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.CatalogDir = expandHomePath(cfg.CatalogDir)
	cfg.TemplatesDir = expandHomePath(cfg.TemplatesDir)

	return &cfg, nil
}

// loadFile merges a JSON config file into k, skipping files that don't exist.
func loadFile(k *koanf.Koanf, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := CheckJSONSyntax(data, path); err != nil {
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := ValidateKnownKeys(data, path); err != nil {
		return err
	}
	return k.Load(file.Provider(path), json.Parser())
}

// validateStruct runs validator tags and reports the first failure as a
// ValidationError named by its config key.
func validateStruct(cfg *Configuration, filePath string) error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.Split(f.Tag.Get("koanf"), ",")[0]
	})
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return &ValidationError{
		FilePath: filePath,
		Field:    fe.Field(),
		Message:  describeRule(fe),
	}
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// envTransform converts environment variable names to config keys
// Example: STACKGEN_MAX_RETRIES -> max_retries
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}

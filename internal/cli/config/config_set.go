package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	cfgpkg "github.com/stackgen/stackgen/internal/config"
	clierrors "github.com/stackgen/stackgen/internal/errors"
)

var (
	configSetCmd = &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write one key to a config file",
		Long: `Write one key to the user config, or to the project config with --project.
The value must parse as the key's type and pass the same range and choice
rules that loading applies.`,
		Example: `  stackgen config set max_retries 5
  stackgen config set shell bash --project`,
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	}

	configGetCmd = &cobra.Command{
		Use:   "get <key>",
		Short: "Print a key's value and where it comes from",
		Long: `Print the value stackgen would use for a key, naming the layer that set it:
an STACKGEN_* variable, the project config, the user config or the default.
With --user or --project only that file is consulted.`,
		Example: `  stackgen config get script_timeout
  stackgen config get shell --project`,
		Args: cobra.ExactArgs(1),
		RunE: runConfigGet,
	}

	configToggleCmd = &cobra.Command{
		Use:   "toggle <key>",
		Short: "Flip a boolean key",
		Long: `Flip a boolean key in the chosen config file. A key the file does not
set flips from its default.`,
		Example: `  stackgen config toggle show_progress
  stackgen config toggle non_interactive --project`,
		Args: cobra.ExactArgs(1),
		RunE: runConfigToggle,
	}

	configKeysCmd = &cobra.Command{
		Use:   "keys",
		Short: "List configuration keys",
		Args:  cobra.NoArgs,
		RunE:  runConfigKeys,
	}
)

func init() {
	configCmd.AddCommand(configSetCmd, configGetCmd, configToggleCmd, configKeysCmd)
	for _, c := range []*cobra.Command{configSetCmd, configGetCmd, configToggleCmd} {
		c.Flags().Bool("user", false, "Use the user-level config")
		c.Flags().Bool("project", false, "Use the project-level config")
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if _, err := lookupKey(key); err != nil {
		return err
	}
	filePath, scope, err := resolveConfigPath(cmd)
	if err != nil {
		return err
	}
	if err := cfgpkg.SetConfigValue(filePath, key, value); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Configuration, "setting config value")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s config (%s)\n", key, value, scope, filePath)
	return nil
}

func runConfigToggle(cmd *cobra.Command, args []string) error {
	key := args[0]
	schema, err := lookupKey(key)
	if err != nil {
		return err
	}
	if schema.Kind != cfgpkg.KindBool {
		return clierrors.NewArgumentError(fmt.Sprintf("%s is not a boolean key (it is %s)", key, schema.Kind))
	}
	filePath, scope, err := resolveConfigPath(cmd)
	if err != nil {
		return err
	}

	current, _ := schema.Default.(bool)
	if value, found, err := cfgpkg.GetConfigValue(filePath, key); err != nil {
		return clierrors.ConfigParseError(filePath, err)
	} else if found {
		current = value.Bool()
	}
	if err := cfgpkg.SetConfigValue(filePath, key, strconv.FormatBool(!current)); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Configuration, "setting config value")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %t -> %t in %s config (%s)\n", key, current, !current, scope, filePath)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if _, err := lookupKey(key); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	useUser, _ := cmd.Flags().GetBool("user")
	useProject, _ := cmd.Flags().GetBool("project")
	if useUser || useProject {
		filePath, scope, err := resolveConfigPath(cmd)
		if err != nil {
			return err
		}
		return getFromFile(out, key, configSource{scope: scope, path: filePath})
	}

	userPath, err := cfgpkg.UserConfigPath()
	if err != nil {
		return err
	}
	return getEffectiveValue(out, key, []configSource{
		{scope: "project", path: projectPath(cmd)},
		{scope: "user", path: userPath},
	}, os.LookupEnv)
}

// configSource is one config file consulted by `config get`.
type configSource struct {
	scope string
	path  string
}

func getFromFile(out io.Writer, key string, src configSource) error {
	value, found, err := cfgpkg.GetConfigValue(src.path, key)
	if err != nil {
		return clierrors.ConfigParseError(src.path, err)
	}
	if found {
		fmt.Fprintf(out, "%s: %s (from %s config)\n", key, value.String(), src.scope)
	} else {
		fmt.Fprintf(out, "%s: not set in %s config\n", key, src.scope)
	}
	return nil
}

// getEffectiveValue reports the value Load would use for key: an
// environment override, then each source in order, then the default.
func getEffectiveValue(out io.Writer, key string, sources []configSource, lookupEnv func(string) (string, bool)) error {
	envName := cfgpkg.EnvPrefix + strings.ToUpper(key)
	if value, ok := lookupEnv(envName); ok {
		fmt.Fprintf(out, "%s: %s (from %s)\n", key, value, envName)
		return nil
	}
	for _, src := range sources {
		value, found, err := cfgpkg.GetConfigValue(src.path, key)
		if err != nil {
			return clierrors.ConfigParseError(src.path, err)
		}
		if found {
			fmt.Fprintf(out, "%s: %s (from %s config)\n", key, value.String(), src.scope)
			return nil
		}
	}
	fmt.Fprintf(out, "%s: %v (default)\n", key, cfgpkg.KnownKeys[key].Default)
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	for _, key := range cfgpkg.KnownKeyOrder {
		s := cfgpkg.KnownKeys[key]
		kind := string(s.Kind)
		if s.Kind == cfgpkg.KindEnum {
			kind = "enum (" + strings.Join(s.Choices, ", ") + ")"
		}
		fmt.Fprintf(out, "%-20s %-24s default %v\n    %s\n", key, kind, s.Default, s.Description)
	}
	return nil
}

// resolveConfigPath picks the file a command targets: the user config by
// default, the project config with --project.
func resolveConfigPath(cmd *cobra.Command) (filePath, scope string, err error) {
	useUser, _ := cmd.Flags().GetBool("user")
	useProject, _ := cmd.Flags().GetBool("project")
	switch {
	case useUser && useProject:
		return "", "", clierrors.InvalidFlagCombination("--user and --project", "they are mutually exclusive")
	case useProject:
		return projectPath(cmd), "project", nil
	}
	userPath, err := cfgpkg.UserConfigPath()
	if err != nil {
		return "", "", err
	}
	return userPath, "user", nil
}

// projectPath returns --config when given, otherwise .stackgen/config.json.
func projectPath(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	return cfgpkg.ProjectConfigPath()
}

func lookupKey(key string) (cfgpkg.KeySchema, error) {
	s, err := cfgpkg.GetKeySchema(key)
	if err != nil {
		return s, clierrors.NewArgumentError(
			fmt.Sprintf("unknown configuration key: %q", key),
			"Valid keys: "+strings.Join(cfgpkg.KnownKeyOrder, ", "),
		)
	}
	return s, nil
}

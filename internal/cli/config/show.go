package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stackgen/stackgen/internal/cli/shared"
	cfgpkg "github.com/stackgen/stackgen/internal/config"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current effective configuration",
	Long: `Display the current effective configuration values.

Shows the merged result of defaults, user config, project config, and
environment variables. Use --json to print JSON instead of YAML.`,
	Example: `  # Show configuration in YAML format (default)
  stackgen config show

  # Show configuration in JSON format
  stackgen config show --json`,
	RunE: runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configShowCmd.Flags().Bool("json", false, "Output in JSON format")
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	useJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := shared.LoadConfig(cmd)
	if err != nil {
		return err
	}

	userPath, _ := cfgpkg.UserConfigPath()
	fmt.Fprintf(out, "# user config:    %s\n# project config: %s\n\n", userPath, projectPath(cmd))

	var data []byte
	if useJSON {
		data, err = effectiveJSON(cfg)
	} else {
		data, err = effectiveYAML(cfg)
	}
	if err != nil {
		return fmt.Errorf("rendering configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// effectiveJSON renders cfg with keys in schema order.
func effectiveJSON(cfg *cfgpkg.Configuration) ([]byte, error) {
	doc := []byte("{}")
	for _, key := range cfgpkg.KnownKeyOrder {
		v, _ := cfg.Value(key)
		var err error
		if doc, err = sjson.SetBytes(doc, key, v); err != nil {
			return nil, err
		}
	}
	return pretty.Pretty(doc), nil
}

// effectiveYAML renders cfg with keys in schema order.
func effectiveYAML(cfg *cfgpkg.Configuration) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range cfgpkg.KnownKeyOrder {
		v, _ := cfg.Value(key)
		var val yaml.Node
		if err := val.Encode(v); err != nil {
			return nil, err
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, &val)
	}
	return yaml.Marshal(root)
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-filter/internal/index"
	"github.com/inodb/vibe-filter/internal/pipe"
)

const configName = ".vibe-filter"

func setDefaults() {
	viper.SetDefault("index.option_cap", index.DefaultOptionCap)
	viper.SetDefault("index.progress_every", index.DefaultProgressEvery)
	viper.SetDefault("index.snapshot", true)
	viper.SetDefault("pipe.max_results", pipe.DefaultMaxResults)
	viper.SetDefault("pipe.progress_every", pipe.DefaultProgressEvery)
	viper.SetDefault("log.level", "info")
}

// initConfig loads ~/.vibe-filter.yaml and VIBE_FILTER_* environment
// variables on top of the defaults. A missing file is not an error.
func initConfig() error {
	setDefaults()
	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetEnvPrefix("VIBE_FILTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-filter configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vibe-filter.yaml.",
		Example: `  vibe-filter config                          # show all config
  vibe-filter config set pipe.max_results 100  # keep more results in memory
  vibe-filter config get index.option_cap      # get a value`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(a)
		},
	}

	cmd.AddCommand(newConfigSetCmd(a))
	cmd.AddCommand(newConfigGetCmd(a))

	return cmd
}

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(a, args[0], args[1])
		},
	}
}

func newConfigGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(a, args[0])
		},
	}
}

func runConfigShow(a *app) error {
	out, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if viper.ConfigFileUsed() == "" {
		fmt.Fprintln(a.stdout, "# No config file, showing defaults. Config file: ~/.vibe-filter.yaml")
	}
	fmt.Fprint(a.stdout, string(out))
	return nil
}

func runConfigSet(a *app, key, value string) error {
	// Parse boolean-like values
	switch value {
	case "true", "yes", "on":
		viper.Set(key, true)
	case "false", "no", "off":
		viper.Set(key, false)
	default:
		viper.Set(key, value)
	}

	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, configName+".yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(a.stdout, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(a *app, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(a.stdout, val)
	return nil
}

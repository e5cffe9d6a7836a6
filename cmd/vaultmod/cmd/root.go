package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Version is set at build time
var Version = "dev"

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vaultmod",
	Short: "Coerce textual override values into typed record fields",
	Long: `vaultmod turns the text of user-authored overrides into the typed values
a record field expects: numbers (decimal or 0x hex), enumerants by name or
value, and string keys hashed to 32-bit ids.`,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return initConfig() },
}

// Execute adds all child commands to the root command and runs it
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vaultmod/config.yaml)")
	flags.String("schema", "", "schema file declaring wrapper types and enums")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("log-file", "", "also append log entries to this file")
	flags.StringP("output", "o", "table", "output format: table, json or yaml")

	viper.BindPFlag("schema", flags.Lookup("schema"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("log_file", flags.Lookup("log-file"))
	viper.BindPFlag("output", flags.Lookup("output"))

	viper.SetDefault("failure_history", 100)
}

// initConfig reads the config file and VAULTMOD_* environment variables.
// A missing default config file is fine; a missing explicit one is not.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".vaultmod"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VAULTMOD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// writeOutput renders v in the configured output format. table is used for
// the table format.
func writeOutput(w io.Writer, v interface{}, table func(io.Writer) error) error {
	switch format := viper.GetString("output"); format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		return table(w)
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psantana5/vaultmod/pkg/auth"
)

// apikeyCmd generates a key for the HTTP service
var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Generate an API key for vaultmod serve",
	Long: `Generate a random API key and its bcrypt hash. Hand the key to the client
and add the hash to serve.api_keys in the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, hash, err := auth.GenerateAPIKey()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "key:  %s\n", key)
		fmt.Fprintf(out, "hash: %s\n", hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(apikeyCmd)
}

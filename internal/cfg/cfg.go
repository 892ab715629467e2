// Package cfg provides configuration and command-line interface setup for Tokbarr.
package cfg

import (
	"context"
	"strings"
	"tokbarr/internal/domain/keys"
	"tokbarr/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "tokbarr",
	Short: "Tokbarr is a batch video downloading tool.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Level = viper.GetInt(keys.DebugLevel)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Lookup("help").Changed {
			return nil
		}
		return cmd.Help()
	},
}

// InitCommands initializes all commands and their flags.
func InitCommands(ctx context.Context) error {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("_", "-")) // Convert "server_url" to "server-url"

	rootCmd.PersistentFlags().Int(keys.DebugLevel, 0, "Debug level (0-5)")
	rootCmd.PersistentFlags().String(keys.ServerURL, "http://localhost:8000", "Base URL of the Tokbarr server")

	if err := viper.BindPFlag(keys.DebugLevel, rootCmd.PersistentFlags().Lookup(keys.DebugLevel)); err != nil {
		return err
	}
	if err := viper.BindPFlag(keys.ServerURL, rootCmd.PersistentFlags().Lookup(keys.ServerURL)); err != nil {
		return err
	}

	rootCmd.AddCommand(serveCmd(ctx))
	rootCmd.AddCommand(submitCmd(ctx))
	rootCmd.AddCommand(listCmd(ctx))
	rootCmd.AddCommand(fetchCmd(ctx))
	rootCmd.AddCommand(deleteCmd(ctx))

	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// serverURL returns the configured API base URL.
func serverURL() string {
	return viper.GetString(keys.ServerURL)
}

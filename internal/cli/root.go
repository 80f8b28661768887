// Package cli implements the wallet dashboard command line.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"wallet_dashboard/internal/infrastructure/configloader"
)

// EnvConfigPath overrides the default config location.
const EnvConfigPath = "CONFIG_PATH"

const defaultConfigPath = "config/config.yml"

var (
	configPath string
	envFile    string

	cfg *configloader.Config
)

var rootCmd = &cobra.Command{
	Use:   "wallet_dashboard",
	Short: "Multi-network wallet dashboard backend",
	Long: `wallet_dashboard serves the session and network state behind the wallet
dashboard: network selection, wallet connection through a configured connector
backend, and the per-network dashboard view.

Example:
  wallet_dashboard serve --config config/config.yml
  wallet_dashboard networks`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default $"+EnvConfigPath+" or "+defaultConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.AddCommand(serveCmd, networksCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadConfig loads the dotenv file, then the YAML config. A missing config file at
// the default location falls back to built-in defaults.
func loadConfig() error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	path := configPath
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if !explicit {
		path = defaultConfigPath
	}

	loaded, err := configloader.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			cfg = configloader.Default()
			return nil
		}
		return err
	}
	cfg = loaded
	return nil
}

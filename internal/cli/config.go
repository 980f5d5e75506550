package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/cfdaily/cfdaily/internal/daemon"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Write the default config file if none exists")
	rootCmd.AddCommand(configCmd)
}

var configInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configInit {
		path := filepath.Join(daemon.Home(), "config.toml")
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}
		cfg := daemon.DefaultConfig()
		if err := daemon.SaveConfig(cfg); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return nil
	}

	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	return toml.NewEncoder(os.Stdout).Encode(cfg)
}

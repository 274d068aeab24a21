// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the peoples-daily CLI: it fetches the
// page PDFs of one day's People's Daily web edition and binds them into a
// single document.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// verbose mirrors the persistent --verbose flag; stage status lines are
// discarded unless it is set.
var verbose bool

// rootCmd is the base command for the peoples-daily CLI.
var rootCmd = &cobra.Command{
	Use:   "peoples-daily",
	Short: "Download and bind a day's People's Daily as one PDF",
	Long: `peoples-daily resolves a calendar date to the set of page PDFs published
that day on the People's Daily web edition, downloads them, and merges them
in page order into a single output document. Ghostscript compression is
optional and best-effort.

The publisher URL scheme, archive bounds, and output naming live in the
config file, so pointing the tool at a mirror or another edition is a
configuration change.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./peoples-daily.yaml or ~/.config/peoples-daily/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print per-page progress and warnings")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("peoples-daily")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "peoples-daily"))
		}
	}

	viper.SetEnvPrefix("PEOPLES_DAILY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

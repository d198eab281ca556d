package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linemark/internal/config"
	"github.com/MrSnakeDoc/linemark/internal/version"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "linemark",
	Short: "Line bookmark store for editors",
	Long: `linemark keeps named bookmarks on source lines, grouped into
ordered directories, and persists them in Redis.

Editors talk to it over a local HTTP API; see "linemark serve".`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnvFile(envFile)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "dotenv file read before the environment")
	rootCmd.SetVersionTemplate("linemark {{.Version}}\n")
}

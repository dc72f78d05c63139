package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/xzzpig/content-rest/internal/core/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "content-rest",
	Short: "REST API over a GraphQL content service",
	Long: `content-rest exposes the content types of a GraphQL content API as REST
resources, synthesizing field selections from the upstream schema.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.toml)")
	config.BindFlags(rootCmd)
}

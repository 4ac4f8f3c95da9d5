// Package main is the MindWeaver server entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// set at build time with -ldflags "-X main.version=..."
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "MindWeaver Saga API server",
	Long: `MindWeaver Saga API server

Signs people in with Google, keeps their conversations and answers each
message with a therapeutic fantasy story.

Running without a subcommand is the same as "server serve".`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./configs", "directory holding config.yaml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

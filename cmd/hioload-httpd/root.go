package main

import (
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "hioload-httpd",
	Short: "Epoll-driven HTTP server with user registration and login",
	Long: `hioload-httpd serves a small HTTP/1.x application from an edge-triggered
epoll loop. Ready connections are handed to a fixed worker pool which parses
the request, routes it and writes a single response before closing.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("hioload-httpd %s\n", version)
	},
}

func init() {
	rootCmd.SetVersionTemplate("hioload-httpd {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Config file (yaml, toml or json); HIOLOAD_* env vars override it")
	rootCmd.AddCommand(versionCmd)
}

// Package main is the attribute-poll service binary.
//
//	attribute-poll serve -c config.yaml
//	attribute-poll version
package main

// @title           Attribute Poll API
// @version         1.0
// @description     Admin API for the attribute poll engine. Queues poll commands and manages the attribute tree.
// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.basic  BasicAuth

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:   "attribute-poll",
	Short: "Periodic attribute poll engine",
	Long: `attribute-poll keeps a queue of attributes and polls each one on its
own interval, never faster than the global backoff. A poll marks the
attribute so the resolver issues a fresh read for it.

Commands arrive over the admin HTTP API and, when configured, over redis
pub/sub and MQTT. Read requests are published on MQTT or logged.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "attribute-poll %s (commit %s)\n", version, commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main is the entry point for the modbot demo host.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"modcmd/pkg/config"
	"modcmd/pkg/discord"
	"modcmd/pkg/dispatch"
	"modcmd/pkg/logger"
	"modcmd/pkg/version"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "modbot",
	Short: "modbot - a modular command bot for Discord",
	Long: `modbot hosts a tree of chat commands on Discord, invocable both as
prefixed text messages and as slash commands.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and serve commands",
	Long: `Connect to Discord and serve commands until interrupted.

Examples:
  # Run with the default config search paths
  modbot run

  # Run with an explicit config file
  modbot run -c /etc/modbot/config.json

  # Run with the token from the environment
  MODBOT_DISCORD_TOKEN=... modbot run`,
	Run: runBot,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetFullVersion())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func runBot(cmd *cobra.Command, args []string) {
	app := fx.New(
		fx.Supply(config.Params{ConfigPath: configPath}),
		config.Module,
		logger.Module,
		dispatch.Module,
		discord.Module,

		fx.Invoke(registerCommands),
		// The gateway only starts when something depends on it.
		fx.Invoke(func(*discord.Gateway) {}),
		fx.NopLogger, // Suppress fx logs
	)

	app.Run()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

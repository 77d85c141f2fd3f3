// Package cli implements the leadmate command-line interface.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/leadmate/leadmate/internal/cli.version=1.2.3"
	version = "0.4.0"
	logo    = "\n" +
		"  _                   _ __  __       _\n" +
		" | |    ___  __ _  __| |  \\/  | __ _| |_ ___\n" +
		" | |   / -_)/ _` |/ _` | |\\/| |/ _` |  _/ -_)\n" +
		" |_|___\\___|\\__,_|\\__,_|_|  |_|\\__,_|\\__\\___|\n"
)

var rootCmd = &cobra.Command{
	Use:   "leadmate",
	Short: "LeadMate - team assistant for managers",
	Long:  color.CyanString(logo) + "\nAn assistant that answers progress questions about your team and proposes actions you confirm before they run.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("leadmate " + version)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

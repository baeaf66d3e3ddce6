package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the supercal application
var rootCmd = &cobra.Command{
	Use:   "supercal",
	Short: "LLM-driven Google Calendar assistant",
	Long: `supercal is a calendar assistant backend. A language model agent answers
chat messages by calling Google Calendar tools (availability checks, event
creation, updates, deletion, search) and streams its progress to the client.

It can run as:
  - An HTTP server streaming chat responses over Server-Sent Events (default)
  - An MCP (Model Context Protocol) server exposing the calendar tools over stdio`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "supercal version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("supercal version %s\n", version)
		},
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for wikibridge.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikibridge",
		Short: "Find Grokipedia counterparts of Wikipedia articles",
		Long: `wikibridge checks whether the Wikipedia article you are reading has a
counterpart on Grokipedia.

"serve" runs the background bridge that page contexts talk to. "visit" and
"check" classify Wikipedia URLs and query the counterpart directly. The
auto-navigate preference is OFF after install and is flipped with "toggle".`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .wikibridge in current or home directory)")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVisitCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewToggleCmd())
	cmd.AddCommand(NewInstallCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

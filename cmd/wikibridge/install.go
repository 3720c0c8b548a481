package main

import (
	"github.com/spf13/cobra"
)

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Reset the auto-navigate preference and its control",
		Long: `Install writes the auto-navigate preference as OFF and registers the
"Auto-navigate to Grokipedia" control, replacing any existing one.

This runs automatically the first time a command opens the state database.`,
		Args: cobra.NoArgs,
		RunE: runInstallCmd,
	}

	addStateFlags(cmd)

	return cmd
}

// runInstallCmd executes the install command.
func runInstallCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	ctx, cancel := commandContext(cmd, toggleTimeout)
	defer cancel()

	st, err := openState(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.toggle.Install(ctx); err != nil {
		return err
	}

	printLabel(cmd.OutOrStdout(), false)
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nao1215/wikibridge/internal/bridge"
	"github.com/nao1215/wikibridge/internal/preference"
)

// toggleTimeout bounds one toggle operation.
const toggleTimeout = 10 * time.Second

// Toggle actions.
const (
	toggleOn     = "on"
	toggleOff    = "off"
	toggleStatus = "status"
)

// NewToggleCmd creates the toggle command.
func NewToggleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle [on|off|status]",
		Short: "Flip or show the auto-navigate preference",
		Long: `Toggle activates the "Auto-navigate to Grokipedia" control.

Without arguments the preference is flipped, exactly like clicking the
control, and the new label is printed. "on" and "off" set the preference
explicitly; "status" prints the current label.

Examples:
  # Flip the preference
  wikibridge toggle

  # Show the current state through a running bridge
  wikibridge toggle status --bridge 127.0.0.1:7878`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{toggleOn, toggleOff, toggleStatus},
		RunE:      runToggleCmd,
	}

	cmd.Flags().StringP("bridge", "b", "",
		"Use the preference of a running bridge at this address")
	addStateFlags(cmd)

	return cmd
}

// runToggleCmd executes the toggle command.
func runToggleCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	action := ""
	if len(args) == 1 {
		action = args[0]
	}

	bridgeAddr, err := cmd.Flags().GetString("bridge")
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, toggleTimeout)
	defer cancel()

	var on bool
	if bridgeAddr != "" {
		on, err = toggleRemote(ctx, bridge.NewClient(bridgeAddr), action)
	} else {
		st, openErr := openState(ctx, cfg, logger)
		if openErr != nil {
			return openErr
		}
		defer st.Close()
		on, err = toggleLocal(ctx, st.toggle, action)
	}
	if err != nil {
		return err
	}

	printLabel(cmd.OutOrStdout(), on)
	return nil
}

// toggleLocal applies action to the local preference and returns the
// resulting value.
func toggleLocal(ctx context.Context, t *preference.Toggle, action string) (bool, error) {
	switch action {
	case "":
		return t.Activate(ctx)
	case toggleOn, toggleOff:
		on := action == toggleOn
		if err := t.Set(ctx, on); err != nil {
			return false, err
		}
		return on, nil
	case toggleStatus:
		return t.Read(ctx), nil
	default:
		return false, fmt.Errorf("unknown toggle action %q", action)
	}
}

// toggleRemote applies action through a running bridge.
func toggleRemote(ctx context.Context, client *bridge.Client, action string) (bool, error) {
	switch action {
	case "":
		item, err := client.Activate(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to activate toggle: %w", err)
		}
		return item.AutoNavigate, nil
	case toggleOn, toggleOff:
		on := action == toggleOn
		if err := client.SetAutoNavigate(ctx, on); err != nil {
			return false, fmt.Errorf("failed to set auto-navigate: %w", err)
		}
		return on, nil
	case toggleStatus:
		item, err := client.Surface(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to read toggle: %w", err)
		}
		return item.AutoNavigate, nil
	default:
		return false, fmt.Errorf("unknown toggle action %q", action)
	}
}

func printLabel(w io.Writer, on bool) {
	if on {
		pterm.Success.WithWriter(w).Println(preference.Label(true))
		return
	}
	pterm.Info.WithWriter(w).Println(preference.Label(false))
}

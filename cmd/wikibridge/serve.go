package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/wikibridge/internal/bridge"
	"github.com/nao1215/wikibridge/internal/config"
	"github.com/nao1215/wikibridge/internal/preference"
	"github.com/nao1215/wikibridge/internal/router"
	"github.com/nao1215/wikibridge/internal/tab"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the background bridge",
		Long: `Serve runs the background context on a loopback HTTP bridge.

Page contexts send CHECK messages to POST /v1/messages with their tab id in
the X-Tab-Id header and receive exactly one response per message. The
bridge also exposes the auto-navigate preference, the toggle control and an
in-memory tab registry that acts as the navigator.

On first start the preference is installed as OFF.

Examples:
  # Serve on the default address
  wikibridge serve

  # Serve on another port with JSON logs
  wikibridge serve --listen 127.0.0.1:9000 --log-json`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress,
		"Address the bridge listens on")
	cmd.Flags().Duration("deadline", config.DefaultDeadline,
		"Deadline for one dispatched check, navigation included")
	addCheckerFlags(cmd)
	addStateFlags(cmd)

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ln, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddress, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return serve(gctx, cmd, cfg, logger, ln)
	})
	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig.String())
			cancel()
		case <-gctx.Done():
		}
		return nil
	})
	return g.Wait()
}

// serve wires the background context and serves the bridge on ln until ctx
// is cancelled.
func serve(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, ln net.Listener) error {
	st, err := openState(ctx, cfg, logger)
	if err != nil {
		ln.Close()
		return err
	}
	defer st.Close()

	checker, err := newChecker(cfg, logger)
	if err != nil {
		ln.Close()
		return err
	}

	tabs := tab.NewRegistry()
	background := router.NewBackground(checker, st.toggle, tabs,
		router.WithDeadline(cfg.Deadline),
		router.WithLogger(logger),
	)
	server := bridge.NewServer(background, st.toggle, st.menu, tabs,
		bridge.WithServerLogger(logger),
		bridge.WithAllowedOrigins(cfg.AllowedOrigins),
	)

	out := cmd.OutOrStdout()
	pterm.Info.WithWriter(out).Printfln("bridge listening on http://%s", ln.Addr().String())
	pterm.Info.WithWriter(out).Println(preference.Label(st.toggle.Read(ctx)))

	return server.Serve(ctx, ln)
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nao1215/wikibridge/internal/bridge"
	"github.com/nao1215/wikibridge/internal/config"
	"github.com/nao1215/wikibridge/internal/model"
	"github.com/nao1215/wikibridge/internal/notice"
	"github.com/nao1215/wikibridge/internal/router"
	"github.com/nao1215/wikibridge/internal/tab"
)

const (
	// defaultTab is the tab the CLI page context runs in.
	defaultTab = 1
	// pageMargin is how much longer the page context waits than the
	// background deadline, so the background's deadline response arrives.
	pageMargin = time.Second
)

// NewVisitCmd creates the visit command.
func NewVisitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visit <wikipedia-url>",
		Short: "Load a Wikipedia page the way the page context does",
		Long: `Visit runs the page-context logic for one page load.

The URL is classified; article pages send one CHECK message to the
background. When the counterpart exists and auto-navigate is ON the tab is
navigated to it (the system browser, or the bridge's tab registry with
--bridge). Otherwise a notice points at the counterpart.

Examples:
  # Check the article in-process and open the browser if auto-navigate is ON
  wikibridge visit https://en.wikipedia.org/wiki/Diplomacy

  # Send the page load to a running bridge
  wikibridge visit --bridge 127.0.0.1:7878 https://en.wikipedia.org/wiki/Diplomacy#History`,
		Args: cobra.ExactArgs(1),
		RunE: runVisitCmd,
	}

	cmd.Flags().StringP("bridge", "b", "",
		"Send the message to a running bridge at this address instead of checking in-process")
	cmd.Flags().Int("tab", defaultTab,
		"Tab id of the page context (with --bridge, a new tab is opened when unset)")
	cmd.Flags().Duration("deadline", config.DefaultDeadline,
		"Deadline for the check, navigation included")
	addCheckerFlags(cmd)
	addStateFlags(cmd)

	return cmd
}

// runVisitCmd executes the visit command.
func runVisitCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	tabFlag, err := cmd.Flags().GetInt("tab")
	if err != nil {
		return err
	}
	bridgeAddr, err := cmd.Flags().GetString("bridge")
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, pageDeadline(cfg.Deadline))
	defer cancel()

	location := args[0]
	out := cmd.OutOrStdout()

	if bridgeAddr != "" {
		client := bridge.NewClient(bridgeAddr)
		id := tab.ID(tabFlag)
		if !cmd.Flags().Changed("tab") {
			opened, err := client.OpenTab(ctx, location)
			if err != nil {
				return fmt.Errorf("failed to open tab: %w", err)
			}
			id = opened.ID
		}
		resp, err := visit(ctx, out, logger, cfg, client, id, location)
		if err != nil {
			return err
		}
		if resp != nil && resp.Navigated {
			current, err := client.Tab(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to read tab %s: %w", id, err)
			}
			pterm.Success.WithWriter(out).Printfln("tab %s is now at %s", id, current.URL)
		}
		return nil
	}

	st, err := openState(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	checker, err := newChecker(cfg, logger)
	if err != nil {
		return err
	}
	background := router.NewBackground(checker, st.toggle, tab.NewSystemBrowser(),
		router.WithDeadline(cfg.Deadline),
		router.WithLogger(logger),
	)

	resp, err := visit(ctx, out, logger, cfg, router.NewLocalTransport(background), tab.ID(tabFlag), location)
	if err != nil {
		return err
	}
	if resp != nil && resp.Navigated && resp.URL != nil {
		pterm.Success.WithWriter(out).Printfln("opened %s", *resp.URL)
	}
	return nil
}

// pageDeadline returns how long the page context waits for a background
// bounded by deadline.
func pageDeadline(deadline time.Duration) time.Duration {
	return deadline + pageMargin
}

// visit runs one page load through transport and reports outcomes the
// notice does not cover. It returns the response, or nil when the page was
// not an article.
func visit(
	ctx context.Context,
	out io.Writer,
	logger *slog.Logger,
	cfg *config.Config,
	transport router.Transport,
	id tab.ID,
	location string,
) (*model.Response, error) {
	rec := &recordingTransport{Transport: transport}
	page := router.NewPage(newClassifier(cfg), rec,
		router.NewReceiver(notice.NewTerminalPresenter(out), logger))

	if !page.Visit(ctx, id, location) {
		pterm.Info.WithWriter(out).Printfln("not an article page: %s", location)
		return nil, nil
	}
	if rec.err != nil {
		return nil, fmt.Errorf("no response from background: %w", rec.err)
	}
	if rec.resp == nil {
		return nil, fmt.Errorf("no response from background for %s", location)
	}

	switch rec.resp.Status {
	case model.StatusNotFound:
		pterm.Info.WithWriter(out).Println("no counterpart article on Grokipedia")
	case model.StatusError:
		msg := "unknown error"
		if rec.resp.Error != nil {
			msg = *rec.resp.Error
		}
		pterm.Error.WithWriter(out).Printfln("counterpart check failed: %s", msg)
	case model.StatusFound, model.StatusLoginRequired:
	}
	return rec.resp, nil
}

// recordingTransport remembers the last response it carried.
type recordingTransport struct {
	router.Transport
	resp *model.Response
	err  error
}

func (t *recordingTransport) Send(ctx context.Context, from tab.ID, msg model.Request) (*model.Response, error) {
	t.resp, t.err = t.Transport.Send(ctx, from, msg)
	return t.resp, t.err
}

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cfgschema/schemac/internal/cli/ui"
	"github.com/cfgschema/schemac/internal/watch"
	"github.com/cfgschema/schemac/internal/web/server"
)

type watchOptions struct {
	serve bool
	addr  string
}

// NewWatchCommand creates the watch command
func NewWatchCommand(global *globalOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [definitions-dir]",
		Short: "Recompile whenever a definition document or fragment changes",
		Long: `Watch the definitions directory and recompile after every change.

Only documents whose expanded text changed are rebuilt; a change to an
include fragment rebuilds every document that includes it. A failing
rebuild is reported and the last good schema is kept.

With --serve the current schema is also served over HTTP, and rebuild
events are pushed to websocket clients at /events.`,
		Example: `  # Watch the configured definitions directory
  schemac watch

  # Watch and serve the schema on the configured address
  schemac watch --serve

  # Serve on a custom address
  schemac watch --serve --addr 127.0.0.1:9000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, global, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.serve, "serve", false, "Serve the current schema over HTTP")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (overrides config)")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, global *globalOptions, opts *watchOptions, args []string) error {
	e, err := global.setup(cmd)
	if err != nil {
		return err
	}

	driverOpts, err := e.driverOptions()
	if err != nil {
		return err
	}

	var hub *watch.EventHub
	if opts.serve {
		hub = watch.NewEventHub(e.logger)
		defer hub.Close()
	}

	dir := e.dir(args)
	session, err := watch.NewSession(watch.SessionConfig{
		Dir:      dir,
		Debounce: e.cfg.Watch.Debounce,
		Options:  driverOpts,
		Hub:      hub,
		OnResult: func(result *watch.Result, err error) {
			reportRebuild(e, result, err)
		},
	})
	if err != nil {
		return err
	}

	if err := session.Start(ctx); err != nil {
		return err
	}
	defer session.Stop()

	banner := color.New(color.FgCyan, color.Bold)
	if e.noColor {
		banner.DisableColor()
	}
	fmt.Fprintln(e.out)
	banner.Fprintf(e.out, "Watching %s\n", dir)

	if !opts.serve {
		fmt.Fprint(e.out, ui.Info("Press Ctrl+C to stop", e.noColor))
		<-ctx.Done()
		return nil
	}

	addr := e.cfg.Serve.Addr
	if opts.addr != "" {
		addr = opts.addr
	}

	srv, err := server.New(server.DefaultConfig(addr, server.NewHandler(session.Rebuilder(), server.HandlerOptions{
		Events: hub,
		Logger: e.logger,
	})))
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		return err
	}
	srv.RegisterHook(func(context.Context) error {
		hub.Close()
		return session.Stop()
	})

	fmt.Fprintf(e.out, "   Schema: http://%s/schema\n", srv.Addr())
	fmt.Fprintf(e.out, "   Events: ws://%s/events\n", srv.Addr())
	fmt.Fprint(e.out, ui.Info("Press Ctrl+C to stop", e.noColor))

	return srv.Run(ctx)
}

// reportRebuild prints one line per rebuild, or the diagnostic of a failure
func reportRebuild(e *env, result *watch.Result, err error) {
	if err != nil {
		ui.WriteDiagnostic(e.errOut, err, e.noColor)
		return
	}

	ui.WriteSuccess(e.out, fmt.Sprintf("Compiled %d document(s) in %s (%d reused, %d tags, %.12s)",
		result.Metrics.TotalFiles,
		result.Duration.Round(time.Millisecond),
		result.Metrics.CacheHits,
		len(result.Schema.Tags),
		result.Fingerprint,
	), e.noColor)
}

package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cfgschema/schemac/internal/cli/ui"
	"github.com/cfgschema/schemac/internal/web/server"
)

type serveOptions struct {
	addr string
}

// NewServeCommand creates the serve command
func NewServeCommand(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve [definitions-dir]",
		Short: "Compile once and serve the schema over HTTP",
		Long: `Compile the definitions directory and serve the resulting schema as
read-only JSON:

  /schema       full dump (?format=yaml for YAML)
  /summary      counts and fingerprint
  /nodes/...    one node, path segments separated by slashes
  /tags /owners /priorities /defaults /versions
  /healthz

Use "schemac watch --serve" to recompile on change.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := global.setup(cmd)
			if err != nil {
				return err
			}

			schema, _, err := e.compile(cmd.Context(), e.dir(args))
			if err != nil {
				return err
			}

			addr := e.cfg.Serve.Addr
			if opts.addr != "" {
				addr = opts.addr
			}

			handler := server.NewHandler(server.StaticSource{Schema: schema}, server.HandlerOptions{Logger: e.logger})
			srv, err := server.New(server.DefaultConfig(addr, handler))
			if err != nil {
				return err
			}
			if err := srv.Listen(); err != nil {
				return err
			}

			fmt.Fprintf(e.out, "Serving %d nodes at http://%s/schema\n", len(schema.Tags), srv.Addr())
			fmt.Fprint(e.out, ui.Info("Press Ctrl+C to stop", e.noColor))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (overrides config)")

	return cmd
}

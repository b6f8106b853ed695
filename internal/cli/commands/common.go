package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cfgschema/schemac/internal/cli/config"
	"github.com/cfgschema/schemac/internal/cli/ui"
	"github.com/cfgschema/schemac/internal/compiler/ast"
	"github.com/cfgschema/schemac/internal/compiler/driver"
	"github.com/cfgschema/schemac/internal/compiler/merge"
	"github.com/cfgschema/schemac/internal/logging"
)

// env is what a command needs after the global flags are applied
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	noColor bool
	out     io.Writer
	errOut  io.Writer
}

// setup loads the configuration and builds the logger. Flags override the
// configuration file.
func (g *globalOptions) setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), g.noColor))
		return nil, errReported
	}

	if g.definitions != "" {
		cfg.Definitions = g.definitions
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:     cfg,
		logger:  logger,
		noColor: g.noColor,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}, nil
}

// dir returns the definitions directory: the positional argument when given,
// the configured one otherwise.
func (e *env) dir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return e.cfg.Definitions
}

// driverOptions maps the configuration onto compiler options
func (e *env) driverOptions() (driver.Options, error) {
	policy, err := merge.ParseRootPolicy(e.cfg.Merge.RootPolicy)
	if err != nil {
		return driver.Options{}, err
	}
	return driver.Options{
		Pattern:    e.cfg.Pattern,
		Folder:     e.cfg.Include.Folder,
		MaxDepth:   e.cfg.Include.MaxDepth,
		RootPolicy: policy,
		Logger:     e.logger,
	}, nil
}

// compile compiles dir, printing the diagnostic on failure
func (e *env) compile(ctx context.Context, dir string) (*ast.Schema, driver.Metrics, error) {
	opts, err := e.driverOptions()
	if err != nil {
		return nil, driver.Metrics{}, err
	}

	c := driver.New(opts)
	schema, err := c.Compile(ctx, dir)
	if err != nil {
		ui.WriteDiagnostic(e.errOut, err, e.noColor)
		return nil, c.Metrics(), errReported
	}
	return schema, c.Metrics(), nil
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cfgschema/schemac/compiler/errors"
	"github.com/cfgschema/schemac/internal/cli/ui"
	"github.com/cfgschema/schemac/internal/compiler/driver"
)

type checkOptions struct {
	json bool
}

// NewCheckCommand creates the check command
func NewCheckCommand(global *globalOptions) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [definitions-dir]",
		Short: "Validate definition documents without writing a schema",
		Long: `Check every definition document on its own and report all failures at
once. When every document is valid on its own, the documents are merged to
report conflicts between them.`,
		Example: `  schemac check
  schemac check ./interface-definitions --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, global, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "Output diagnostics in JSON format")

	return cmd
}

func runCheck(cmd *cobra.Command, global *globalOptions, opts *checkOptions, args []string) error {
	e, err := global.setup(cmd)
	if err != nil {
		return err
	}

	driverOpts, err := e.driverOptions()
	if err != nil {
		return err
	}
	c := driver.New(driverOpts)
	dir := e.dir(args)

	documents, err := c.Documents(dir)
	if err != nil {
		return err
	}

	recovery := errors.NewErrorRecovery()
	if len(documents) == 0 {
		recovery.Recover(errors.Newf(errors.PhaseDriver, errors.ErrNoDocuments, errors.SourceLocation{File: dir},
			"no documents matching %q", driverOpts.Pattern))
	}
	for _, doc := range documents {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		_, err := c.CompileDocument(doc)
		recovery.RecoverError(doc, err)
	}

	// Conflicts between documents only show once each document is valid
	if !recovery.HasErrors() {
		_, err := c.CompileFiles(cmd.Context(), documents)
		recovery.RecoverError(dir, err)
	}

	if opts.json {
		out, err := recovery.FormatAsJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(e.out, out)
	} else if recovery.HasErrors() {
		out := recovery.FormatForTerminal()
		if e.noColor {
			out = errors.StripColors(out)
		}
		fmt.Fprint(e.errOut, out)
	}

	if recovery.HasErrors() {
		return errReported
	}

	if !opts.json {
		ui.WriteSuccess(e.out, fmt.Sprintf("%d document(s) OK", len(documents)), e.noColor)
	}
	return nil
}

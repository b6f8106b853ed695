package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cfgschema/schemac/compiler/errors"
	"github.com/cfgschema/schemac/internal/cli/ui"
	"github.com/cfgschema/schemac/internal/compiler/driver"
	"github.com/cfgschema/schemac/internal/compiler/metadata"
)

type buildOptions struct {
	format      string
	output      string
	compress    bool
	fingerprint bool
	json        bool
	verbose     bool
}

// NewBuildCommand creates the build command
func NewBuildCommand(global *globalOptions) *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build [definitions-dir]",
		Short: "Compile definition documents into a schema",
		Long: `Compile every definition document in the definitions directory and write
the resulting schema.

The build process:
  1. Preprocessing - expand #include directives and {placeholders}
  2. Parsing - read each expanded document as XML
  3. Building - check elements and collect tags, owners and defaults
  4. Merging - fold documents into one schema in file name order

Without an output path the schema is written to standard output.`,
		Example: `  # Build the configured definitions directory to stdout
  schemac build

  # Build another directory as YAML into a file
  schemac build ./interface-definitions --format yaml -o schema.yaml

  # Write a gzip compressed artifact and print its fingerprint
  schemac build -o schema.json --compress --fingerprint

  # Report errors as JSON (useful for tooling)
  schemac build --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, global, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: json or yaml (overrides config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output path (overrides config, default: stdout)")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "Gzip the written schema")
	cmd.Flags().BoolVar(&opts.fingerprint, "fingerprint", false, "Print the schema fingerprint")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output errors in JSON format")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show build statistics")

	return cmd
}

func runBuild(cmd *cobra.Command, global *globalOptions, opts *buildOptions, args []string) error {
	e, err := global.setup(cmd)
	if err != nil {
		return err
	}

	formatName := e.cfg.Output.Format
	if opts.format != "" {
		formatName = opts.format
	}
	format, err := metadata.ParseFormat(formatName)
	if err != nil {
		return err
	}

	output := e.cfg.Output.Path
	if opts.output != "" {
		output = opts.output
	}
	compress := opts.compress || e.cfg.Output.Compress
	if compress && output == "" {
		return fmt.Errorf("--compress needs an output path")
	}

	driverOpts, err := e.driverOptions()
	if err != nil {
		return err
	}

	c := driver.New(driverOpts)
	schema, err := c.Compile(cmd.Context(), e.dir(args))
	if err != nil {
		if opts.json {
			ce, ok := errors.As(err)
			if !ok {
				ce = errors.Newf(errors.PhaseDriver, errors.ErrReadFailed, errors.SourceLocation{}, "%v", err)
			}
			out, jsonErr := errors.FormatErrorsAsJSON([]errors.CompilerError{ce})
			if jsonErr != nil {
				return jsonErr
			}
			fmt.Fprintln(e.out, out)
		} else {
			ui.WriteDiagnostic(e.errOut, err, e.noColor)
		}
		return errReported
	}

	// Status lines go to stderr when the schema itself goes to stdout
	status := e.out
	if output == "" {
		data, err := metadata.Render(schema, format)
		if err != nil {
			return err
		}
		if _, err := e.out.Write(data); err != nil {
			return err
		}
		status = e.errOut
	} else {
		if err := metadata.WriteToFile(schema, format, output, compress); err != nil {
			return err
		}
		ui.WriteSuccess(status, fmt.Sprintf("Wrote %s", output), e.noColor)
	}

	if opts.fingerprint {
		fingerprint, err := metadata.Fingerprint(schema)
		if err != nil {
			return err
		}
		fmt.Fprintln(status, fingerprint)
	}

	if opts.verbose {
		m := c.Metrics()
		ui.Header(status, "Build statistics", e.noColor)
		table := ui.NewKeyValueTable(status, e.noColor)
		table.AddRow("Run", m.RunID)
		table.AddRow("Documents", strconv.Itoa(m.TotalFiles))
		table.AddRow("Tags", strconv.Itoa(m.Tags))
		table.AddRow("Preprocess", m.PreprocessDuration.String())
		table.AddRow("Parse", m.ParseDuration.String())
		table.AddRow("Build", m.BuildDuration.String())
		table.AddRow("Merge", m.MergeDuration.String())
		table.AddRow("Total", m.TotalDuration.String())
		table.Render()
	}

	return nil
}

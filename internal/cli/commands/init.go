package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/cfgschema/schemac/internal/cli/config"
	"github.com/cfgschema/schemac/internal/cli/ui"
	"github.com/cfgschema/schemac/internal/compiler/merge"
	"github.com/cfgschema/schemac/internal/compiler/metadata"
)

type initOptions struct {
	yes   bool
	force bool
}

// NewInitCommand creates the init command
func NewInitCommand(global *globalOptions) *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a schemac.yaml for the current directory",
		Long: `Write a schemac.yaml configuration file, prompting for the definitions
directory, the document pattern, the root merge policy and the output
format. The definitions directory is created when missing.

Use --yes to accept every default without prompting.`,
		Example: `  schemac init
  schemac init --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, global, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Accept defaults without prompting")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, global *globalOptions, opts *initOptions) error {
	path := global.configFile
	if path == "" {
		path = config.FileName
	}

	if _, err := os.Stat(path); err == nil && !opts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.Default()
	if global.definitions != "" {
		cfg.Definitions = global.definitions
	}

	if !opts.yes {
		if err := askConfig(cfg); err != nil {
			return err
		}
	}

	if err := config.Save(cfg, path); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Definitions, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", cfg.Definitions, err)
	}

	ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Wrote %s", filepath.Clean(path)), global.noColor)
	return nil
}

// askConfig prompts for the settings a new project usually changes
func askConfig(cfg *config.Config) error {
	answers := struct {
		Definitions string
		Pattern     string
		RootPolicy  string
		Format      string
		Output      string
	}{}

	questions := []*survey.Question{
		{
			Name: "definitions",
			Prompt: &survey.Input{
				Message: "Definitions directory:",
				Default: cfg.Definitions,
			},
			Validate: survey.Required,
		},
		{
			Name: "pattern",
			Prompt: &survey.Input{
				Message: "Document pattern:",
				Default: cfg.Pattern,
			},
			Validate: survey.ComposeValidators(survey.Required, func(ans interface{}) error {
				if _, err := filepath.Match(fmt.Sprint(ans), ""); err != nil {
					return fmt.Errorf("not a valid glob: %w", err)
				}
				return nil
			}),
		},
		{
			Name: "rootPolicy",
			Prompt: &survey.Select{
				Message: "Documents sharing a top-level node:",
				Options: []string{string(merge.RootPolicyRecursive), string(merge.RootPolicyPartition)},
				Default: cfg.Merge.RootPolicy,
				Description: func(value string, index int) string {
					if value == string(merge.RootPolicyPartition) {
						return "reject"
					}
					return "merge recursively"
				},
			},
		},
		{
			Name: "format",
			Prompt: &survey.Select{
				Message: "Output format:",
				Options: []string{string(metadata.FormatJSON), string(metadata.FormatYAML)},
				Default: cfg.Output.Format,
			},
		},
		{
			Name: "output",
			Prompt: &survey.Input{
				Message: "Output path (empty for stdout):",
				Default: cfg.Output.Path,
			},
		},
	}

	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	cfg.Definitions = answers.Definitions
	cfg.Pattern = answers.Pattern
	cfg.Merge.RootPolicy = answers.RootPolicy
	cfg.Output.Format = answers.Format
	cfg.Output.Path = answers.Output
	return nil
}

package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cfgschema/schemac/internal/cli/ui"
	"github.com/cfgschema/schemac/internal/compiler/ast"
)

// indexCommand builds a command that compiles the definitions directory and
// prints one of the schema indices.
func indexCommand(global *globalOptions, use, short string, render func(e *env, schema *ast.Schema)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := global.setup(cmd)
			if err != nil {
				return err
			}
			schema, _, err := e.compile(cmd.Context(), e.cfg.Definitions)
			if err != nil {
				return err
			}
			render(e, schema)
			return nil
		},
	}
}

// NewTagsCommand creates the tags command
func NewTagsCommand(global *globalOptions) *cobra.Command {
	return indexCommand(global, "tags", "List every node path in declaration order",
		func(e *env, schema *ast.Schema) {
			for _, tag := range schema.Tags {
				fmt.Fprintln(e.out, tag)
			}
		})
}

// NewOwnersCommand creates the owners command
func NewOwnersCommand(global *globalOptions) *cobra.Command {
	return indexCommand(global, "owners", "List the nodes that name an owner script",
		func(e *env, schema *ast.Schema) {
			table := ui.NewTable(e.out, []string{"PATH", "OWNER"}, &ui.TableOptions{NoColor: e.noColor})
			for _, path := range schema.OwnerPaths() {
				table.AddRow(path, schema.Owners[path])
			}
			table.Render()
		})
}

// NewPrioritiesCommand creates the priorities command
func NewPrioritiesCommand(global *globalOptions) *cobra.Command {
	return indexCommand(global, "priorities", "List commit priorities, lowest first",
		func(e *env, schema *ast.Schema) {
			table := ui.NewTable(e.out, []string{"PRIORITY", "PATH"}, &ui.TableOptions{
				NoColor: e.noColor,
				Align:   []ui.Alignment{ui.AlignRight, ui.AlignLeft},
			})
			for _, level := range schema.PriorityLevels() {
				for _, path := range schema.Priorities[level] {
					table.AddRow(strconv.Itoa(level), path)
				}
			}
			table.Render()
		})
}

// NewVersionsCommand creates the versions command
func NewVersionsCommand(global *globalOptions) *cobra.Command {
	return indexCommand(global, "versions", "List component syntax versions",
		func(e *env, schema *ast.Schema) {
			table := ui.NewTable(e.out, []string{"COMPONENT", "VERSION"}, &ui.TableOptions{NoColor: e.noColor})
			for _, component := range schema.Components() {
				table.AddRow(component, schema.ComponentVersions[component])
			}
			table.Render()
		})
}

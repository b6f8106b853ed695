package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cfgschema/schemac/internal/cli/ui"
	"github.com/cfgschema/schemac/internal/compiler/ast"
)

type showOptions struct {
	json bool
}

// NewShowCommand creates the show command
func NewShowCommand(global *globalOptions) *cobra.Command {
	opts := &showOptions{}

	cmd := &cobra.Command{
		Use:   "show [path...]",
		Short: "Show one node of the compiled schema",
		Long: `Compile the definitions directory and describe the node at the given
path. Path segments may be given as separate arguments or as one quoted,
space separated argument. Without a path the top-level nodes are listed.`,
		Example: `  schemac show interfaces ethernet
  schemac show "system host-name"
  schemac show service ssh port --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, global, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "Output the node subtree as JSON")

	return cmd
}

func runShow(cmd *cobra.Command, global *globalOptions, opts *showOptions, args []string) error {
	e, err := global.setup(cmd)
	if err != nil {
		return err
	}

	schema, _, err := e.compile(cmd.Context(), e.cfg.Definitions)
	if err != nil {
		return err
	}

	path := ast.SplitPath(strings.Join(args, " "))
	node := schema.Lookup(path...)
	if node == nil {
		suggestions := ui.SuggestPaths(path, schema.Root.Paths())
		fmt.Fprint(e.errOut, ui.NodeNotFoundError(ast.JoinPath(path), suggestions, e.noColor))
		return errReported
	}

	if opts.json {
		data, err := json.MarshalIndent(node, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(e.out, string(data))
		return nil
	}

	title := ast.JoinPath(path)
	if title == "" {
		title = "(root)"
	}
	ui.Header(e.out, title, e.noColor)

	table := ui.NewKeyValueTable(e.out, e.noColor)
	if len(path) > 0 {
		table.AddRow("Kind", node.Kind.String())
	}
	table.AddRowIf("Owner", node.Owner)
	if node.Help != nil {
		table.AddRowIf("Help", node.Help.Summary)
		for _, vh := range node.Help.ValueHelp {
			table.AddRow("Value", fmt.Sprintf("%s  %s", vh.Format, vh.Description))
		}
	}
	if c := node.Constraint; c != nil {
		for _, re := range c.Regex {
			table.AddRow("Regex", re)
		}
		for _, v := range c.Validators {
			table.AddRow("Validator", strings.TrimSpace(v.Name+" "+v.Argument))
		}
	}
	table.AddRowIf("Error message", node.ErrorMessage)
	if c := node.Completion; c != nil {
		table.AddRowIf("Completion", strings.Join(c.List, " "))
		table.AddRowIf("Completion path", strings.Join(c.Path, " "))
		table.AddRowIf("Completion script", strings.Join(c.Script, "; "))
	}
	if node.Priority != nil {
		table.AddRow("Priority", strconv.Itoa(*node.Priority))
	}
	if value, ok := schema.Default(path...); ok {
		table.AddRow("Default", strconv.Quote(value))
	}
	var flags []string
	if node.Multi {
		flags = append(flags, "multi")
	}
	if node.Valueless {
		flags = append(flags, "valueless")
	}
	if node.Hidden {
		flags = append(flags, "hidden")
	}
	table.AddRowIf("Flags", strings.Join(flags, ", "))
	table.AddRowIf("Children", strings.Join(node.SortedChildNames(), " "))
	table.Render()

	return nil
}

package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelgraph/pkg/errors"
	pkgio "github.com/matzehuels/modelgraph/pkg/io"
	"github.com/matzehuels/modelgraph/pkg/model"
	"github.com/matzehuels/modelgraph/pkg/pipeline"
	"github.com/matzehuels/modelgraph/pkg/render/nodelink"
)

// inspectCommand prints the interpreted layer table without rendering.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		channels int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <model.yaml>",
		Short: "Print the interpreted layers, channels and edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), args[0], channels, asJSON)
		},
	}

	cmd.Flags().IntVarP(&channels, "channels", "c", model.DefaultInputChannels, "input channel count")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the graph as JSON")

	return cmd
}

func runInspect(ctx context.Context, input string, channels int, asJSON bool) error {
	if err := errors.ValidateInputChannels(channels); err != nil {
		return err
	}
	data, docFormat, err := pkgio.ReadSource(input)
	if err != nil {
		return err
	}
	_, res, err := pipeline.Interpret(ctx, pipeline.Options{
		Source:        data,
		DocFormat:     docFormat,
		InputChannels: channels,
		Logger:        loggerFromContext(ctx),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	if asJSON {
		return pkgio.WriteJSON(res, out)
	}
	printInspect(input, res)
	return nil
}

func printInspect(input string, res *model.Result) {
	fmt.Fprintln(out, StyleTitle.Render(input))
	printKeyValue("Input", strconv.Itoa(res.InputChannels())+" channels")
	printKeyValue("Layers", strconv.Itoa(len(res.Layers)))
	printKeyValue("Backbone", strconv.Itoa(res.BackboneLen))
	printNewline()

	if len(res.Layers) > 0 {
		fmt.Fprintln(out, layerTable(res))
		printNewline()
	}

	links := nodelink.ResolveEdges(res.Layers, res.Edges)
	edges := make([]string, len(links))
	for i, l := range links {
		edges[i] = l.From + "→" + l.To
	}
	printKeyValue("Edges", strconv.Itoa(len(links)))
	if len(edges) > 0 {
		printDetail("%s", strings.Join(edges, "  "))
	}
}

func layerTable(res *model.Result) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	fallbackStyle := cellStyle.Foreground(colorYellow)

	backbone, neck, _ := nodelink.Partition(res.Layers, res.BackboneLen)
	cluster := func(i int) string {
		switch {
		case i < len(backbone):
			return "backbone"
		case i < len(backbone)+len(neck):
			return "neck"
		}
		return "head"
	}

	rows := make([][]string, len(res.Layers))
	fallback := make([]bool, len(res.Layers))
	for i, l := range res.Layers {
		from := make([]string, len(l.Inputs))
		for j, in := range l.Inputs {
			from[j] = strconv.Itoa(in.Source)
			if in.Fallback {
				from[j] += "?"
				fallback[i] = true
			}
		}
		rows[i] = []string{
			strconv.Itoa(l.Index),
			cluster(i),
			strings.Join(from, ","),
			l.Module,
			l.Kind.String(),
			fmt.Sprintf("%d → %d", l.InChannels(), l.Channels),
			strconv.Itoa(l.Repeat),
			model.FormatArgs(l.Args),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Cluster", "From", "Module", "Kind", "Channels", "n", "Args").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(fallback) && fallback[row] && col == 2 {
				return fallbackStyle
			}
			return cellStyle
		})
	return t.Render()
}

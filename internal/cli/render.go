package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modelgraph/pkg/errors"
	pkgio "github.com/matzehuels/modelgraph/pkg/io"
	"github.com/matzehuels/modelgraph/pkg/model"
	"github.com/matzehuels/modelgraph/pkg/pipeline"
	"github.com/matzehuels/modelgraph/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the root command.
type renderOpts struct {
	format   string // output format: svg, png, jpg, pdf, dot, json
	channels int    // input channel count
	noCache  bool   // bypass the artifact cache
	refresh  bool   // re-render even when cached
}

// renderCommand creates the root command that converts a description file
// to a diagram.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		format:   pipeline.DefaultFormat,
		channels: model.DefaultInputChannels,
	}

	cmd := &cobra.Command{
		Use:   appName + " <model.yaml> [out_name]",
		Short: "Render a model architecture description as a color-coded graph",
		Long: `modelgraph reads a layer-list model description (depth_multiple,
width_multiple, backbone and head) and draws it as a Graphviz diagram with
Backbone, Neck and Head clusters, one node per layer and one color per
module type.

The output is written to <out_name>.<format> (default model_graph.svg).`,
		Example: `  modelgraph yolov5s.yaml
  modelgraph yolov5s.yaml diagrams/yolov5s --format png
  modelgraph model.toml --format json --channels 1`,
		Args:         cobra.MaximumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			outName := defaultOutName
			if len(args) > 1 && !strings.HasPrefix(args[1], "--") {
				outName = args[1]
			}
			return c.runRender(cmd.Context(), args[0], outName, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: "+strings.Join(pipeline.ValidFormats, ", "))
	cmd.Flags().IntVarP(&opts.channels, "channels", "c", opts.channels, "input channel count shown on the Input node")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if a cached artifact exists")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")

	return cmd
}

// runRender executes the conversion and writes the output file.
func (c *CLI) runRender(ctx context.Context, input, outName string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	format := pipeline.NormalizeFormat(opts.format)
	if err := pipeline.ValidateFormat(format); err != nil {
		return err
	}
	if err := errors.ValidateInputChannels(opts.channels); err != nil {
		return err
	}
	if err := errors.ValidateOutputPath(outName); err != nil {
		return err
	}

	data, docFormat, err := pkgio.ReadSource(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Source:        data,
		DocFormat:     docFormat,
		Format:        format,
		InputChannels: opts.channels,
		Refresh:       opts.refresh,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	path := nodelink.OutputPath(outName, format)
	if err := nodelink.WriteFile(path, result.Artifact); err != nil {
		return err
	}
	prog.done("wrote " + path)

	printSuccess("Saved color-coded graph to %s", path)
	printStats(result.Stats.LayerCount, result.Stats.EdgeCount, result.CacheHit)
	if result.Stats.Fallbacks > 0 {
		printWarning("%d source reference(s) name no earlier layer; see `%s inspect %s`", result.Stats.Fallbacks, appName, input)
	}
	return nil
}

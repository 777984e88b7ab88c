package pipeline

import (
	"context"
	"time"

	pkgio "github.com/matzehuels/modelgraph/pkg/io"
	"github.com/matzehuels/modelgraph/pkg/model"
	"github.com/matzehuels/modelgraph/pkg/observability"
)

// Interpret decodes the source document and interprets it.
func Interpret(ctx context.Context, opts Options) (*model.Config, *model.Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnInterpretStart(ctx, string(opts.DocFormat))
	start := time.Now()

	cfg, err := pkgio.DecodeModel(opts.Source, opts.DocFormat)
	if err != nil {
		hooks.OnInterpretComplete(ctx, 0, time.Since(start), err)
		return nil, nil, err
	}
	res := model.Interpret(cfg, opts.InputChannels)

	hooks.OnInterpretComplete(ctx, len(res.Layers), time.Since(start), nil)
	return cfg, res, nil
}

// countFallbacks returns how many channel lookups reused the last value
// because their source index did not exist.
func countFallbacks(res *model.Result) int {
	n := 0
	for _, l := range res.Layers {
		for _, in := range l.Inputs {
			if in.Fallback {
				n++
			}
		}
	}
	return n
}

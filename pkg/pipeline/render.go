package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	pkgio "github.com/matzehuels/modelgraph/pkg/io"
	"github.com/matzehuels/modelgraph/pkg/model"
	"github.com/matzehuels/modelgraph/pkg/observability"
	"github.com/matzehuels/modelgraph/pkg/render/nodelink"
)

// Render encodes an interpreted model in the given format. JSON is the
// model export; every other format goes through Graphviz.
func Render(ctx context.Context, res *model.Result, format string, palette []string) ([]byte, error) {
	format = NormalizeFormat(format)
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	data, err := render(ctx, res, format, palette)
	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	return data, err
}

func render(ctx context.Context, res *model.Result, format string, palette []string) ([]byte, error) {
	if format == FormatJSON {
		var buf bytes.Buffer
		if err := pkgio.WriteJSON(res, &buf); err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return buf.Bytes(), nil
	}
	dot := nodelink.ToDOT(res, nodelink.Options{Palette: palette})
	return nodelink.Render(ctx, dot, format)
}

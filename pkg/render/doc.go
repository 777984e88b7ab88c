// Package render provides output format conversion for model graphs.
//
// # Overview
//
// Graph layout and SVG/PNG/JPG output happen in-process in the [nodelink]
// subpackage. This package covers the formats Graphviz does not produce on
// its own:
//
//	svg, err := nodelink.Render(ctx, dot, nodelink.FormatSVG)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [ToPDF] shells out to rsvg-convert (from librsvg). Its absence is reported
// as an error with install instructions.
//
// [nodelink]: github.com/matzehuels/modelgraph/pkg/render/nodelink
package render

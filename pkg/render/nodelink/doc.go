// Package nodelink renders interpreted model graphs as node-link diagrams.
//
// # Overview
//
// This package turns a [model.Result] into Graphviz DOT source and renders
// it in-process. Layers flow top to bottom with orthogonal edges, starting
// from a synthetic "Input" node. Nodes are grouped into three clusters:
//
//   - Backbone: the layers declared under backbone
//   - Neck: every head layer except the last
//   - Head: the final layer, drawn wider
//
// # Usage
//
//	res := model.Interpret(cfg, 3)
//	dot := nodelink.ToDOT(res, nodelink.Options{})
//	svg, err := nodelink.Render(ctx, dot, nodelink.FormatSVG)
//
// Or write straight to <base>.<format>:
//
//	path, err := nodelink.Export(ctx, res, nodelink.Options{}, "out/yolov5s", "png")
//
// # Colors
//
// Each distinct module type gets the next unused color of the palette in
// first-seen order, cycling when there are more types than colors. The
// assignment depends only on layer order, so identical inputs produce
// identical diagrams.
//
// # Edges
//
// Edges are deduplicated by their endpoint identifiers ("L<k>" or "Input").
// A source that names no known layer is drawn from "Input"; edges into an
// unknown layer are dropped.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG, PNG
// and JPG rendering. PDF conversion requires librsvg (rsvg-convert).
package nodelink

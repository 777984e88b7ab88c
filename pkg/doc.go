// Package pkg holds the modelgraph libraries.
//
// modelgraph turns a layer-list architecture description (the
// depth_multiple / width_multiple / backbone / head format used by
// YOLO-family models) into a color-coded Graphviz diagram.
//
//	description (YAML / TOML / JSON)
//	         ↓
//	    [io] decode into model.Config
//	         ↓
//	    [model] interpret: layers, channels, edges
//	         ↓
//	    [render/nodelink] DOT with Backbone / Neck / Head clusters
//	         ↓
//	    SVG / PNG / JPG / PDF / DOT / JSON
//
// [pipeline] runs these stages behind an artifact [cache]; [errors] carries
// coded errors and [observability] exposes hooks for both.
//
// Quick start:
//
//	cfg, err := io.ImportModel("yolov5s.yaml")
//	if err != nil {
//	    return err
//	}
//	res := model.Interpret(cfg, 3)
//	path, err := nodelink.Export(ctx, res, nodelink.Options{}, "model_graph", "svg")
package pkg

// Package io reads architecture description documents and writes
// interpreted graphs as JSON.
//
// # Documents
//
// A description is a mapping with optional depth_multiple, width_multiple,
// backbone, head and kinds keys. Three encodings are accepted and decode to
// the same structure:
//
//	# model.yaml
//	depth_multiple: 0.33
//	width_multiple: 0.50
//	backbone:
//	  - [-1, 1, Conv, [64, 6, 2, 2]]
//	head:
//	  - [-1, 1, Detect, [80]]
//
//	# model.toml
//	depth_multiple = 0.33
//	backbone = [[-1, 1, "Conv", [64, 6, 2, 2]]]
//
//	# model.json
//	{"backbone": [[-1, 1, "Conv", [64, 6, 2, 2]]]}
//
// [DetectFormat] picks the decoder from the file extension; unknown
// extensions are read as YAML. Integers stay integers in every encoding so
// the interpreter's integer checks behave the same way.
//
// # Import
//
// Use [ImportModel] to read a description from a file path, or
// [ReadModel] / [DecodeModel] for readers and byte slices:
//
//	cfg, err := io.ImportModel("yolov5s.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res := model.Interpret(cfg, 3)
//
// A missing file yields an error with code FILE_NOT_FOUND; a document that
// does not decode, or whose top level is not a mapping, yields
// INVALID_CONFIG. Malformed layer entries are not errors here.
//
// # Export
//
// [WriteJSON] and [ExportJSON] serialize a [model.Result]: layers with their
// resolved inputs and labels, edges, and the channel table.
package io

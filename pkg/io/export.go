package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/modelgraph/pkg/model"
)

type graph struct {
	InputChannels int     `json:"input_channels"`
	BackboneLen   int     `json:"backbone_len"`
	Channels      []int   `json:"channels"`
	Layers        []layer `json:"layers"`
	Edges         []edge  `json:"edges"`
}

type layer struct {
	Index    int      `json:"index"`
	Group    string   `json:"group"`
	From     []int    `json:"from"`
	Module   string   `json:"module"`
	Kind     string   `json:"kind"`
	Args     string   `json:"args"`
	Inputs   []input  `json:"inputs"`
	Channels int      `json:"channels"`
	Repeat   int      `json:"repeat"`
	Label    []string `json:"label"`
}

type input struct {
	Source   int  `json:"source"`
	Channels int  `json:"channels"`
	Fallback bool `json:"fallback,omitempty"`
}

type edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// WriteJSON encodes an interpreted graph as indented JSON and writes it to w.
// Arguments are written in their display form, e.g. "[64, 3, 'nearest']".
func WriteJSON(res *model.Result, w io.Writer) error {
	out := graph{
		InputChannels: res.InputChannels(),
		BackboneLen:   res.BackboneLen,
		Channels:      res.Channels,
		Layers:        make([]layer, len(res.Layers)),
		Edges:         make([]edge, len(res.Edges)),
	}

	for i, l := range res.Layers {
		inputs := make([]input, len(l.Inputs))
		for j, r := range l.Inputs {
			inputs[j] = input{Source: r.Source, Channels: r.Channels, Fallback: r.Fallback}
		}
		out.Layers[i] = layer{
			Index:    l.Index,
			Group:    l.Group,
			From:     l.From,
			Module:   l.Module,
			Kind:     l.Kind.String(),
			Args:     model.FormatArgs(l.Args),
			Inputs:   inputs,
			Channels: l.Channels,
			Repeat:   l.Repeat,
			Label:    l.Lines,
		}
	}
	for i, e := range res.Edges {
		out.Edges[i] = edge{From: e.From, To: e.To}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes an interpreted graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(res *model.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(res, f)
}

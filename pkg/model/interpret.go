package model

import "fmt"

// Interpret walks the backbone and head specifications in order and
// computes one [LayerRecord] per accepted entry, the edge list, and the
// channel table. A nil config is treated as an empty description and a
// non-positive inputChannels as [DefaultInputChannels].
//
// Interpret never fails: malformed entries are skipped and unusable values
// fall back to defaults. Calling it twice on the same config yields equal
// results.
func Interpret(cfg *Config, inputChannels int) *Result {
	if cfg == nil {
		cfg = NewConfig()
	}
	if inputChannels <= 0 {
		inputChannels = DefaultInputChannels
	}

	entries := make([]any, 0, len(cfg.Backbone)+len(cfg.Head))
	entries = append(entries, cfg.Backbone...)
	entries = append(entries, cfg.Head...)

	table := NewChannelTable(inputChannels)
	res := &Result{}

	for i, entry := range entries {
		spec, ok := specFromEntry(entry)
		if !ok {
			continue
		}
		group := GroupHead
		if i < len(cfg.Backbone) {
			group = GroupBackbone
			res.BackboneLen++
		}
		layer := interpretLayer(cfg, table, spec)
		layer.Index = len(res.Layers)
		layer.Group = group
		res.Layers = append(res.Layers, layer)
		table.Append(layer.Channels)
	}

	res.Edges = deriveEdges(res.Layers)
	res.Channels = table.Slots()
	return res
}

// specFromEntry accepts a LayerSpec or a raw sequence of at least four
// elements. Extra elements are ignored.
func specFromEntry(entry any) (LayerSpec, bool) {
	switch e := entry.(type) {
	case LayerSpec:
		return e, true
	case *LayerSpec:
		if e == nil {
			return LayerSpec{}, false
		}
		return *e, true
	case []any:
		if len(e) < 4 {
			return LayerSpec{}, false
		}
		return LayerSpec{
			From:   sourceList(e[0]),
			Repeat: e[1],
			Module: e[2],
			Args:   argList(e[3]),
		}, true
	}
	return LayerSpec{}, false
}

// argList normalizes the raw argument field. A missing field is empty and a
// scalar is a single argument.
func argList(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		return x
	case Tuple:
		return []any(x)
	}
	return []any{v}
}

func (c *Config) kindOf(spec LayerSpec, module string) Kind {
	if spec.Kind != KindUnspecified {
		return spec.Kind
	}
	if k, ok := c.Kinds[module]; ok && k != KindUnspecified {
		return k
	}
	return Classify(module)
}

func interpretLayer(cfg *Config, table *ChannelTable, spec LayerSpec) LayerRecord {
	module := displayName(spec.Module)
	kind := cfg.kindOf(spec, module)

	repeat, ok := toInt(spec.Repeat)
	if !ok {
		repeat = 1
	}

	args := make([]any, len(spec.Args))
	for i, a := range spec.Args {
		args[i] = EvalArg(a)
	}

	from := make([]int, len(spec.From))
	inputs := make([]Resolution, len(spec.From))
	for i, src := range spec.From {
		from[i] = sourceIndex(src)
		inputs[i] = table.Resolve(from[i])
	}

	layer := LayerRecord{
		From:   from,
		Module: module,
		Kind:   kind,
		Args:   args,
		Inputs: inputs,
		Repeat: ScaleRepeat(repeat, cfg.DepthMultiple),
	}
	layer.Channels = outputChannels(layer, cfg.WidthMultiple)
	layer.Lines = labelLines(layer)
	return layer
}

func outputChannels(l LayerRecord, width float64) int {
	if l.Kind == KindConcat {
		return l.InChannels()
	}
	c2 := 0
	if n, ok := firstIntArg(l.Args); ok {
		c2 = n
	} else if len(l.Inputs) > 0 {
		c2 = l.Inputs[0].Channels
	}
	if l.Kind == KindDetect {
		return c2
	}
	return Align(float64(c2)*width, ChannelDivisor)
}

func firstIntArg(args []any) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	return asInt(args[0])
}

func labelLines(l LayerRecord) []string {
	repeat := fmt.Sprintf("n=%d", l.Repeat)
	if l.Kind == KindDetect {
		return []string{l.Module, repeat, FormatArgs(l.Args)}
	}
	lines := []string{l.Module, fmt.Sprintf("%d → %d", l.InChannels(), l.Channels), repeat}
	if len(l.Args) > 0 {
		lines = append(lines, FormatArgs(l.Args))
	}
	return lines
}

// deriveEdges emits one edge per source of every layer. A source of -1
// points at the previous layer; negative or out-of-range sources point at
// the input node. Duplicates are kept.
func deriveEdges(layers []LayerRecord) []Edge {
	var edges []Edge
	for _, l := range layers {
		for _, src := range l.From {
			from := src
			if src == -1 {
				from = l.Index - 1
			}
			if from < 0 || from >= len(layers) {
				from = InputNode
			}
			edges = append(edges, Edge{From: from, To: l.Index})
		}
	}
	return edges
}

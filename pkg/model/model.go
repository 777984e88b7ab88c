package model

import (
	"fmt"
	"strings"
)

// Group names used in [LayerRecord.Group].
const (
	GroupBackbone = "backbone"
	GroupHead     = "head"
)

// InputNode is the source index of the synthetic input node in an [Edge].
const InputNode = -1

// DefaultInputChannels is the channel count of the network input.
const DefaultInputChannels = 3

// Kind tags a module with the channel rule it follows.
type Kind int

const (
	// KindUnspecified defers to [Classify] on the module identifier.
	KindUnspecified Kind = iota
	// KindLayer scales its first argument by the width multiplier.
	KindLayer
	// KindConcat outputs the sum of its input channels.
	KindConcat
	// KindDetect outputs its first argument unscaled.
	KindDetect
)

var kindNames = map[Kind]string{
	KindUnspecified: "unspecified",
	KindLayer:       "layer",
	KindConcat:      "concat",
	KindDetect:      "detect",
}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts a kind name back into a [Kind].
// Matching is case-insensitive; unknown names report false.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return KindUnspecified, false
}

// Classify derives a kind from a module identifier. Identifiers containing
// "concat" are concatenations, those containing "detect" are detection
// heads, and everything else is a plain layer. Matching ignores case.
func Classify(module string) Kind {
	name := strings.ToLower(module)
	switch {
	case strings.Contains(name, "concat"):
		return KindConcat
	case strings.Contains(name, "detect"):
		return KindDetect
	default:
		return KindLayer
	}
}

// LayerSpec is one architecture line: source(s), repeat, module, arguments.
//
// From holds the raw source values and may mix integers and strings.
// Repeat is the raw repeat count before coercion. Args are the raw
// arguments; string arguments are evaluated during interpretation.
type LayerSpec struct {
	From   []any
	Repeat any
	Module any
	Args   []any
	Kind   Kind
}

// Config is a parsed architecture description.
//
// Backbone and Head entries are either [LayerSpec] values or raw sequences
// of the form [from, repeat, module, args]. Anything else is skipped.
// Kinds maps module identifiers to an explicit kind and overrides [Classify].
type Config struct {
	DepthMultiple float64
	WidthMultiple float64
	Backbone      []any
	Head          []any
	Kinds         map[string]Kind
}

// NewConfig returns a config with both multipliers set to 1.
func NewConfig() *Config {
	return &Config{DepthMultiple: 1, WidthMultiple: 1}
}

// LayerRecord is one interpreted layer.
type LayerRecord struct {
	Index    int          // dense position among accepted layers
	Group    string       // GroupBackbone or GroupHead
	From     []int        // resolved source indices, -1 meaning the previous layer
	Module   string       // display form of the module identifier
	Kind     Kind         // resolved kind, never KindUnspecified
	Args     []any        // evaluated arguments
	Inputs   []Resolution // one channel lookup per source
	Channels int          // output channels
	Repeat   int          // repeat count after depth scaling
	Lines    []string     // label lines
}

// Type returns the module-type key used for color assignment.
func (l LayerRecord) Type() string {
	return l.Module
}

// Label joins the label lines with newlines.
func (l LayerRecord) Label() string {
	return strings.Join(l.Lines, "\n")
}

// InChannels returns the sum of the resolved input channel counts.
func (l LayerRecord) InChannels() int {
	sum := 0
	for _, r := range l.Inputs {
		sum += r.Channels
	}
	return sum
}

// Fallback reports whether any input lookup fell back to the last channel count.
func (l LayerRecord) Fallback() bool {
	for _, r := range l.Inputs {
		if r.Fallback {
			return true
		}
	}
	return false
}

// Edge is a directed edge between layer indices.
// From is [InputNode] when the edge starts at the network input.
type Edge struct {
	From int
	To   int
}

// Result is the output of [Interpret].
type Result struct {
	Layers      []LayerRecord
	Edges       []Edge
	BackboneLen int   // number of accepted backbone layers
	Channels    []int // channel table: input channels followed by one entry per layer
}

// InputChannels returns the channel count of the network input.
func (r *Result) InputChannels() int {
	if len(r.Channels) == 0 {
		return DefaultInputChannels
	}
	return r.Channels[0]
}

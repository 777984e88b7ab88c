package nodelink

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/modelgraph/pkg/model"
)

// InputID is the node identifier of the synthetic input node.
const InputID = "Input"

const (
	fontName  = "Helvetica"
	headWidth = "2.5"
)

// Options configures diagram generation.
type Options struct {
	// Palette overrides DefaultPalette.
	Palette []string
}

type cluster struct {
	name  string
	label string
	color string
}

var (
	clusterBackbone = cluster{"cluster_backbone", "Backbone", "#c6e2ff"}
	clusterNeck     = cluster{"cluster_neck", "Neck", "#fff0b3"}
	clusterHead     = cluster{"cluster_head", "Head", "#ffe6e6"}
)

// NodeID returns the diagram identifier of layer index i.
// Negative indices name the input node.
func NodeID(i int) string {
	if i < 0 {
		return InputID
	}
	return "L" + strconv.Itoa(i)
}

// ToDOT converts an interpreted model graph to Graphviz DOT source.
// The result can be rendered with [Render].
func ToDOT(res *model.Result, opts Options) string {
	colors := AssignColors(res.Layers, opts.Palette)
	backbone, neck, head := Partition(res.Layers, res.BackboneLen)

	var buf bytes.Buffer
	buf.WriteString("digraph Model {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  splines=ortho;\n")
	buf.WriteString("  center=true;\n")
	buf.WriteString("  ranksep=0.9;\n")
	buf.WriteString("  nodesep=0.5;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	fmt.Fprintf(&buf, "  fontname=%q;\n", fontName)
	buf.WriteString("  fontsize=10;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  %q [label=%q, shape=oval, style=filled, fillcolor=\"#FFDDAA\"];\n",
		InputID, fmt.Sprintf("Input\nC=%d", res.InputChannels()))

	writeCluster(&buf, clusterBackbone, backbone, colors, false)
	writeCluster(&buf, clusterNeck, neck, colors, false)
	writeCluster(&buf, clusterHead, head, colors, true)

	buf.WriteString("\n")
	for _, e := range ResolveEdges(res.Layers, res.Edges) {
		fmt.Fprintf(&buf, "  %q -> %q [arrowhead=vee, penwidth=1.1];\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Partition splits layers into backbone, neck and head groups by position.
// The last layer is always the head; the backbone covers the first
// backboneLen layers before it and the neck everything in between.
func Partition(layers []model.LayerRecord, backboneLen int) (backbone, neck, head []model.LayerRecord) {
	n := len(layers)
	if n == 0 {
		return nil, nil, nil
	}
	cut := min(max(backboneLen, 0), n-1)
	return layers[:cut], layers[cut : n-1], layers[n-1:]
}

func writeCluster(buf *bytes.Buffer, c cluster, layers []model.LayerRecord, colors map[string]string, wide bool) {
	if len(layers) == 0 {
		return
	}
	fmt.Fprintf(buf, "\n  subgraph %s {\n", c.name)
	fmt.Fprintf(buf, "    label=%q;\n", c.label)
	fmt.Fprintf(buf, "    color=%q;\n", c.color)
	buf.WriteString("    style=rounded;\n")
	fmt.Fprintf(buf, "    fontname=%q;\n", fontName)
	buf.WriteString("    labelloc=t;\n")
	buf.WriteString("    labeljust=c;\n")
	buf.WriteString("    margin=\"20,20\";\n")
	for _, l := range layers {
		fmt.Fprintf(buf, "    %q [%s];\n", NodeID(l.Index), strings.Join(fmtAttrs(l, colors, wide), ", "))
	}
	buf.WriteString("  }\n")
}

func fmtAttrs(l model.LayerRecord, colors map[string]string, wide bool) []string {
	fill, ok := colors[l.Type()]
	if !ok {
		fill = fallbackFill
	}
	attrs := []string{
		fmt.Sprintf("label=%q", l.Label()),
		"shape=box",
		"style=\"rounded,filled\"",
		"color=\"#2F4F4F\"",
		fmt.Sprintf("fontname=%q", fontName),
		"fontsize=10",
		fmt.Sprintf("fillcolor=%q", fill),
	}
	if wide {
		attrs = append(attrs, fmt.Sprintf("width=%s", headWidth))
	}
	return attrs
}

// Link is an edge between two diagram node identifiers.
type Link struct {
	From string
	To   string
}

// ResolveEdges maps edges to node identifiers, redirects sources that name
// no layer to the input node, drops edges into unknown layers, and removes
// duplicates while keeping first-seen order.
func ResolveEdges(layers []model.LayerRecord, edges []model.Edge) []Link {
	known := make(map[string]bool, len(layers))
	for _, l := range layers {
		known[NodeID(l.Index)] = true
	}

	seen := make(map[Link]bool, len(edges))
	var out []Link
	for _, e := range edges {
		link := Link{From: NodeID(e.From), To: NodeID(e.To)}
		if !known[link.To] {
			continue
		}
		if !known[link.From] {
			link.From = InputID
		}
		if seen[link] {
			continue
		}
		seen[link] = true
		out = append(out, link)
	}
	return out
}

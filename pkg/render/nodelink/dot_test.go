package nodelink

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/model"
)

func sampleResult() *model.Result {
	cfg := model.NewConfig()
	cfg.Backbone = []any{
		[]any{-1, 1, "Conv", []any{16}},
		[]any{-1, 1, "Conv", []any{32}},
		[]any{-1, 3, "C3", []any{32}},
	}
	cfg.Head = []any{
		[]any{-1, 1, "nn.Upsample", []any{"None", 2, "nearest"}},
		[]any{[]any{-1, 1}, 1, "Concat", []any{1}},
		[]any{[]any{-1, -1}, 1, "Detect", []any{80}},
	}
	return model.Interpret(cfg, 3)
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sampleResult(), Options{})

	for _, want := range []string{
		"digraph Model",
		"rankdir=TB",
		"splines=ortho",
		`"Input" [label="Input\nC=3", shape=oval`,
		"subgraph cluster_backbone",
		"subgraph cluster_neck",
		"subgraph cluster_head",
		`label="Backbone"`,
		`label="Neck"`,
		`label="Head"`,
		`"L0" [label="Conv\n3 → 16\nn=1\n[16]"`,
		`"Input" -> "L0" [arrowhead=vee, penwidth=1.1]`,
		`"L1" -> "L4"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q", want)
		}
	}
}

func TestToDOT_HeadIsWide(t *testing.T) {
	dot := ToDOT(sampleResult(), Options{})
	lines := strings.Split(dot, "\n")
	for _, line := range lines {
		isHead := strings.Contains(line, `"L5" [label`)
		if isHead != strings.Contains(line, "width=2.5") {
			t.Errorf("unexpected width attribute on line %q", line)
		}
	}
}

func TestToDOT_DeduplicatesEdges(t *testing.T) {
	dot := ToDOT(sampleResult(), Options{})
	if n := strings.Count(dot, `"L4" -> "L5"`); n != 1 {
		t.Errorf("edge L4 -> L5 appears %d times, want 1", n)
	}
}

func TestToDOT_Empty(t *testing.T) {
	dot := ToDOT(model.Interpret(nil, 3), Options{})
	if !strings.Contains(dot, `"Input"`) {
		t.Error("empty graph should still have an input node")
	}
	if strings.Contains(dot, "subgraph") {
		t.Error("empty graph should not emit clusters")
	}
}

func TestToDOT_Deterministic(t *testing.T) {
	if ToDOT(sampleResult(), Options{}) != ToDOT(sampleResult(), Options{}) {
		t.Error("ToDOT() is not deterministic")
	}
}

func TestToDOT_EscapesLabels(t *testing.T) {
	cfg := model.NewConfig()
	cfg.Backbone = []any{[]any{-1, 1, `Weird"Name\`, []any{8}}}
	dot := ToDOT(model.Interpret(cfg, 3), Options{})
	if !strings.Contains(dot, `label="Weird\"Name\\\n`) {
		t.Errorf("label not escaped:\n%s", dot)
	}
}

func TestAssignColors(t *testing.T) {
	res := sampleResult()
	colors := AssignColors(res.Layers, nil)

	want := map[string]string{
		"Conv":        DefaultPalette[0],
		"C3":          DefaultPalette[1],
		"nn.Upsample": DefaultPalette[2],
		"Concat":      DefaultPalette[3],
		"Detect":      DefaultPalette[4],
	}
	if len(colors) != len(want) {
		t.Fatalf("colors = %v", colors)
	}
	for typ, c := range want {
		if colors[typ] != c {
			t.Errorf("color[%s] = %s, want %s", typ, colors[typ], c)
		}
	}
}

func TestAssignColors_Cycles(t *testing.T) {
	var layers []model.LayerRecord
	for _, m := range []string{"A", "B", "C", "A", "D"} {
		layers = append(layers, model.LayerRecord{Module: m})
	}
	colors := AssignColors(layers, []string{"red", "blue"})
	want := map[string]string{"A": "red", "B": "blue", "C": "red", "D": "blue"}
	for typ, c := range want {
		if colors[typ] != c {
			t.Errorf("color[%s] = %s, want %s", typ, colors[typ], c)
		}
	}
}

func TestPartition(t *testing.T) {
	layers := make([]model.LayerRecord, 6)
	for i := range layers {
		layers[i].Index = i
	}
	idx := func(ls []model.LayerRecord) []int {
		var out []int
		for _, l := range ls {
			out = append(out, l.Index)
		}
		return out
	}

	tests := []struct {
		name        string
		backboneLen int
		backbone    []int
		neck        []int
	}{
		{"typical", 3, []int{0, 1, 2}, []int{3, 4}},
		{"no neck", 5, []int{0, 1, 2, 3, 4}, nil},
		{"backbone covers all", 6, []int{0, 1, 2, 3, 4}, nil},
		{"no backbone", 0, nil, []int{0, 1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, n, h := Partition(layers, tt.backboneLen)
			if !slices.Equal(idx(b), tt.backbone) || !slices.Equal(idx(n), tt.neck) {
				t.Errorf("Partition() = %v, %v", idx(b), idx(n))
			}
			if len(h) != 1 || h[0].Index != 5 {
				t.Errorf("head = %v, want [5]", idx(h))
			}
		})
	}

	if b, n, h := Partition(nil, 3); b != nil || n != nil || h != nil {
		t.Error("Partition(nil) should be empty")
	}
}

func TestResolveEdges(t *testing.T) {
	layers := []model.LayerRecord{{Index: 0}, {Index: 1}, {Index: 2}}
	edges := []model.Edge{
		{From: -1, To: 0},
		{From: 0, To: 1},
		{From: 0, To: 1},
		{From: 7, To: 2},
		{From: -1, To: 2},
		{From: 1, To: 9},
	}
	want := []Link{
		{InputID, "L0"},
		{"L0", "L1"},
		{InputID, "L2"},
	}
	if got := ResolveEdges(layers, edges); !slices.Equal(got, want) {
		t.Errorf("ResolveEdges() = %v, want %v", got, want)
	}
}

func TestNodeID(t *testing.T) {
	if NodeID(-1) != InputID || NodeID(12) != "L12" {
		t.Errorf("NodeID() = %s, %s", NodeID(-1), NodeID(12))
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRender_SVG(t *testing.T) {
	svg, err := Render(context.Background(), ToDOT(sampleResult(), Options{}), FormatSVG)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("Render() output missing <svg> tag")
	}
}

func TestRender_DOTPassthrough(t *testing.T) {
	dot := ToDOT(sampleResult(), Options{})
	out, err := Render(context.Background(), dot, "DOT")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if string(out) != dot {
		t.Error("Render(dot) should return the source unchanged")
	}
}

func TestRender_Errors(t *testing.T) {
	_, err := Render(context.Background(), `digraph G { a -> b; }`, "bmp")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(bmp) error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}

	_, err = Render(context.Background(), `not valid DOT {{{`, FormatSVG)
	if !errors.Is(err, errors.ErrCodeRender) {
		t.Errorf("Render(invalid) error = %v, want %s", err, errors.ErrCodeRender)
	}
}

func TestExport(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "dir", "model_graph")
	path, err := Export(context.Background(), sampleResult(), Options{}, base, "svg")
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if path != base+".svg" {
		t.Errorf("Export() path = %q, want %q", path, base+".svg")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("exported file is not SVG")
	}
}

func TestNormalizeFormat(t *testing.T) {
	for in, want := range map[string]string{"SVG": "svg", " png ": "png", "jpeg": "jpg", "pdf": "pdf"} {
		if got := NormalizeFormat(in); got != want {
			t.Errorf("NormalizeFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

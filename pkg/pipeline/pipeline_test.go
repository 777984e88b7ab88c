package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/modelgraph/pkg/cache"
	"github.com/matzehuels/modelgraph/pkg/errors"
	pkgio "github.com/matzehuels/modelgraph/pkg/io"
	"github.com/matzehuels/modelgraph/pkg/observability"
)

const sampleDoc = `
depth_multiple: 0.33
width_multiple: 0.50
backbone:
  - [-1, 1, Conv, [64, 6, 2, 2]]
  - [-1, 3, C3, [128]]
head:
  - [-1, 1, nn.Upsample, [None, 2, 'nearest']]
  - [[-1, 0], 1, Concat, [1]]
  - [[3, 9], 1, Detect, [nc, anchors]]
`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"jpg", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // validate expects normalized input
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if o.DocFormat != pkgio.FormatYAML {
		t.Errorf("DocFormat = %q, want yaml", o.DocFormat)
	}
	if o.Format != DefaultFormat {
		t.Errorf("Format = %q, want %q", o.Format, DefaultFormat)
	}
	if o.InputChannels != 3 {
		t.Errorf("InputChannels = %d, want 3", o.InputChannels)
	}
	if o.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"bad format", Options{Format: "gif"}, errors.ErrCodeInvalidFormat},
		{"bad doc format", Options{DocFormat: "xml"}, errors.ErrCodeInvalidFormat},
		{"negative channels", Options{InputChannels: -1}, errors.ErrCodeInvalidInput},
		{"huge channels", Options{InputChannels: errors.MaxInputChannels + 1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}

	o := Options{Format: " JPEG ", DocFormat: "application/json"}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("aliases should be accepted: %v", err)
	}
	if o.Format != FormatJPG || o.DocFormat != pkgio.FormatJSON {
		t.Errorf("normalized to %q, %q", o.Format, o.DocFormat)
	}
}

func TestExecuteJSON(t *testing.T) {
	c, _ := cache.NewLRUCache(16)
	r := NewRunner(c, nil, nil)
	ctx := context.Background()
	opts := Options{Source: []byte(sampleDoc), Format: FormatJSON}

	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.CacheHit {
		t.Error("first run should miss the cache")
	}
	if res.Stats.LayerCount != 5 || res.Model.BackboneLen != 2 {
		t.Errorf("layers = %d, backbone = %d", res.Stats.LayerCount, res.Model.BackboneLen)
	}
	if res.Stats.Fallbacks != 1 {
		t.Errorf("Fallbacks = %d, want 1", res.Stats.Fallbacks)
	}
	if res.ContentType() != "application/json" {
		t.Errorf("ContentType() = %q", res.ContentType())
	}

	var doc map[string]any
	if err := json.Unmarshal(res.Artifact, &doc); err != nil {
		t.Fatalf("artifact is not JSON: %v", err)
	}
	if doc["backbone_len"] != float64(2) {
		t.Errorf("backbone_len = %v", doc["backbone_len"])
	}

	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if !again.CacheHit {
		t.Error("second run should hit the cache")
	}
	if string(again.Artifact) != string(res.Artifact) {
		t.Error("cached artifact differs")
	}

	opts.Refresh = true
	fresh, _ := r.Execute(ctx, opts)
	if fresh.CacheHit {
		t.Error("Refresh should bypass the cache")
	}

	opts.Refresh = false
	opts.InputChannels = 1
	other, _ := r.Execute(ctx, opts)
	if other.CacheHit {
		t.Error("different channel count should not share an entry")
	}
}

func TestExecuteSVG(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Source: []byte(sampleDoc)})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(string(res.Artifact), "<svg") {
		t.Error("artifact is not SVG")
	}
}

func TestExecuteDOT(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Source:        []byte(sampleDoc),
		Format:        FormatDOT,
		InputChannels: 1,
		Palette:       []string{"#000000"},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	dot := string(res.Artifact)
	for _, want := range []string{`Input\nC=1`, `fillcolor="#000000"`, "cluster_neck"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q", want)
		}
	}
}

func TestExecuteEmptyDocument(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Format: FormatDOT})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(res.Model.Layers) != 0 {
		t.Errorf("empty document produced %d layers", len(res.Model.Layers))
	}
}

func TestExecuteInvalidDocument(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{Source: []byte("depth_multiple: [1]\n")})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks
	events []string
}

func (h *recordingHooks) OnInterpretComplete(_ context.Context, layers int, _ time.Duration, err error) {
	h.events = append(h.events, "interpret")
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, format string, _ int, _ time.Duration, _ error) {
	h.events = append(h.events, "render:"+format)
}

func (h *recordingHooks) OnCacheHit(context.Context, string)  { h.events = append(h.events, "hit") }
func (h *recordingHooks) OnCacheMiss(context.Context, string) { h.events = append(h.events, "miss") }

func TestExecuteEmitsHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	defer observability.Reset()

	c, _ := cache.NewLRUCache(4)
	r := NewRunner(c, nil, nil)
	opts := Options{Source: []byte(sampleDoc), Format: FormatJSON}
	_, _ = r.Execute(context.Background(), opts)
	_, _ = r.Execute(context.Background(), opts)

	want := []string{"interpret", "miss", "render:json", "interpret", "hit"}
	if strings.Join(h.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", h.events, want)
	}
}

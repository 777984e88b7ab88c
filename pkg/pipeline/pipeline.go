// Package pipeline turns a model description document into a rendered
// diagram.
//
// The CLI and the HTTP server both run the same two stages through a
// [Runner]:
//
//  1. Interpret: decode the document and compute layers, channels and edges
//  2. Render: build the DOT graph and encode it (SVG, PNG, JPG, PDF, DOT or JSON)
//
// Interpretation is cheap and always runs. Rendered artifacts are cached by
// document content and options.
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:    data,
//	    DocFormat: pkgio.FormatYAML,
//	    Format:    "svg",
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("model_graph.svg", result.Artifact, 0644)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelgraph/pkg/errors"
	pkgio "github.com/matzehuels/modelgraph/pkg/io"
	"github.com/matzehuels/modelgraph/pkg/model"
	"github.com/matzehuels/modelgraph/pkg/render/nodelink"
)

// Output formats.
const (
	FormatSVG  = nodelink.FormatSVG
	FormatPNG  = nodelink.FormatPNG
	FormatJPG  = nodelink.FormatJPG
	FormatPDF  = nodelink.FormatPDF
	FormatDOT  = nodelink.FormatDOT
	FormatJSON = "json"
)

// DefaultFormat is the output format used when none is given.
const DefaultFormat = FormatSVG

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatJPG, FormatPDF, FormatDOT, FormatJSON}

// ContentTypes maps output formats to MIME types.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatJPG:  "image/jpeg",
	FormatPDF:  "application/pdf",
	FormatDOT:  "text/vnd.graphviz",
	FormatJSON: "application/json",
}

// NormalizeFormat lowercases a format name and maps aliases such as "jpeg".
func NormalizeFormat(format string) string {
	return nodelink.NormalizeFormat(format)
}

// ValidateFormat checks that a (normalized) format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// Options contains all configuration for one conversion.
type Options struct {
	// Source is the raw description document. An empty document yields an
	// empty graph.
	Source []byte

	// DocFormat is the encoding of Source. Defaults to YAML.
	DocFormat pkgio.Format

	// Format is the output format. Defaults to DefaultFormat.
	Format string

	// InputChannels is the channel count of the network input.
	// Defaults to model.DefaultInputChannels.
	InputChannels int

	// Palette overrides the node fill colors.
	Palette []string

	// Refresh skips cache lookups; fresh artifacts are still stored.
	Refresh bool

	// Logger receives stage logs. Defaults to the runner's logger.
	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults applies defaults and validates every field.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.DocFormat == "" {
		o.DocFormat = pkgio.FormatYAML
	}
	f, ok := pkgio.ParseFormat(string(o.DocFormat))
	if !ok {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported document format: %q (must be one of: yaml, toml, json)", o.DocFormat)
	}
	o.DocFormat = f

	if o.Format == "" {
		o.Format = DefaultFormat
	}
	o.Format = NormalizeFormat(o.Format)
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}

	if o.InputChannels == 0 {
		o.InputChannels = model.DefaultInputChannels
	}
	if err := errors.ValidateInputChannels(o.InputChannels); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Config is the decoded description.
	Config *model.Config

	// Model is the interpreted graph.
	Model *model.Result

	// DocHash is the SHA-256 of the source document.
	DocHash string

	// Format is the normalized output format of Artifact.
	Format string

	// Artifact is the rendered output.
	Artifact []byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether Artifact came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	LayerCount    int
	EdgeCount     int
	Fallbacks     int
	InterpretTime time.Duration
	RenderTime    time.Duration
}

// ContentType returns the MIME type of the artifact.
func (r *Result) ContentType() string {
	return ContentTypes[r.Format]
}

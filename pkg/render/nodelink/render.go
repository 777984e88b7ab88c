package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/model"
	"github.com/matzehuels/modelgraph/pkg/render"
)

// Image formats produced by [Render].
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatJPG = "jpg"
	FormatPDF = "pdf"
	FormatDOT = "dot"
)

// Formats lists every format [Render] accepts.
var Formats = []string{FormatSVG, FormatPNG, FormatJPG, FormatPDF, FormatDOT}

// NormalizeFormat lowercases a format name and maps "jpeg" to "jpg".
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "jpeg" {
		return FormatJPG
	}
	return f
}

// Render lays out DOT source and encodes it in the given format.
// "dot" returns the source unchanged and "pdf" converts the SVG output
// with rsvg-convert. Unknown formats fail with INVALID_FORMAT; layout or
// encoding failures fail with RENDER_FAILED.
func Render(ctx context.Context, dot, format string) ([]byte, error) {
	switch NormalizeFormat(format) {
	case FormatSVG:
		return RenderSVG(ctx, dot)
	case FormatPNG:
		return renderGraphviz(ctx, dot, graphviz.PNG)
	case FormatJPG:
		return renderGraphviz(ctx, dot, graphviz.JPG)
	case FormatDOT:
		return []byte(dot), nil
	case FormatPDF:
		svg, err := RenderSVG(ctx, dot)
		if err != nil {
			return nil, err
		}
		pdf, err := render.ToPDF(ctx, svg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRender, err, "convert to pdf")
		}
		return pdf, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s (must be one of %s)", format, strings.Join(Formats, ", "))
	}
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	svg, err := renderGraphviz(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

func renderGraphviz(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// OutputPath returns "<base>.<format>".
func OutputPath(base, format string) string {
	return base + "." + NormalizeFormat(format)
}

// WriteFile writes data to path, creating the parent directory if needed.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Export renders res and writes it to "<base>.<format>", returning the
// path written.
func Export(ctx context.Context, res *model.Result, opts Options, base, format string) (string, error) {
	data, err := Render(ctx, ToDOT(res, opts), format)
	if err != nil {
		return "", err
	}
	path := OutputPath(base, format)
	if err := WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

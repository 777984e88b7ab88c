package render

import (
	"bytes"
	"context"
	"testing"

	"github.com/matzehuels/modelgraph/pkg/errors"
)

const tinySVG = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`

func TestToPDF(t *testing.T) {
	if !Available() {
		t.Skip("rsvg-convert not installed")
	}
	pdf, err := ToPDF(context.Background(), []byte(tinySVG))
	if err != nil {
		t.Fatalf("ToPDF() error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("ToPDF() output does not start with %%PDF: %q", pdf[:min(len(pdf), 8)])
	}
}

func TestToPDF_Missing(t *testing.T) {
	old := rsvgBinary
	rsvgBinary = "modelgraph-no-such-converter"
	t.Cleanup(func() { rsvgBinary = old })

	if Available() {
		t.Fatal("Available() = true for a missing binary")
	}
	_, err := ToPDF(context.Background(), []byte(tinySVG))
	if err == nil {
		t.Fatal("ToPDF() should fail without rsvg-convert")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeRender {
		t.Errorf("GetCode() = %q, want %q", got, errors.ErrCodeRender)
	}
}

func TestToPDF_Canceled(t *testing.T) {
	if !Available() {
		t.Skip("rsvg-convert not installed")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ToPDF(ctx, []byte(tinySVG)); err == nil {
		t.Error("ToPDF() should fail on a canceled context")
	}
}

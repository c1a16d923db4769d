package render

import (
	"bytes"
	"fmt"
	"os/exec"
	"slices"
)

// Formats lists the export formats understood by [Convert].
var Formats = []string{"dot", "svg", "pdf", "png"}

// ToPDF converts SVG bytes to PDF using rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(svg []byte) ([]byte, error) {
	return rsvgConvert(svg, "pdf")
}

// ToPNG converts SVG bytes to PNG using rsvg-convert with the given scale factor.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return rsvgConvert(svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

// Convert turns SVG into format, which must be svg, pdf or png.
func Convert(svg []byte, format string, scale float64) ([]byte, error) {
	switch format {
	case "svg":
		return svg, nil
	case "pdf":
		return ToPDF(svg)
	case "png":
		return ToPNG(svg, scale)
	}
	if slices.Contains(Formats, format) {
		return nil, fmt.Errorf("format %q is not produced from SVG", format)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func rsvgConvert(svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, fmt.Errorf("%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.Command("rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}

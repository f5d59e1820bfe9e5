package render

import (
	"bytes"
	"fmt"
	"os/exec"
)

// Formats accepted by [Convert].
const (
	FormatSVG = "svg"
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// Convert turns SVG bytes into format. SVG is returned unchanged; PDF and PNG
// go through rsvg-convert, with scale applied to PNG only.
func Convert(svg []byte, format string, scale float64) ([]byte, error) {
	switch format {
	case FormatSVG, "":
		return svg, nil
	case FormatPDF:
		return ToPDF(svg)
	case FormatPNG:
		return ToPNG(svg, scale)
	default:
		return nil, fmt.Errorf("unsupported format %q (want svg, pdf or png)", format)
	}
}

// ToPDF converts SVG bytes to PDF using rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(svg []byte) ([]byte, error) {
	return rsvgConvert(svg, FormatPDF)
}

// ToPNG converts SVG bytes to PNG at the given scale factor.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return rsvgConvert(svg, FormatPNG, "-z", fmt.Sprintf("%.2f", scale))
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

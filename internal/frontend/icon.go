package frontend

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const (
	defaultIconSize = 180
	minIconSize     = 16
	maxIconSize     = 512
)

func clampIconSize(size int) int {
	if size <= 0 {
		return defaultIconSize
	}
	if size < minIconSize {
		return minIconSize
	}
	if size > maxIconSize {
		return maxIconSize
	}
	return size
}

// renderSVGToPNG renders an SVG byte slice into a square PNG of the given size.
func renderSVGToPNG(svgData []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid target size for SVG rendering: %d", size)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}

	icon.SetTarget(0, 0, float64(size), float64(size))

	// A fresh RGBA canvas is fully transparent
	dst := image.NewRGBA(image.Rect(0, 0, size, size))

	scanner := rasterx.NewScannerGV(size, size, dst, dst.Bounds())
	dasher := rasterx.NewDasher(size, size, scanner)
	icon.Draw(dasher, 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode rendered SVG as PNG: %w", err)
	}
	return buf.Bytes(), nil
}

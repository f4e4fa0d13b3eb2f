package main

import (
	"image"
	"image/png"
	"io"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/tiff"

	"github.com/galprof/galprof"
)

// ramp holds the false-colour palette stops for PNG output, blended in
// HCL so perceived brightness grows monotonically with flux.
var ramp = []colorful.Color{
	{R: 0.00, G: 0.00, B: 0.05},
	{R: 0.18, G: 0.03, B: 0.35},
	{R: 0.73, G: 0.21, B: 0.14},
	{R: 0.98, G: 0.72, B: 0.25},
	{R: 1.00, G: 1.00, B: 1.00},
}

func rampColor(t float64) colorful.Color {
	if t <= 0 {
		return ramp[0]
	}
	if t >= 1 {
		return ramp[len(ramp)-1]
	}
	segs := float64(len(ramp) - 1)
	i := int(t * segs)
	frac := t*segs - float64(i)
	return ramp[i].BlendHcl(ramp[i+1], frac).Clamped()
}

// writePNG renders the flux image false-colour with an asinh stretch,
// which keeps the faint profile wings visible next to the bright
// cores. Row 0 lands at the bottom, matching the model's coordinate
// system.
func writePNG(w io.Writer, img *galprof.Image) error {
	width, height := img.Width(), img.Height()
	out := image.NewRGBA(image.Rect(0, 0, width, height))

	var max float64
	for _, v := range img.Data() {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		return png.Encode(w, out)
	}

	soft := max / 1e4
	den := math.Asinh(max / soft)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var t float64
			if v := img.At(x, y); v > 0 {
				t = math.Asinh(v/soft) / den
			}
			out.Set(x, height-1-y, rampColor(t))
		}
	}
	return png.Encode(w, out)
}

// writeTIFF stores the image as 16-bit grayscale with deflate
// compression.
func writeTIFF(w io.Writer, img *galprof.Image) error {
	return tiff.Encode(w, img.ToGray16(), &tiff.Options{
		Compression: tiff.Deflate,
		Predictor:   true,
	})
}

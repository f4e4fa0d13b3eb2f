package galprof

import (
	"fmt"
	"math"
)

// Sky adds a constant background level to every pixel. The value is a
// surface brightness per pixel, applied as-is without area scaling.
type Sky struct {
	// Bg is the background level added to each pixel.
	Bg float64

	// Convolve flags the background for PSF convolution. Rarely
	// useful, but accepted for uniformity with the other kinds.
	Convolve bool
}

// NewSky returns a sky profile with zero background.
func NewSky() *Sky {
	return &Sky{}
}

// Kind returns "sky".
func (p *Sky) Kind() string { return "sky" }

// Convolved reports whether the background passes through convolution.
func (p *Sky) Convolved() bool { return p.Convolve }

func (p *Sky) initialize(m *Model) error {
	if math.IsNaN(p.Bg) || math.IsInf(p.Bg, 0) {
		return fmt.Errorf("%w: sky bg %g is not finite", ErrInvalidParameter, p.Bg)
	}
	return nil
}

func (p *Sky) evaluate(m *Model, img *Image) error {
	for j := 0; j < m.height; j++ {
		row := img.data[j*m.width : (j+1)*m.width]
		for i := range row {
			if m.mask != nil && !m.mask.At(i, j) {
				continue
			}
			row[i] = p.Bg
		}
	}
	return nil
}

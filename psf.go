package galprof

import (
	"fmt"
	"math"
)

// PSFProfile is a point source: a delta function at (Xcen, Ycen) with
// the given magnitude. When flagged for convolution it deposits its
// flux as an impulse, which the convolution stage spreads into the PSF
// shape; otherwise the model PSF image itself is drawn at the source
// position. Both paths require the model to carry a PSF.
type PSFProfile struct {
	// Xcen, Ycen is the source position in physical units.
	Xcen float64
	Ycen float64

	// Mag is the apparent magnitude of the source.
	Mag float64

	// Convolve routes the flux through the convolution stage instead
	// of drawing the PSF image directly.
	Convolve bool
}

// NewPSFProfile returns a point source at the origin with default
// magnitude.
func NewPSFProfile() *PSFProfile {
	return &PSFProfile{Mag: 15}
}

// Kind returns "psf".
func (p *PSFProfile) Kind() string { return "psf" }

// Convolved reports whether the source is deposited as an impulse for
// the convolution stage.
func (p *PSFProfile) Convolved() bool { return p.Convolve }

func (p *PSFProfile) initialize(m *Model) error {
	switch {
	case math.IsNaN(p.Xcen) || math.IsInf(p.Xcen, 0) || math.IsNaN(p.Ycen) || math.IsInf(p.Ycen, 0):
		return fmt.Errorf("%w: psf centre (%g, %g) is not finite", ErrInvalidParameter, p.Xcen, p.Ycen)
	case math.IsNaN(p.Mag) || math.IsInf(p.Mag, 0):
		return fmt.Errorf("%w: psf mag %g is not finite", ErrInvalidParameter, p.Mag)
	case m.psfKernel == nil:
		return fmt.Errorf("%w: psf profile requires a model PSF", ErrInvalidParameter)
	}
	return nil
}

func (p *PSFProfile) evaluate(m *Model, img *Image) error {
	flux := magToFlux(p.Mag, m.magzero)

	// Continuous pixel coordinate of the source; pixel i spans
	// [i, i+1) physical/scale, its centre sitting at i+0.5.
	cx := p.Xcen/m.scaleX - 0.5
	cy := p.Ycen/m.scaleY - 0.5

	if p.Convolve {
		p.splat(m, img, cx, cy, flux)
		return nil
	}

	// Draw the kernel with its centre pixel on the source position,
	// matching the alignment the convolution stage would produce.
	k := m.psfKernel
	ox := cx - float64(k.width/2)
	oy := cy - float64(k.height/2)
	for v := 0; v < k.height; v++ {
		for u := 0; u < k.width; u++ {
			p.splat(m, img, ox+float64(u), oy+float64(v), flux*k.data[u+v*k.width])
		}
	}
	return nil
}

// splat distributes a point flux at continuous pixel coordinate
// (cx, cy) bilinearly over the four pixels it overlaps. Flux falling
// outside the image or onto masked pixels is dropped.
func (p *PSFProfile) splat(m *Model, img *Image, cx, cy, flux float64) {
	x0 := int(math.Floor(cx))
	y0 := int(math.Floor(cy))
	fx := cx - float64(x0)
	fy := cy - float64(y0)

	deposit := func(x, y int, f float64) {
		if f == 0 {
			return
		}
		if m.mask != nil && !m.mask.At(x, y) {
			return
		}
		img.AddAt(x, y, f)
	}
	deposit(x0, y0, flux*(1-fx)*(1-fy))
	deposit(x0+1, y0, flux*fx*(1-fy))
	deposit(x0, y0+1, flux*(1-fx)*fy)
	deposit(x0+1, y0+1, flux*fx*fy)
}

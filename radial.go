package galprof

import (
	"fmt"
	"math"

	"github.com/galprof/galprof/internal/specfunc"
)

// RadialProfile holds the parameters shared by every profile whose
// intensity depends only on a transformed radius from its centre
// (Sersic, Moffat, Ferrer, King, CoreSersic, BrokenExponential). It is
// embedded by those kinds; construct them through their NewX functions
// so these fields start from the documented defaults.
type RadialProfile struct {
	// Xcen, Ycen is the profile centre in the model's physical units.
	Xcen float64
	Ycen float64

	// Mag is the total apparent magnitude; together with the model's
	// magnitude zero-point it fixes the profile's total flux as
	// 10^(-0.4*(Mag-magzero)).
	Mag float64

	// Ang is the position angle in degrees, measured from the image
	// y axis.
	Ang float64

	// Axrat is the minor-to-major axis ratio, in (0, 1].
	Axrat float64

	// Box bends the elliptical isophotes into boxy (Box > 0) or disky
	// (Box < 0) generalized ellipses. 0 keeps them elliptical. Must be
	// greater than -2.
	Box float64

	// Rough skips pixel integration entirely and samples the profile
	// once per pixel centre. A deliberate accuracy/speed trade, useful
	// while exploring parameter space.
	Rough bool

	// Acc is the relative accuracy target of the adaptive integration;
	// a subsample whose one-sided test deviates by more than Acc is
	// subdivided further.
	Acc float64

	// RscaleSwitch is the radius, in scale radii, beyond which pixels
	// are point-sampled instead of integrated. The profile wings are
	// smooth enough out there for centre sampling to be exact at
	// working precision.
	RscaleSwitch float64

	// Resolution is the subsample grid side per pixel (an R×R grid).
	Resolution int

	// MaxRecursions bounds the adaptive subdivision depth.
	MaxRecursions int

	// Adjust derives Acc, RscaleSwitch and MaxRecursions from the
	// shape parameters instead of using the fixed values above.
	Adjust bool

	// RscaleMax truncates the profile: pixels beyond RscaleMax scale
	// radii contribute nothing. 0 disables truncation.
	RscaleMax float64

	// Convolve flags this profile's contribution for convolution with
	// the model PSF.
	Convolve bool

	// Derived at initialization, fixed during evaluation.
	ie        float64                 // intensity scale from the requested flux
	cosAng    float64                 // rotation terms, original sign convention
	sinAng    float64                 //
	rscale    float64                 // natural scale radius of the variant
	smooth    bool                    // centre sampling accurate at every radius
	intensity func(r float64) float64 // un-normalized intensity law
}

// defaultRadial returns the documented defaults shared by the radial
// kinds.
func defaultRadial() RadialProfile {
	return RadialProfile{
		Mag:           15,
		Axrat:         1,
		Acc:           0.1,
		RscaleSwitch:  1,
		Resolution:    9,
		MaxRecursions: 2,
	}
}

// Convolved reports whether this profile's contribution must pass
// through the PSF convolution stage.
func (p *RadialProfile) Convolved() bool {
	return p.Convolve
}

// validateRadial checks the shared geometric and quality parameters.
// kind is used in error messages only.
func (p *RadialProfile) validateRadial(kind string) error {
	switch {
	case math.IsNaN(p.Xcen) || math.IsInf(p.Xcen, 0) || math.IsNaN(p.Ycen) || math.IsInf(p.Ycen, 0):
		return fmt.Errorf("%w: %s centre (%g, %g) is not finite", ErrInvalidParameter, kind, p.Xcen, p.Ycen)
	case math.IsNaN(p.Mag) || math.IsInf(p.Mag, 0):
		return fmt.Errorf("%w: %s mag %g is not finite", ErrInvalidParameter, kind, p.Mag)
	case math.IsNaN(p.Ang) || math.IsInf(p.Ang, 0):
		return fmt.Errorf("%w: %s ang %g is not finite", ErrInvalidParameter, kind, p.Ang)
	case !(p.Axrat > 0) || p.Axrat > 1:
		return fmt.Errorf("%w: %s axrat must be in (0, 1], got %g", ErrInvalidParameter, kind, p.Axrat)
	case p.Box <= -2 || math.IsNaN(p.Box) || math.IsInf(p.Box, 0):
		return fmt.Errorf("%w: %s box must be greater than -2, got %g", ErrInvalidParameter, kind, p.Box)
	case !(p.Acc > 0):
		return fmt.Errorf("%w: %s acc must be positive, got %g", ErrInvalidParameter, kind, p.Acc)
	case !(p.RscaleSwitch > 0):
		return fmt.Errorf("%w: %s rscale_switch must be positive, got %g", ErrInvalidParameter, kind, p.RscaleSwitch)
	case p.Resolution < 1:
		return fmt.Errorf("%w: %s resolution must be at least 1, got %d", ErrInvalidParameter, kind, p.Resolution)
	case p.MaxRecursions < 0:
		return fmt.Errorf("%w: %s max_recursions must not be negative, got %d", ErrInvalidParameter, kind, p.MaxRecursions)
	case p.RscaleMax < 0 || math.IsNaN(p.RscaleMax):
		return fmt.Errorf("%w: %s rscale_max must not be negative, got %g", ErrInvalidParameter, kind, p.RscaleMax)
	}
	return nil
}

// initTransform precomputes the rotation terms. The sine carries the
// historical position-angle sign convention: magnitude from the
// cosine, sign flipped for angles below 180 degrees. Preserved for
// compatibility; do not replace with math.Sin.
func (p *RadialProfile) initTransform() {
	angrad := math.Mod(p.Ang, 360) * math.Pi / 180
	p.cosAng = math.Cos(angrad)
	sign := 1.0
	if angrad < math.Pi {
		sign = -1
	}
	p.sinAng = math.Sqrt(1-p.cosAng*p.cosAng) * sign
}

// toProfile maps a physical image coordinate into the profile frame:
// translate to the centre, rotate by the position angle, stretch the
// minor axis by the axis ratio.
func (p *RadialProfile) toProfile(x, y float64) (float64, float64) {
	x -= p.Xcen
	y -= p.Ycen
	xp := x*p.cosAng + y*p.sinAng
	yp := (x*p.sinAng - y*p.cosAng) / p.Axrat
	return xp, yp
}

// valueAt evaluates the intensity law at profile-frame coordinates.
// With boxiness the radius is the generalized L^(box+2) norm;
// otherwise it is Euclidean, and a caller that already knows r can
// pass it with reuseR to skip the square root.
func (p *RadialProfile) valueAt(x, y, r float64, reuseR bool) float64 {
	if p.Box != 0 {
		b := p.Box + 2
		r = math.Pow(math.Pow(math.Abs(x), b)+math.Pow(math.Abs(y), b), 1/b)
	} else if !reuseR {
		r = math.Sqrt(x*x + y*y)
	}
	return p.intensity(r)
}

// boxFactor returns the isophote-area correction for boxy generalized
// ellipses: π(box+2) / (4·B(1/(box+2), 1+1/(box+2))). It is 1 for
// box=0, so purely elliptical profiles keep their closed-form
// luminosities.
func (p *RadialProfile) boxFactor() (float64, error) {
	pb := p.Box + 2
	b, err := specfunc.Beta(1/pb, 1+1/pb)
	if err != nil {
		return 0, fmt.Errorf("%w: box %g: %v", ErrInvalidParameter, p.Box, err)
	}
	return math.Pi * pb / (4 * b), nil
}

// setFlux fixes the intensity scale so the profile's total flux
// matches the requested magnitude against the model zero-point.
func (p *RadialProfile) setFlux(m *Model, lumtot float64) error {
	if !(lumtot > 0) || math.IsInf(lumtot, 0) || math.IsNaN(lumtot) {
		return fmt.Errorf("%w: total luminosity %g is not a positive finite value", ErrInvalidParameter, lumtot)
	}
	p.ie = magToFlux(p.Mag, m.magzero) / lumtot
	return nil
}

// subsample integrates the intensity over the box (x0,x1)×(y0,y1) with
// an R×R midpoint grid. Each subsample is tested against a second
// evaluation one half-bin further out along the minor axis; when the
// relative difference exceeds Acc the subsample is replaced by a
// recursive subdivision of its cell. The one-sided test is a
// historical heuristic with no formal error bound; it is preserved
// as-is for compatibility.
func (p *RadialProfile) subsample(x0, x1, y0, y1 float64, depth int) float64 {
	res := float64(p.Resolution)
	xbin := (x1 - x0) / res
	ybin := (y1 - y0) / res
	halfX := xbin / 2
	halfY := ybin / 2
	recurse := p.Resolution > 1 && depth < p.MaxRecursions
	testOffset := math.Abs(ybin / p.Axrat)

	var total float64
	x := x0
	for i := 0; i < p.Resolution; i++ {
		x += halfX
		y := y0
		for j := 0; j < p.Resolution; j++ {
			y += halfY
			xp, yp := p.toProfile(x, y)
			v := p.valueAt(xp, yp, 0, false)
			if recurse {
				test := p.valueAt(xp, math.Abs(yp)+testOffset, 0, false)
				if math.Abs(test/v-1) > p.Acc {
					v = p.subsample(x-halfX, x+halfX, y-halfY, y+halfY, depth+1)
				}
			}
			total += v
			y += halfY
		}
		x += halfX
	}
	return total / (res * res)
}

// evaluate renders the profile over the model grid into img. Rows run
// in parallel on the model's pool; the recursion inside one pixel is
// depth-first and stays on its row's goroutine.
func (p *RadialProfile) evaluate(m *Model, img *Image) error {
	width := m.width
	scaleX, scaleY := m.scaleX, m.scaleY
	binArea := scaleX * scaleY

	m.pool.Run(m.height, func(j int) {
		y0 := float64(j) * scaleY
		ymid := y0 + scaleY/2
		row := img.data[j*width : (j+1)*width]
		for i := 0; i < width; i++ {
			if m.mask != nil && !m.mask.At(i, j) {
				continue
			}
			x0 := float64(i) * scaleX
			xmid := x0 + scaleX/2

			xp, yp := p.toProfile(xmid, ymid)
			r := math.Sqrt(xp*xp + yp*yp)
			if p.RscaleMax > 0 && r/p.rscale > p.RscaleMax {
				continue
			}

			var v float64
			if p.Rough || p.smooth || r/p.rscale > p.RscaleSwitch {
				v = p.valueAt(xp, yp, r, true)
			} else {
				v = p.subsample(x0, x0+scaleX, y0, y0+scaleY, 0)
			}
			row[i] = binArea * p.ie * v
		}
	})
	return nil
}

// magToFlux converts a magnitude to linear flux against a zero-point.
func magToFlux(mag, magzero float64) float64 {
	return math.Pow(10, -0.4*(mag-magzero))
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

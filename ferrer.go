package galprof

import (
	"fmt"
	"math"

	"github.com/galprof/galprof/internal/specfunc"
)

// Ferrer is the modified Ferrer profile used for galactic bars: a
// truncated law (1 - (r/rout)^(2-b))^a that falls to exactly zero at
// the outer radius. a shapes the outer falloff, b the central slope.
type Ferrer struct {
	RadialProfile

	// Rout is the truncation radius, in physical units.
	Rout float64

	// A controls the sharpness of the outer truncation. Must be
	// greater than -1.
	A float64

	// B controls the central slope. Must be less than 2.
	B float64
}

// NewFerrer returns a Ferrer profile with default parameters.
func NewFerrer() *Ferrer {
	return &Ferrer{
		RadialProfile: defaultRadial(),
		Rout:          3,
		A:             1,
		B:             1,
	}
}

// Kind returns "ferrer".
func (p *Ferrer) Kind() string { return "ferrer" }

func (p *Ferrer) initialize(m *Model) error {
	if err := p.validateRadial(p.Kind()); err != nil {
		return err
	}
	if !(p.Rout > 0) || math.IsInf(p.Rout, 0) {
		return fmt.Errorf("%w: ferrer rout must be positive, got %g", ErrInvalidParameter, p.Rout)
	}
	if !(p.B < 2) {
		return fmt.Errorf("%w: ferrer b must be less than 2, got %g", ErrInvalidParameter, p.B)
	}
	if !(p.A > -1) {
		return fmt.Errorf("%w: ferrer a must be greater than -1, got %g", ErrInvalidParameter, p.A)
	}

	rbox, err := p.boxFactor()
	if err != nil {
		return err
	}
	// In polar form the flux reduces to a complete beta function.
	beta, err := specfunc.Beta(2/(2-p.B), p.A+1)
	if err != nil {
		return fmt.Errorf("%w: ferrer luminosity: %v", ErrInvalidParameter, err)
	}
	lumtot := 2 * math.Pi * p.Axrat * p.Rout * p.Rout * beta / ((2 - p.B) * rbox)
	if err := p.setFlux(m, lumtot); err != nil {
		return err
	}

	p.rscale = p.Rout
	rout, a, exp := p.Rout, p.A, 2-p.B
	p.intensity = func(r float64) float64 {
		if r >= rout {
			return 0
		}
		return math.Pow(1-math.Pow(r/rout, exp), a)
	}
	p.initTransform()
	return nil
}

package galprof

import (
	"fmt"
	"math"

	"github.com/galprof/galprof/internal/specfunc"
)

// CoreSersic joins a power-law core of slope b inside the break radius
// rb onto a Sersic envelope outside it, with a controlling how sharply
// the two regimes meet. Used for massive ellipticals whose centres are
// flatter than any pure Sersic law.
type CoreSersic struct {
	RadialProfile

	// Re is the effective radius of the outer Sersic envelope.
	Re float64

	// Rb is the break radius separating core from envelope.
	Rb float64

	// Nser is the Sersic index of the envelope.
	Nser float64

	// A is the sharpness of the transition at the break. Must be
	// positive; larger is sharper.
	A float64

	// B is the inner power-law slope. Must be less than 2 for the
	// flux to converge.
	B float64
}

// NewCoreSersic returns a CoreSersic profile with default parameters.
func NewCoreSersic() *CoreSersic {
	return &CoreSersic{
		RadialProfile: defaultRadial(),
		Re:            1,
		Rb:            0.5,
		Nser:          4,
		A:             2,
		B:             0,
	}
}

// Kind returns "coresersic".
func (p *CoreSersic) Kind() string { return "coresersic" }

func (p *CoreSersic) initialize(m *Model) error {
	if err := p.validateRadial(p.Kind()); err != nil {
		return err
	}
	if !(p.Re > 0) || math.IsInf(p.Re, 0) {
		return fmt.Errorf("%w: coresersic re must be positive, got %g", ErrInvalidParameter, p.Re)
	}
	if !(p.Rb > 0) || math.IsInf(p.Rb, 0) {
		return fmt.Errorf("%w: coresersic rb must be positive, got %g", ErrInvalidParameter, p.Rb)
	}
	if !(p.Nser > 0) || math.IsInf(p.Nser, 0) {
		return fmt.Errorf("%w: coresersic nser must be positive, got %g", ErrInvalidParameter, p.Nser)
	}
	if !(p.A > 0) || math.IsInf(p.A, 0) {
		return fmt.Errorf("%w: coresersic a must be positive, got %g", ErrInvalidParameter, p.A)
	}
	if !(p.B < 2) {
		return fmt.Errorf("%w: coresersic b must be less than 2, got %g", ErrInvalidParameter, p.B)
	}

	bn, err := specfunc.GammaPInv(2*p.Nser, 0.5)
	if err != nil {
		return fmt.Errorf("%w: coresersic bn: %v", ErrInvalidParameter, err)
	}

	re, rb, nser, a, b := p.Re, p.Rb, p.Nser, p.A, p.B
	rbA := math.Pow(rb, a)
	reA := math.Pow(re, a)
	intensity := func(r float64) float64 {
		return math.Pow(1+math.Pow(r/rb, -a), b/a) *
			math.Exp(-bn*math.Pow((math.Pow(r, a)+rbA)/reA, 1/(nser*a)))
	}

	flux, err := specfunc.TotalFlux(intensity, re, math.Inf(1))
	if err != nil {
		return fmt.Errorf("%w: coresersic luminosity: %v", ErrInvalidParameter, err)
	}
	rbox, err := p.boxFactor()
	if err != nil {
		return err
	}
	if err := p.setFlux(m, flux*p.Axrat/rbox); err != nil {
		return err
	}

	p.rscale = re
	p.intensity = intensity
	p.initTransform()
	return nil
}

package galprof

import (
	"fmt"
	"math"

	"github.com/galprof/galprof/internal/specfunc"
)

// BrokenExponential models disks whose exponential scale length
// changes at a break radius: scale h1 inside, h2 outside, blended over
// a transition whose sharpness is set by a.
type BrokenExponential struct {
	RadialProfile

	// H1 is the inner exponential scale length.
	H1 float64

	// H2 is the outer exponential scale length. Must not exceed H1;
	// the parametrization only describes down-bending breaks.
	H2 float64

	// Rb is the break radius.
	Rb float64

	// A is the transition sharpness; larger values approach a hard
	// break.
	A float64
}

// NewBrokenExponential returns a broken-exponential profile with
// default parameters (equal scale lengths, i.e. a plain exponential).
func NewBrokenExponential() *BrokenExponential {
	return &BrokenExponential{
		RadialProfile: defaultRadial(),
		H1:            1,
		H2:            1,
		Rb:            1,
		A:             1,
	}
}

// Kind returns "brokenexp".
func (p *BrokenExponential) Kind() string { return "brokenexp" }

func (p *BrokenExponential) initialize(m *Model) error {
	if err := p.validateRadial(p.Kind()); err != nil {
		return err
	}
	if !(p.H1 > 0) || math.IsInf(p.H1, 0) {
		return fmt.Errorf("%w: brokenexp h1 must be positive, got %g", ErrInvalidParameter, p.H1)
	}
	if !(p.H2 > 0) || p.H2 > p.H1 {
		return fmt.Errorf("%w: brokenexp h2 must be in (0, h1], got %g", ErrInvalidParameter, p.H2)
	}
	if p.Rb < 0 || math.IsNaN(p.Rb) || math.IsInf(p.Rb, 0) {
		return fmt.Errorf("%w: brokenexp rb must not be negative, got %g", ErrInvalidParameter, p.Rb)
	}
	if !(p.A > 0) || math.IsInf(p.A, 0) {
		return fmt.Errorf("%w: brokenexp a must be positive, got %g", ErrInvalidParameter, p.A)
	}

	h1, h2, rb, a := p.H1, p.H2, p.Rb, p.A
	expnt := (1/h1 - 1/h2) / a
	intensity := func(r float64) float64 {
		// Work in log space: exp(a·(r-rb)) overflows well inside the
		// radii a truncated render can reach.
		return math.Exp(-r/h1 + expnt*softplus(a*(r-rb)))
	}

	flux, err := specfunc.TotalFlux(intensity, h1, math.Inf(1))
	if err != nil {
		return fmt.Errorf("%w: brokenexp luminosity: %v", ErrInvalidParameter, err)
	}
	rbox, err := p.boxFactor()
	if err != nil {
		return err
	}
	if err := p.setFlux(m, flux*p.Axrat/rbox); err != nil {
		return err
	}

	p.rscale = h1
	p.intensity = intensity
	p.initTransform()
	return nil
}

// softplus returns log(1+exp(z)) without overflowing for large z.
func softplus(z float64) float64 {
	if z > 34 {
		// exp(-z) below 1e-15; the log1p term would be lost anyway.
		return z
	}
	return math.Log1p(math.Exp(z))
}

package galprof

import (
	"fmt"
	"math"

	"github.com/galprof/galprof/internal/specfunc"
)

// King is the empirical cluster profile: a cored law with core radius
// rc, truncated so the intensity reaches zero at the tidal radius rt.
// The generalized form raises the classic King law to the power a.
type King struct {
	RadialProfile

	// Rc is the core radius, in physical units.
	Rc float64

	// Rt is the tidal (truncation) radius, in physical units.
	Rt float64

	// A is the generalization power; a=2 recovers the classic
	// empirical King profile.
	A float64
}

// NewKing returns a King profile with default parameters.
func NewKing() *King {
	return &King{
		RadialProfile: defaultRadial(),
		Rc:            1,
		Rt:            3,
		A:             2,
	}
}

// Kind returns "king".
func (p *King) Kind() string { return "king" }

func (p *King) initialize(m *Model) error {
	if err := p.validateRadial(p.Kind()); err != nil {
		return err
	}
	if !(p.Rc > 0) || math.IsInf(p.Rc, 0) {
		return fmt.Errorf("%w: king rc must be positive, got %g", ErrInvalidParameter, p.Rc)
	}
	if !(p.Rt > 0) || math.IsInf(p.Rt, 0) {
		return fmt.Errorf("%w: king rt must be positive, got %g", ErrInvalidParameter, p.Rt)
	}
	if !(p.A > 0) || math.IsInf(p.A, 0) {
		return fmt.Errorf("%w: king a must be positive, got %g", ErrInvalidParameter, p.A)
	}

	rc, rt, a := p.Rc, p.Rt, p.A
	// The subtracted term makes the profile vanish at rt instead of
	// being clipped there.
	edge := 1 / math.Pow(1+(rt/rc)*(rt/rc), 1/a)
	intensity := func(r float64) float64 {
		if r >= rt {
			return 0
		}
		u := r / rc
		core := 1 / math.Pow(1+u*u, 1/a)
		if core <= edge {
			return 0
		}
		return math.Pow(core-edge, a)
	}

	// No closed form for the truncated generalized profile; integrate
	// the circular flux numerically.
	flux, err := specfunc.TotalFlux(intensity, rc, rt)
	if err != nil {
		return fmt.Errorf("%w: king luminosity: %v", ErrInvalidParameter, err)
	}
	rbox, err := p.boxFactor()
	if err != nil {
		return err
	}
	if err := p.setFlux(m, flux*p.Axrat/rbox); err != nil {
		return err
	}

	p.rscale = rc
	p.intensity = intensity
	p.initTransform()
	return nil
}

package galprof

import (
	"fmt"
	"math"
)

// Moffat models seeing-limited point sources and star clusters:
// intensity (1 + (r/rd)²)^(-con), with rd derived from the full width
// at half maximum. Larger concentration indices approach a Gaussian
// core with power-law wings.
type Moffat struct {
	RadialProfile

	// FWHM is the full width at half maximum, in physical units.
	FWHM float64

	// Con is the concentration index. Must exceed 1 for the total
	// flux to converge.
	Con float64
}

// NewMoffat returns a Moffat profile with default parameters.
func NewMoffat() *Moffat {
	return &Moffat{
		RadialProfile: defaultRadial(),
		FWHM:          3,
		Con:           2,
	}
}

// Kind returns "moffat".
func (p *Moffat) Kind() string { return "moffat" }

func (p *Moffat) initialize(m *Model) error {
	if err := p.validateRadial(p.Kind()); err != nil {
		return err
	}
	if !(p.FWHM > 0) || math.IsInf(p.FWHM, 0) {
		return fmt.Errorf("%w: moffat fwhm must be positive, got %g", ErrInvalidParameter, p.FWHM)
	}
	if !(p.Con > 1) || math.IsInf(p.Con, 0) {
		return fmt.Errorf("%w: moffat con must be greater than 1, got %g", ErrInvalidParameter, p.Con)
	}

	// Half maximum falls at rd·sqrt(2^(1/con) - 1) by construction.
	rd := p.FWHM / (2 * math.Sqrt(math.Pow(2, 1/p.Con)-1))

	rbox, err := p.boxFactor()
	if err != nil {
		return err
	}
	lumtot := math.Pi * rd * rd * p.Axrat / ((p.Con - 1) * rbox)
	if err := p.setFlux(m, lumtot); err != nil {
		return err
	}

	p.rscale = rd
	con := p.Con
	p.intensity = func(r float64) float64 {
		u := r / rd
		return math.Pow(1+u*u, -con)
	}
	p.initTransform()
	return nil
}

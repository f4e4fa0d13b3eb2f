package galprof

import (
	"context"
	"errors"
	"math"
	"testing"
)

func renderOne(t *testing.T, p Profile, n int, scale float64) *Image {
	t.Helper()
	m := NewModel(n, n, WithScale(scale, scale), WithMagZero(15))
	m.AddProfile(p)
	res, err := m.Evaluate(context.Background())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	return res.Image
}

// TestSersic_TotalFlux verifies the closed-form normalization: with
// mag equal to the zero-point the rendered flux converges to 1.
func TestSersic_TotalFlux(t *testing.T) {
	s := NewSersic()
	s.Xcen, s.Ycen = 12.8, 12.8
	// Defaults: nser=1, re=1, axrat=1, box=0, mag=15.

	img := renderOne(t, s, 256, 0.1)
	if got := img.Total(); math.Abs(got-1) > 0.01 {
		t.Errorf("Total = %g, want 1.0 within 0.01", got)
	}
}

// TestSersic_TotalFlux_Boxy verifies the beta-function area correction
// keeps the normalization exact for boxy, flattened profiles.
func TestSersic_TotalFlux_Boxy(t *testing.T) {
	s := NewSersic()
	s.Xcen, s.Ycen = 12.8, 12.8
	s.Axrat = 0.7
	s.Ang = 40
	s.Box = 1

	img := renderOne(t, s, 256, 0.1)
	if got := img.Total(); math.Abs(got-1) > 0.015 {
		t.Errorf("Total = %g, want 1.0 within 0.015", got)
	}
}

// TestSersic_RoughVsAdaptive pins down where the two evaluation modes
// may differ: at the centre of cuspy profiles adaptive integration
// departs from centre sampling; wing pixels and sub-Gaussian profiles
// take the centre sample in both modes and must agree exactly.
func TestSersic_RoughVsAdaptive(t *testing.T) {
	render := func(nser float64, rough bool) *Image {
		s := NewSersic()
		s.Xcen, s.Ycen = 10.5, 10.5
		s.Re = 2
		s.Nser = nser
		s.Rough = rough
		return renderOne(t, s, 21, 1)
	}

	t.Run("exponential centre diverges", func(t *testing.T) {
		rough := render(1, true)
		adaptive := render(1, false)
		r := rough.At(10, 10)
		a := adaptive.At(10, 10)
		if (r-a)/a < 0.02 {
			t.Errorf("centre pixel: rough = %g, adaptive = %g, want rough measurably larger", r, a)
		}
	})

	t.Run("sub-gaussian identical", func(t *testing.T) {
		rough := render(0.3, true)
		adaptive := render(0.3, false)
		for i, v := range adaptive.Data() {
			if rough.Data()[i] != v {
				t.Fatalf("pixel %d: rough = %g, adaptive = %g, want identical below nser 0.5",
					i, rough.Data()[i], v)
			}
		}
	})

	t.Run("de vaucouleurs wings identical", func(t *testing.T) {
		rough := render(4, true)
		adaptive := render(4, false)
		// (18, 10) sits 8 units out, beyond the integration switch
		// radius; both modes point-sample there.
		if r, a := rough.At(18, 10), adaptive.At(18, 10); r != a {
			t.Errorf("wing pixel: rough = %g, adaptive = %g, want identical", r, a)
		}
		if r, a := rough.At(10, 10), adaptive.At(10, 10); (r-a)/a < 0.02 {
			t.Errorf("centre pixel: rough = %g, adaptive = %g, want rough measurably larger", r, a)
		}
	})
}

// TestSersic_InvalidParameters verifies per-profile domain checks.
func TestSersic_InvalidParameters(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Sersic)
	}{
		{"re zero", func(s *Sersic) { s.Re = 0 }},
		{"re negative", func(s *Sersic) { s.Re = -3 }},
		{"re infinite", func(s *Sersic) { s.Re = math.Inf(1) }},
		{"nser zero", func(s *Sersic) { s.Nser = 0 }},
		{"nser NaN", func(s *Sersic) { s.Nser = math.NaN() }},
	}

	m := NewModel(1, 1)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSersic()
			tc.mutate(s)
			if err := s.initialize(m); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("initialize error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

// TestSersic_AdjustQuality verifies the shape-derived integration
// settings.
func TestSersic_AdjustQuality(t *testing.T) {
	m := NewModel(1, 1)

	s := NewSersic()
	s.Nser = 4
	s.Axrat = 0.5
	s.Adjust = true
	if err := s.initialize(m); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if s.Acc != 0.04 {
		t.Errorf("Acc = %g, want 0.04", s.Acc)
	}
	if s.MaxRecursions != 3 {
		t.Errorf("MaxRecursions = %d, want 3", s.MaxRecursions)
	}
	if s.RscaleSwitch != 20 {
		t.Errorf("RscaleSwitch = %g, want 20", s.RscaleSwitch)
	}

	steep := NewSersic()
	steep.Nser = 9
	steep.Adjust = true
	if err := steep.initialize(m); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if steep.MaxRecursions != 4 {
		t.Errorf("MaxRecursions = %d, want 4", steep.MaxRecursions)
	}

	disk := NewSersic()
	disk.Adjust = true
	if err := disk.initialize(m); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if disk.Acc != 0.2 {
		t.Errorf("Acc = %g, want 0.2", disk.Acc)
	}
	if disk.RscaleSwitch < 2 || disk.RscaleSwitch > 20 {
		t.Errorf("RscaleSwitch = %g, want within [2, 20]", disk.RscaleSwitch)
	}
}

// TestSersic_Truncation verifies RscaleMax cuts the wings and
// RescaleFlux restores the requested total.
func TestSersic_Truncation(t *testing.T) {
	render := func(rescale bool) *Image {
		s := NewSersic()
		s.Xcen, s.Ycen = 10, 10
		s.RscaleMax = 3
		s.RescaleFlux = rescale
		return renderOne(t, s, 200, 0.1)
	}

	// P(2, bn*3) of the flux lies inside three scale radii.
	truncated := render(false)
	if got := truncated.Total(); math.Abs(got-0.9607) > 0.01 {
		t.Errorf("truncated Total = %g, want 0.9607 within 0.01", got)
	}
	if v := truncated.At(199, 100); v != 0 {
		t.Errorf("pixel beyond the truncation radius = %g, want 0", v)
	}

	rescaled := render(true)
	if got := rescaled.Total(); math.Abs(got-1) > 0.01 {
		t.Errorf("rescaled Total = %g, want 1.0 within 0.01", got)
	}
}

package specfunc

import (
	"errors"
	"math"
	"testing"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestGamma(t *testing.T) {
	tests := []struct {
		x    float64
		want float64
	}{
		{1, 1},
		{5, 24},
		{0.5, math.Sqrt(math.Pi)},
		{2.5, 1.3293403881791370},
	}
	for _, tt := range tests {
		got, err := Gamma(tt.x)
		if err != nil {
			t.Fatalf("Gamma(%g) returned error: %v", tt.x, err)
		}
		if !approx(got, tt.want, 1e-12*tt.want) {
			t.Errorf("Gamma(%g) = %g, want %g", tt.x, got, tt.want)
		}
	}
}

func TestGammaDomain(t *testing.T) {
	for _, x := range []float64{0, -1, -0.5, math.NaN(), math.Inf(1)} {
		if _, err := Gamma(x); !errors.Is(err, ErrDomain) {
			t.Errorf("Gamma(%g) error = %v, want ErrDomain", x, err)
		}
	}
}

func TestBeta(t *testing.T) {
	tests := []struct {
		a, b float64
		want float64
	}{
		{2, 3, 1.0 / 12.0},
		{0.5, 1.5, math.Pi / 2},
		{1, 1, 1},
	}
	for _, tt := range tests {
		got, err := Beta(tt.a, tt.b)
		if err != nil {
			t.Fatalf("Beta(%g, %g) returned error: %v", tt.a, tt.b, err)
		}
		if !approx(got, tt.want, 1e-12*tt.want) {
			t.Errorf("Beta(%g, %g) = %g, want %g", tt.a, tt.b, got, tt.want)
		}
	}

	if _, err := Beta(0, 1); !errors.Is(err, ErrDomain) {
		t.Errorf("Beta(0, 1) error = %v, want ErrDomain", err)
	}
	if _, err := Beta(1, -2); !errors.Is(err, ErrDomain) {
		t.Errorf("Beta(1, -2) error = %v, want ErrDomain", err)
	}
}

func TestGammaPInv(t *testing.T) {
	// Classic Sersic shape constants: b1 and b4.
	tests := []struct {
		a, p float64
		want float64
		tol  float64
	}{
		{2, 0.5, 1.6783469900166605, 1e-8},
		{8, 0.5, 7.6692494425008039, 1e-8},
	}
	for _, tt := range tests {
		got, err := GammaPInv(tt.a, tt.p)
		if err != nil {
			t.Fatalf("GammaPInv(%g, %g) returned error: %v", tt.a, tt.p, err)
		}
		if !approx(got, tt.want, tt.tol) {
			t.Errorf("GammaPInv(%g, %g) = %.10g, want %.10g", tt.a, tt.p, got, tt.want)
		}
		// Round trip through the forward function.
		p, err := GammaP(tt.a, got)
		if err != nil {
			t.Fatalf("GammaP(%g, %g) returned error: %v", tt.a, got, err)
		}
		if !approx(p, tt.p, 1e-10) {
			t.Errorf("GammaP(%g, GammaPInv) = %g, want %g", tt.a, p, tt.p)
		}
	}
}

func TestGammaPInvDomain(t *testing.T) {
	cases := []struct{ a, p float64 }{
		{0, 0.5},
		{-2, 0.5},
		{2, 0},
		{2, 1},
		{2, -0.1},
		{2, 1.1},
	}
	for _, c := range cases {
		if _, err := GammaPInv(c.a, c.p); !errors.Is(err, ErrDomain) {
			t.Errorf("GammaPInv(%g, %g) error = %v, want ErrDomain", c.a, c.p, err)
		}
	}
}

func TestGammaP(t *testing.T) {
	got, err := GammaP(1, 1)
	if err != nil {
		t.Fatalf("GammaP(1, 1) returned error: %v", err)
	}
	want := 1 - math.Exp(-1)
	if !approx(got, want, 1e-12) {
		t.Errorf("GammaP(1, 1) = %g, want %g", got, want)
	}
	if _, err := GammaP(-1, 1); !errors.Is(err, ErrDomain) {
		t.Errorf("GammaP(-1, 1) error = %v, want ErrDomain", err)
	}
}

func TestTotalFluxExponential(t *testing.T) {
	// I(r) = exp(-r/h) integrates to 2π h².
	const h = 2.0
	got, err := TotalFlux(func(r float64) float64 { return math.Exp(-r / h) }, h, math.Inf(1))
	if err != nil {
		t.Fatalf("TotalFlux returned error: %v", err)
	}
	want := 2 * math.Pi * h * h
	if !approx(got, want, 1e-8*want) {
		t.Errorf("TotalFlux(exp disk) = %.10g, want %.10g", got, want)
	}
}

func TestTotalFluxGaussian(t *testing.T) {
	// I(r) = exp(-r²/2σ²) integrates to 2π σ².
	const sigma = 1.5
	got, err := TotalFlux(func(r float64) float64 {
		return math.Exp(-r * r / (2 * sigma * sigma))
	}, sigma, math.Inf(1))
	if err != nil {
		t.Fatalf("TotalFlux returned error: %v", err)
	}
	want := 2 * math.Pi * sigma * sigma
	if !approx(got, want, 1e-8*want) {
		t.Errorf("TotalFlux(gaussian) = %.10g, want %.10g", got, want)
	}
}

func TestTotalFluxTruncated(t *testing.T) {
	// Flat unit disk of radius R has flux π R².
	const R = 3.0
	got, err := TotalFlux(func(r float64) float64 { return 1 }, R, R)
	if err != nil {
		t.Fatalf("TotalFlux returned error: %v", err)
	}
	want := math.Pi * R * R
	if !approx(got, want, 1e-10*want) {
		t.Errorf("TotalFlux(flat disk) = %.10g, want %.10g", got, want)
	}
}

func TestTotalFluxDomain(t *testing.T) {
	flat := func(r float64) float64 { return 1 }
	if _, err := TotalFlux(flat, 0, 1); !errors.Is(err, ErrDomain) {
		t.Errorf("TotalFlux(scale=0) error = %v, want ErrDomain", err)
	}
	if _, err := TotalFlux(flat, 1, -1); !errors.Is(err, ErrDomain) {
		t.Errorf("TotalFlux(rmax=-1) error = %v, want ErrDomain", err)
	}
}

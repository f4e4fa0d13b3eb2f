package galprof

import (
	"errors"
	"math"
	"testing"
)

// TestImage_New verifies dimensions and zero fill.
func TestImage_New(t *testing.T) {
	img := NewImage(7, 4)
	if img.Width() != 7 || img.Height() != 4 {
		t.Fatalf("dimensions = %dx%d, want 7x4", img.Width(), img.Height())
	}
	if len(img.Data()) != 28 {
		t.Fatalf("data length = %d, want 28", len(img.Data()))
	}
	if img.Total() != 0 {
		t.Errorf("Total = %g, want 0", img.Total())
	}
}

// TestImage_FromData verifies the wrapping constructor's length check.
func TestImage_FromData(t *testing.T) {
	img, err := NewImageFromData(2, 3, []float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("NewImageFromData: %v", err)
	}
	if got := img.At(1, 2); got != 6 {
		t.Errorf("At(1, 2) = %g, want 6", got)
	}

	if _, err := NewImageFromData(2, 3, []float64{1, 2}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("short data error = %v, want ErrInvalidConfig", err)
	}
}

// TestImage_FromRows verifies rectangular input is required.
func TestImage_FromRows(t *testing.T) {
	img, err := NewImageFromRows([][]float64{{1, 2}, {3, 4}, {5, 6}})
	if err != nil {
		t.Fatalf("NewImageFromRows: %v", err)
	}
	if img.Width() != 2 || img.Height() != 3 {
		t.Fatalf("dimensions = %dx%d, want 2x3", img.Width(), img.Height())
	}
	if got := img.At(0, 2); got != 5 {
		t.Errorf("At(0, 2) = %g, want 5", got)
	}

	if _, err := NewImageFromRows([][]float64{{1, 2}, {3}}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("ragged rows error = %v, want ErrInvalidConfig", err)
	}
}

// TestImage_OutOfBounds verifies the panic-free bounds contract.
func TestImage_OutOfBounds(t *testing.T) {
	img := NewImage(3, 3)
	img.Fill(1)

	coords := []struct{ x, y int }{
		{-1, 0}, {3, 0}, {0, -1}, {0, 3}, {-10, -10}, {10, 10},
	}
	for _, c := range coords {
		if got := img.At(c.x, c.y); got != 0 {
			t.Errorf("At(%d, %d) = %g, want 0", c.x, c.y, got)
		}
		img.SetAt(c.x, c.y, 5)
		img.AddAt(c.x, c.y, 5)
	}
	if got := img.Total(); got != 9 {
		t.Errorf("Total after out-of-bounds writes = %g, want 9", got)
	}
}

// TestImage_Add verifies pixelwise accumulation and the dimension check.
func TestImage_Add(t *testing.T) {
	a := NewImage(2, 2)
	a.Fill(1)
	b := NewImage(2, 2)
	b.SetAt(1, 0, 3)

	if err := a.Add(b); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := a.At(1, 0); got != 4 {
		t.Errorf("At(1, 0) = %g, want 4", got)
	}
	if got := a.At(0, 1); got != 1 {
		t.Errorf("At(0, 1) = %g, want 1", got)
	}

	if err := a.Add(NewImage(3, 2)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("mismatched Add error = %v, want ErrInvalidConfig", err)
	}
}

// TestImage_Normalize verifies unit-total scaling and the degenerate
// cases.
func TestImage_Normalize(t *testing.T) {
	img := NewImage(2, 2)
	img.Fill(2)
	if err := img.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := img.Total(); math.Abs(got-1) > 1e-15 {
		t.Errorf("Total after Normalize = %g, want 1", got)
	}

	zero := NewImage(2, 2)
	if err := zero.Normalize(); err == nil {
		t.Error("Normalize of all-zero image did not fail")
	}

	bad := NewImage(2, 2)
	bad.SetAt(0, 0, math.NaN())
	if err := bad.Normalize(); err == nil {
		t.Error("Normalize of NaN image did not fail")
	}
}

// TestImage_Clone verifies deep copying.
func TestImage_Clone(t *testing.T) {
	img := NewImage(2, 2)
	img.SetAt(0, 0, 7)
	cp := img.Clone()
	cp.SetAt(0, 0, 9)
	if got := img.At(0, 0); got != 7 {
		t.Errorf("original modified through clone: At(0, 0) = %g, want 7", got)
	}
}

// TestImage_Resample verifies flux conservation and identity
// resampling.
func TestImage_Resample(t *testing.T) {
	img := NewImage(8, 8)
	img.SetAt(3, 3, 1)
	img.SetAt(4, 4, 2)

	up := img.Resample(16, 16)
	if got, want := up.Total(), img.Total(); math.Abs(got-want) > 1e-12 {
		t.Errorf("upsampled Total = %g, want %g", got, want)
	}

	down := img.Resample(4, 4)
	if got, want := down.Total(), img.Total(); math.Abs(got-want) > 1e-12 {
		t.Errorf("downsampled Total = %g, want %g", got, want)
	}

	same := img.Resample(8, 8)
	for i, v := range same.Data() {
		if math.Abs(v-img.Data()[i]) > 1e-12 {
			t.Fatalf("identity resample changed pixel %d: got %g, want %g", i, v, img.Data()[i])
		}
	}
}

// TestImage_ToGray16 verifies the linear display mapping.
func TestImage_ToGray16(t *testing.T) {
	img := NewImage(2, 1)
	img.SetAt(0, 0, 0)
	img.SetAt(1, 0, 4)

	gray := img.ToGray16()
	if got := gray.Gray16At(0, 0).Y; got != 0 {
		t.Errorf("Gray16At(0, 0) = %d, want 0", got)
	}
	if got := gray.Gray16At(1, 0).Y; got != 65535 {
		t.Errorf("Gray16At(1, 0) = %d, want 65535", got)
	}
}

// TestMask_Defaults verifies a fresh mask evaluates everywhere and the
// bounds contract reports false outside.
func TestMask_Defaults(t *testing.T) {
	m := NewMask(3, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if !m.At(x, y) {
				t.Fatalf("At(%d, %d) = false, want true", x, y)
			}
		}
	}
	if m.At(-1, 0) || m.At(3, 0) || m.At(0, 2) {
		t.Error("out-of-bounds mask lookup reported true")
	}

	m.SetAt(1, 1, false)
	if m.At(1, 1) {
		t.Error("At(1, 1) = true after SetAt(false)")
	}

	if _, err := NewMaskFromData(2, 2, []bool{true}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("short mask data error = %v, want ErrInvalidConfig", err)
	}
}

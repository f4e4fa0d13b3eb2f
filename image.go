package galprof

import (
	"fmt"
	"image"
	"math"
)

// Image is a rectangular buffer of flux values, stored row-major.
//
// Pixel (0, 0) is the first element of Data; pixel (x, y) lives at
// index x + y*Width. Values are linear flux, not display intensities.
type Image struct {
	width  int
	height int
	data   []float64
}

// NewImage creates a zero-filled image with the given dimensions.
func NewImage(width, height int) *Image {
	return &Image{
		width:  width,
		height: height,
		data:   make([]float64, width*height),
	}
}

// NewImageFromData wraps an existing row-major slice. The slice is not
// copied. It returns an error unless len(data) == width*height.
func NewImageFromData(width, height int, data []float64) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image dimensions %dx%d", ErrInvalidConfig, width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: image data length %d, want %d", ErrInvalidConfig, len(data), width*height)
	}
	return &Image{width: width, height: height, data: data}, nil
}

// NewImageFromRows builds an image from a slice of rows. All rows must
// have the same length; ragged input is a configuration error.
func NewImageFromRows(rows [][]float64) (*Image, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrInvalidConfig)
	}
	height := len(rows)
	width := len(rows[0])
	img := NewImage(width, height)
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: matrix row %d has %d values, want %d", ErrInvalidConfig, y, len(row), width)
		}
		copy(img.data[y*width:(y+1)*width], row)
	}
	return img, nil
}

// Width returns the width of the image in pixels.
func (im *Image) Width() int {
	return im.width
}

// Height returns the height of the image in pixels.
func (im *Image) Height() int {
	return im.height
}

// Data returns the raw row-major pixel values.
func (im *Image) Data() []float64 {
	return im.data
}

// At returns the value of a single pixel, or 0 outside the image.
func (im *Image) At(x, y int) float64 {
	if x < 0 || x >= im.width || y < 0 || y >= im.height {
		return 0
	}
	return im.data[x+y*im.width]
}

// SetAt sets the value of a single pixel. Out-of-bounds coordinates
// are ignored.
func (im *Image) SetAt(x, y int, v float64) {
	if x < 0 || x >= im.width || y < 0 || y >= im.height {
		return
	}
	im.data[x+y*im.width] = v
}

// AddAt accumulates v into a single pixel. Out-of-bounds coordinates
// are ignored.
func (im *Image) AddAt(x, y int, v float64) {
	if x < 0 || x >= im.width || y < 0 || y >= im.height {
		return
	}
	im.data[x+y*im.width] += v
}

// Fill sets every pixel to v.
func (im *Image) Fill(v float64) {
	for i := range im.data {
		im.data[i] = v
	}
}

// Total returns the sum of all pixel values.
func (im *Image) Total() float64 {
	var sum float64
	for _, v := range im.data {
		sum += v
	}
	return sum
}

// Clone returns a deep copy of the image.
func (im *Image) Clone() *Image {
	out := NewImage(im.width, im.height)
	copy(out.data, im.data)
	return out
}

// Add accumulates other into im pixelwise. Dimensions must match.
func (im *Image) Add(other *Image) error {
	if other.width != im.width || other.height != im.height {
		return fmt.Errorf("%w: cannot add %dx%d image to %dx%d image",
			ErrInvalidConfig, other.width, other.height, im.width, im.height)
	}
	for i, v := range other.data {
		im.data[i] += v
	}
	return nil
}

// Normalize scales the image in place so its total is 1. PSF kernels
// are normalized before convolution so they redistribute flux without
// changing the total. It returns an error when the total is zero,
// negative or not finite.
func (im *Image) Normalize() error {
	total := im.Total()
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		return fmt.Errorf("%w: image total %g cannot be normalized", ErrInvalidConfig, total)
	}
	inv := 1 / total
	for i := range im.data {
		im.data[i] *= inv
	}
	return nil
}

// Resample returns a bilinear resampling of the image to new
// dimensions. Flux is conserved: the result is scaled so its total
// matches the source's. Used to bring a PSF kernel defined on its own
// pixel scale onto the model's grid.
func (im *Image) Resample(width, height int) *Image {
	out := NewImage(width, height)
	if width <= 0 || height <= 0 || im.width == 0 || im.height == 0 {
		return out
	}

	xRatio := float64(im.width) / float64(width)
	yRatio := float64(im.height) / float64(height)

	for y := 0; y < height; y++ {
		// Source coordinate of the destination pixel centre.
		sy := (float64(y)+0.5)*yRatio - 0.5
		y0 := int(math.Floor(sy))
		ty := sy - float64(y0)
		y1 := y0 + 1
		y0 = clampInt(y0, 0, im.height-1)
		y1 = clampInt(y1, 0, im.height-1)

		for x := 0; x < width; x++ {
			sx := (float64(x)+0.5)*xRatio - 0.5
			x0 := int(math.Floor(sx))
			tx := sx - float64(x0)
			x1 := x0 + 1
			x0 = clampInt(x0, 0, im.width-1)
			x1 = clampInt(x1, 0, im.width-1)

			top := im.data[x0+y0*im.width]*(1-tx) + im.data[x1+y0*im.width]*tx
			bot := im.data[x0+y1*im.width]*(1-tx) + im.data[x1+y1*im.width]*tx
			out.data[x+y*width] = top*(1-ty) + bot*ty
		}
	}

	if src := im.Total(); src != 0 {
		if dst := out.Total(); dst != 0 {
			scale := src / dst
			for i := range out.data {
				out.data[i] *= scale
			}
		}
	}
	return out
}

// ToGray16 converts the image to a 16-bit grayscale stdlib image,
// mapping [0, max] linearly onto the full range. Negative values clamp
// to black.
func (im *Image) ToGray16() *image.Gray16 {
	out := image.NewGray16(image.Rect(0, 0, im.width, im.height))
	max := 0.0
	for _, v := range im.data {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return out
	}
	for y := 0; y < im.height; y++ {
		for x := 0; x < im.width; x++ {
			v := im.data[x+y*im.width] / max
			if v < 0 {
				v = 0
			}
			g := uint16(v*65535 + 0.5)
			i := out.PixOffset(x, y)
			out.Pix[i] = uint8(g >> 8)
			out.Pix[i+1] = uint8(g)
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Mask marks which pixels of a model image should be evaluated. A
// false entry lets the renderer skip that pixel entirely; skipped
// pixels stay at zero (or the sky background, which ignores geometry
// but still honours the mask).
type Mask struct {
	width  int
	height int
	data   []bool
}

// NewMask creates a mask covering the full image: every pixel set to
// true (evaluate).
func NewMask(width, height int) *Mask {
	m := &Mask{
		width:  width,
		height: height,
		data:   make([]bool, width*height),
	}
	for i := range m.data {
		m.data[i] = true
	}
	return m
}

// NewMaskFromData wraps an existing row-major bool slice. The slice is
// not copied. It returns an error unless len(data) == width*height.
func NewMaskFromData(width, height int, data []bool) (*Mask, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: mask dimensions %dx%d", ErrInvalidConfig, width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: mask data length %d, want %d", ErrInvalidConfig, len(data), width*height)
	}
	return &Mask{width: width, height: height, data: data}, nil
}

// Width returns the width of the mask in pixels.
func (m *Mask) Width() int {
	return m.width
}

// Height returns the height of the mask in pixels.
func (m *Mask) Height() int {
	return m.height
}

// At reports whether pixel (x, y) should be evaluated. Out-of-bounds
// coordinates report false.
func (m *Mask) At(x, y int) bool {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return false
	}
	return m.data[x+y*m.width]
}

// SetAt sets a single mask entry. Out-of-bounds coordinates are
// ignored.
func (m *Mask) SetAt(x, y int, v bool) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.data[x+y*m.width] = v
}

// Fill sets every mask entry to v.
func (m *Mask) Fill(v bool) {
	for i := range m.data {
		m.data[i] = v
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/astrogo/fitsio"

	"github.com/galprof/galprof"
)

// readFITS loads the first 2-D image HDU of a FITS file, converting
// whatever pixel type it carries to float64. Axis order follows FITS:
// NAXIS1 is the width.
func readFITS(path string) (*galprof.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fits, err := fitsio.Open(f)
	if err != nil {
		return nil, err
	}
	defer fits.Close()

	for _, hdu := range fits.HDUs() {
		img, ok := hdu.(fitsio.Image)
		if !ok {
			continue
		}
		hdr := img.Header()
		axes := hdr.Axes()
		if len(axes) != 2 || axes[0] <= 0 || axes[1] <= 0 {
			continue
		}
		w, h := axes[0], axes[1]
		data, err := readPixels(img, hdr.Bitpix(), w*h)
		if err != nil {
			return nil, err
		}
		return galprof.NewImageFromData(w, h, data)
	}
	return nil, fmt.Errorf("no 2-D image HDU")
}

func readPixels(img fitsio.Image, bitpix, n int) ([]float64, error) {
	switch bitpix {
	case -64:
		return readPixelsAs[float64](img, n)
	case -32:
		return readPixelsAs[float32](img, n)
	case 8:
		return readPixelsAs[uint8](img, n)
	case 16:
		return readPixelsAs[int16](img, n)
	case 32:
		return readPixelsAs[int32](img, n)
	case 64:
		return readPixelsAs[int64](img, n)
	default:
		return nil, fmt.Errorf("unsupported BITPIX %d", bitpix)
	}
}

func readPixelsAs[T uint8 | int16 | int32 | int64 | float32 | float64](img fitsio.Image, n int) ([]float64, error) {
	var px []T
	if err := img.Read(&px); err != nil {
		return nil, err
	}
	if len(px) < n {
		return nil, fmt.Errorf("short image data: %d pixels, want %d", len(px), n)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(px[i])
	}
	return out, nil
}

// writeFITS stores the rendered image as a 64-bit float primary HDU,
// with the zero-point and the convolution frame offsets recorded in
// the header.
func writeFITS(f *os.File, res *galprof.Result, cfg *modelConfig) error {
	img := res.Image

	fits, err := fitsio.Create(f)
	if err != nil {
		return err
	}
	defer fits.Close()

	hdu := fitsio.NewImage(-64, []int{img.Width(), img.Height()})
	defer hdu.Close()

	err = hdu.Header().Append(
		fitsio.Card{Name: "MAGZERO", Value: cfg.Magzero, Comment: "magnitude zero-point"},
		fitsio.Card{Name: "OFFSETX", Value: res.OffsetX, Comment: "frame offset from convolution (x)"},
		fitsio.Card{Name: "OFFSETY", Value: res.OffsetY, Comment: "frame offset from convolution (y)"},
	)
	if err != nil {
		return err
	}

	data := img.Data()
	if err := hdu.Write(&data); err != nil {
		return err
	}
	return fits.Write(hdu)
}

package galprof

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/galprof/galprof/internal/parallel"
)

// fftConvolver computes the linear convolution in the frequency
// domain. Source and kernel are zero-padded to a power of two large
// enough to hold the full linear result, transformed with row and
// column passes, multiplied, and inverse-transformed; the crop origin
// (Kw/2, Kh/2) reproduces the brute-force alignment exactly.
type fftConvolver struct {
	width  int
	height int
	kw     int
	kh     int
	padW   int
	padH   int
	reuse  bool

	kernel *Image
	pool   *parallel.Pool

	// CmplxFFT plans are not safe for concurrent use, so transform
	// workers borrow plan+scratch bundles from these pools.
	rowPlans sync.Pool
	colPlans sync.Pool

	mu   sync.Mutex
	kfft []complex128 // kernel spectrum, nil until planned
}

type fftScratch struct {
	fft *fourier.CmplxFFT
	in  []complex128
	out []complex128
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func newFFTConvolver(cfg ConvolverConfig) (Convolver, error) {
	kw, kh := cfg.Kernel.width, cfg.Kernel.height
	c := &fftConvolver{
		width:  cfg.Width,
		height: cfg.Height,
		kw:     kw,
		kh:     kh,
		padW:   nextPow2(cfg.Width + kw - 1),
		padH:   nextPow2(cfg.Height + kh - 1),
		reuse:  cfg.ReuseKernelTransform,
		kernel: cfg.Kernel.Clone(),
		pool:   parallel.NewPool(cfg.Threads),
	}
	c.rowPlans = sync.Pool{New: func() any {
		return &fftScratch{
			fft: fourier.NewCmplxFFT(c.padW),
			in:  make([]complex128, c.padW),
			out: make([]complex128, c.padW),
		}
	}}
	c.colPlans = sync.Pool{New: func() any {
		return &fftScratch{
			fft: fourier.NewCmplxFFT(c.padH),
			in:  make([]complex128, c.padH),
			out: make([]complex128, c.padH),
		}
	}}

	if cfg.Effort > 0 {
		c.rowPlans.Put(c.rowPlans.New())
		c.colPlans.Put(c.colPlans.New())
		if c.reuse {
			c.mu.Lock()
			c.kfft = c.kernelSpectrum()
			c.mu.Unlock()
		}
	}
	return c, nil
}

func (c *fftConvolver) Convolve(src *Image) (*Image, error) {
	if src.width != c.width || src.height != c.height {
		return nil, fmt.Errorf("%w: source is %dx%d, convolver planned for %dx%d",
			ErrConvolution, src.width, src.height, c.width, c.height)
	}

	buf := make([]complex128, c.padW*c.padH)
	for y := 0; y < c.height; y++ {
		srow := src.data[y*c.width : (y+1)*c.width]
		brow := buf[y*c.padW:]
		for x, v := range srow {
			brow[x] = complex(v, 0)
		}
	}
	c.fft2(buf, false)

	kfft := c.sharedKernelSpectrum()
	for i, k := range kfft {
		buf[i] *= k
	}

	c.fft2(buf, true)

	// Round trips through Coefficients and Sequence scale by the
	// sequence length on each axis.
	norm := 1 / float64(c.padW*c.padH)
	cx, cy := c.kw/2, c.kh/2
	out := NewImage(c.width, c.height)
	for y := 0; y < c.height; y++ {
		orow := out.data[y*c.width : (y+1)*c.width]
		brow := buf[(y+cy)*c.padW+cx:]
		for x := range orow {
			orow[x] = real(brow[x]) * norm
		}
	}
	return out, nil
}

func (c *fftConvolver) sharedKernelSpectrum() []complex128 {
	if !c.reuse {
		return c.kernelSpectrum()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kfft == nil {
		c.kfft = c.kernelSpectrum()
	}
	return c.kfft
}

func (c *fftConvolver) kernelSpectrum() []complex128 {
	buf := make([]complex128, c.padW*c.padH)
	for v := 0; v < c.kh; v++ {
		krow := c.kernel.data[v*c.kw : (v+1)*c.kw]
		brow := buf[v*c.padW:]
		for u, k := range krow {
			brow[u] = complex(k, 0)
		}
	}
	c.fft2(buf, false)
	return buf
}

// fft2 transforms buf, a padH×padW row-major grid, in place: one pass
// over the rows, one over the columns.
func (c *fftConvolver) fft2(buf []complex128, inverse bool) {
	c.pool.Run(c.padH, func(y int) {
		s := c.rowPlans.Get().(*fftScratch)
		row := buf[y*c.padW : (y+1)*c.padW]
		if inverse {
			s.fft.Sequence(s.out, row)
		} else {
			s.fft.Coefficients(s.out, row)
		}
		copy(row, s.out)
		c.rowPlans.Put(s)
	})

	c.pool.Run(c.padW, func(x int) {
		s := c.colPlans.Get().(*fftScratch)
		for y := 0; y < c.padH; y++ {
			s.in[y] = buf[y*c.padW+x]
		}
		if inverse {
			s.fft.Sequence(s.out, s.in)
		} else {
			s.fft.Coefficients(s.out, s.in)
		}
		for y := 0; y < c.padH; y++ {
			buf[y*c.padW+x] = s.out[y]
		}
		c.colPlans.Put(s)
	})
}

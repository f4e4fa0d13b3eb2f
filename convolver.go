package galprof

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/galprof/galprof/internal/parallel"
)

// Convolver produces the 2-D convolution of a source image with a
// fixed kernel, cropped and aligned to the source's coordinate frame.
// A convolver is planned for one source geometry and one kernel at
// construction and may be reused across many Convolve calls.
//
// All strategies share the same alignment contract: output pixel
// (x, y) is Σ src(x + Kw/2 - u, y + Kh/2 - v)·K(u, v) with zero
// padding outside the source. Convolving with a centred unit impulse
// is the identity for odd kernel dimensions; even dimensions shift the
// content by half a pixel, which the model reports as a sub-pixel
// offset on its result.
type Convolver interface {
	Convolve(src *Image) (*Image, error)
}

// Built-in convolver type names.
const (
	// ConvolverBrute is direct spatial summation: O(W·H·Kw·Kh), exact,
	// rows parallelized.
	ConvolverBrute = "brute"

	// ConvolverBruteOld is the historical name of the brute-force
	// strategy, accepted as an alias.
	ConvolverBruteOld = "brute-old"

	// ConvolverFFT convolves in the frequency domain. Much faster for
	// large kernels, agrees with brute within floating-point
	// tolerance.
	ConvolverFFT = "fft"

	// ConvolverAccel requests whatever convolver the registered
	// accelerator serves. Constructing it without an accelerator is
	// ErrNoAccelerator.
	ConvolverAccel = "accel"
)

// ConvolverConfig carries the construction preferences for a
// convolver.
type ConvolverConfig struct {
	// Type selects the strategy: ConvolverBrute, ConvolverFFT, or a
	// type served by a registered accelerator. Empty means brute.
	Type string

	// Width, Height are the source image dimensions the convolver is
	// planned for.
	Width  int
	Height int

	// Kernel is the PSF image. It is copied at construction; callers
	// normalize it beforehand when flux preservation matters.
	Kernel *Image

	// Threads bounds the parallelism; 0 means GOMAXPROCS.
	Threads int

	// ReuseKernelTransform keeps the kernel's frequency-domain
	// transform across Convolve calls. A meaningful optimization when
	// many models share one PSF. FFT only.
	ReuseKernelTransform bool

	// Effort trades setup time for faster first use: values above 0
	// plan transforms and the kernel spectrum eagerly at
	// construction instead of on first Convolve.
	Effort int

	// Accelerator optionally routes construction to a specific
	// accelerator; nil uses the registered one when Type is not a
	// built-in.
	Accelerator Accelerator
}

func (cfg ConvolverConfig) validate() error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: convolver source dimensions %dx%d", ErrInvalidConfig, cfg.Width, cfg.Height)
	}
	if cfg.Kernel == nil || cfg.Kernel.width <= 0 || cfg.Kernel.height <= 0 {
		return fmt.Errorf("%w: convolver needs a non-empty kernel", ErrInvalidConfig)
	}
	return nil
}

// ConvolverFactory builds a convolver from a validated configuration.
type ConvolverFactory func(cfg ConvolverConfig) (Convolver, error)

var (
	convolverMu        sync.RWMutex
	convolverFactories = map[string]ConvolverFactory{}
)

// RegisterConvolverType makes a convolver strategy available to
// NewConvolver under the given name. Registering an existing name
// replaces the previous factory; accelerator packages use this to
// expose their device-backed types.
func RegisterConvolverType(name string, factory ConvolverFactory) {
	if name == "" || factory == nil {
		return
	}
	convolverMu.Lock()
	convolverFactories[name] = factory
	convolverMu.Unlock()
}

// ConvolverTypes returns the registered convolver type names, sorted.
func ConvolverTypes() []string {
	convolverMu.RLock()
	names := make([]string, 0, len(convolverFactories))
	for name := range convolverFactories {
		names = append(names, name)
	}
	convolverMu.RUnlock()
	sort.Strings(names)
	return names
}

func init() {
	RegisterConvolverType(ConvolverBrute, newBruteConvolver)
	RegisterConvolverType(ConvolverBruteOld, newBruteConvolver)
	RegisterConvolverType(ConvolverFFT, newFFTConvolver)
}

// NewConvolver builds a convolver for the given configuration. Types
// with no registered factory are offered to the accelerator (the one
// in the config, or the registered one); an accelerator answering
// ErrFallbackToCPU transparently yields the brute-force convolver.
func NewConvolver(cfg ConvolverConfig) (Convolver, error) {
	if cfg.Type == "" {
		cfg.Type = ConvolverBrute
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	convolverMu.RLock()
	factory, ok := convolverFactories[cfg.Type]
	convolverMu.RUnlock()
	if ok {
		return factory(cfg)
	}

	a := cfg.Accelerator
	if a == nil {
		a = CurrentAccelerator()
	}
	if a == nil {
		if cfg.Type == ConvolverAccel {
			return nil, fmt.Errorf("%w: convolver type %q", ErrNoAccelerator, cfg.Type)
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownConvolver, cfg.Type)
	}
	conv, err := a.NewConvolver(cfg)
	if errors.Is(err, ErrFallbackToCPU) {
		Logger().Debug("accelerator declined convolver, using brute force",
			"type", cfg.Type, "accelerator", a.Name())
		return newBruteConvolver(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("galprof: accelerator %q convolver: %w", a.Name(), err)
	}
	return conv, nil
}

// convolutionOffset reports the sub-pixel shift the alignment contract
// introduces for even kernel dimensions, in physical units. Callers
// add it to coordinates measured on the convolved image to express
// them in the model frame.
func convolutionOffset(kernel *Image, scaleX, scaleY float64) (float64, float64) {
	var ox, oy float64
	if kernel.width%2 == 0 {
		ox = 0.5 * scaleX
	}
	if kernel.height%2 == 0 {
		oy = 0.5 * scaleY
	}
	return ox, oy
}

// bruteConvolver is direct spatial summation with the kernel flip
// folded into the indexing.
type bruteConvolver struct {
	width  int
	height int
	kernel *Image
	pool   *parallel.Pool
}

func newBruteConvolver(cfg ConvolverConfig) (Convolver, error) {
	return &bruteConvolver{
		width:  cfg.Width,
		height: cfg.Height,
		kernel: cfg.Kernel.Clone(),
		pool:   parallel.NewPool(cfg.Threads),
	}, nil
}

func (c *bruteConvolver) Convolve(src *Image) (*Image, error) {
	if src.width != c.width || src.height != c.height {
		return nil, fmt.Errorf("%w: source is %dx%d, convolver planned for %dx%d",
			ErrConvolution, src.width, src.height, c.width, c.height)
	}

	out := NewImage(c.width, c.height)
	kw, kh := c.kernel.width, c.kernel.height
	cx, cy := kw/2, kh/2
	kdata := c.kernel.data
	sdata := src.data

	c.pool.Run(c.height, func(y int) {
		orow := out.data[y*c.width : (y+1)*c.width]
		for x := 0; x < c.width; x++ {
			var sum float64
			for v := 0; v < kh; v++ {
				sy := y + cy - v
				if sy < 0 || sy >= c.height {
					continue
				}
				srow := sdata[sy*c.width : sy*c.width+c.width]
				krow := kdata[v*kw : (v+1)*kw]
				for u := 0; u < kw; u++ {
					sx := x + cx - u
					if sx < 0 || sx >= c.width {
						continue
					}
					sum += srow[sx] * krow[u]
				}
			}
			orow[x] = sum
		}
	})
	return out, nil
}

package galprof

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/galprof/galprof/internal/parallel"
)

// Result is the output of one render.
type Result struct {
	// Image is the rendered surface-brightness image.
	Image *Image

	// OffsetX, OffsetY describe the sub-pixel coordinate-frame shift
	// introduced when convolving with an even-dimensioned kernel, in
	// physical units. Add them to coordinates measured on Image to
	// express those coordinates in the model frame. Zero when no
	// convolution took place or the kernel dimensions are odd.
	OffsetX float64
	OffsetY float64

	// Warnings lists profiles that were dropped during initialization
	// because of invalid parameters, in profile order. The rest of the
	// model rendered normally.
	Warnings []string
}

// Model assembles a pixel grid, a set of light profiles and an
// optional PSF into a rendering pipeline. Configure it with NewModel
// and options, add profiles, then call Evaluate.
//
// A Model is not safe for concurrent Evaluate calls. The PSF image
// passed to WithPSF must not be mutated after construction; the model
// prepares and caches its convolution kernel from it on first use.
type Model struct {
	width   int
	height  int
	scaleX  float64
	scaleY  float64
	magzero float64

	psf       *Image
	psfScaleX float64
	psfScaleY float64

	mask    *Mask
	threads int
	accel   Accelerator

	convolver     Convolver
	convolverType string

	profiles []Profile

	pool      *parallel.Pool
	psfKernel *Image
	builtConv Convolver
}

// NewModel creates a model rendering width×height pixels. The defaults
// are a pixel scale of 1×1, a magnitude zero-point of 0, no PSF, no
// mask and one worker per CPU. Dimensions are validated at Evaluate
// time so that configuration errors surface through the usual error
// path.
func NewModel(width, height int, opts ...ModelOption) *Model {
	m := &Model{
		width:  width,
		height: height,
		scaleX: 1,
		scaleY: 1,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.psfScaleX == 0 {
		m.psfScaleX = m.scaleX
	}
	if m.psfScaleY == 0 {
		m.psfScaleY = m.scaleY
	}
	return m
}

// AddProfile appends a profile to the model. Insertion order fixes the
// summation order only; the rendered image is order-independent within
// floating-point tolerance.
func (m *Model) AddProfile(p Profile) {
	if p != nil {
		m.profiles = append(m.profiles, p)
	}
}

// AddProfiles appends several profiles in order.
func (m *Model) AddProfiles(ps ...Profile) {
	for _, p := range ps {
		m.AddProfile(p)
	}
}

// Evaluate renders the model: profiles are validated, initialized,
// evaluated over the grid, summed, and the convolution-flagged subset
// is convolved with the PSF. Profiles with invalid parameters are
// dropped with a warning; configuration errors (ErrInvalidConfig) and
// runtime failures abort the render with no partial image. The context
// is checked between pipeline stages; a running stage is not
// interrupted.
func (m *Model) Evaluate(ctx context.Context) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	if err := m.validate(); err != nil {
		return nil, err
	}
	if m.pool == nil {
		m.pool = parallel.NewPool(m.threads)
	}
	if err := m.preparePSF(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{}
	live := make([]Profile, 0, len(m.profiles))
	for i, p := range m.profiles {
		if err := p.initialize(m); err != nil {
			Logger().Warn("dropping profile",
				"index", i, "kind", p.Kind(), "err", err)
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("profile %d (%s) dropped: %v", i, p.Kind(), err))
			continue
		}
		live = append(live, p)
	}
	Logger().Debug("profiles initialized",
		"total", len(m.profiles), "live", len(live))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bufs := make([]*Image, len(live))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range live {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img := NewImage(m.width, m.height)
			if err := p.evaluate(m, img); err != nil {
				return fmt.Errorf("galprof: %s profile: %w", p.Kind(), err)
			}
			bufs[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	Logger().Debug("profiles evaluated", "elapsed", time.Since(start))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	final := NewImage(m.width, m.height)
	var convSum *Image
	for i, p := range live {
		dst := final
		if p.Convolved() {
			if convSum == nil {
				convSum = NewImage(m.width, m.height)
			}
			dst = convSum
		}
		if err := dst.Add(bufs[i]); err != nil {
			return nil, err
		}
	}

	if convSum != nil {
		conv, err := m.renderConvolver()
		if err != nil {
			return nil, err
		}
		out, err := conv.Convolve(convSum)
		if err != nil {
			return nil, err
		}
		if err := final.Add(out); err != nil {
			return nil, err
		}
		res.OffsetX, res.OffsetY = convolutionOffset(m.psfKernel, m.scaleX, m.scaleY)
		Logger().Debug("convolution done",
			"kernel", fmt.Sprintf("%dx%d", m.psfKernel.width, m.psfKernel.height),
			"elapsed", time.Since(start))
	}

	res.Image = final
	Logger().Debug("render finished",
		"size", fmt.Sprintf("%dx%d", m.width, m.height),
		"elapsed", time.Since(start))
	return res, nil
}

func (m *Model) validate() error {
	if m.width <= 0 || m.height <= 0 {
		return fmt.Errorf("%w: model dimensions %dx%d", ErrInvalidConfig, m.width, m.height)
	}
	if !(m.scaleX > 0) || !(m.scaleY > 0) ||
		math.IsInf(m.scaleX, 0) || math.IsInf(m.scaleY, 0) {
		return fmt.Errorf("%w: pixel scale %gx%g", ErrInvalidConfig, m.scaleX, m.scaleY)
	}
	if m.mask != nil && (m.mask.width != m.width || m.mask.height != m.height) {
		return fmt.Errorf("%w: mask is %dx%d, model is %dx%d",
			ErrInvalidConfig, m.mask.width, m.mask.height, m.width, m.height)
	}

	needPSF := false
	for _, p := range m.profiles {
		if p.Convolved() || p.Kind() == "psf" {
			needPSF = true
			break
		}
	}
	if needPSF && m.psf == nil {
		return fmt.Errorf("%w: profiles require convolution but the model has no psf", ErrInvalidConfig)
	}

	if m.psf != nil {
		if m.psf.width <= 0 || m.psf.height <= 0 {
			return fmt.Errorf("%w: psf is empty", ErrInvalidConfig)
		}
		if !(m.psfScaleX > 0) || !(m.psfScaleY > 0) ||
			math.IsInf(m.psfScaleX, 0) || math.IsInf(m.psfScaleY, 0) {
			return fmt.Errorf("%w: psf pixel scale %gx%g", ErrInvalidConfig, m.psfScaleX, m.psfScaleY)
		}
		for _, v := range m.psf.data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: psf contains non-finite values", ErrInvalidConfig)
			}
		}
	}
	return nil
}

// preparePSF builds the convolution kernel from the model PSF:
// resampled onto the model's pixel scale when the two differ, then
// normalized to unit total. The kernel is cached across renders.
func (m *Model) preparePSF() error {
	if m.psf == nil || m.psfKernel != nil {
		return nil
	}
	k := m.psf
	if m.psfScaleX != m.scaleX || m.psfScaleY != m.scaleY {
		w := kernelDim(k.width, m.psfScaleX, m.scaleX)
		h := kernelDim(k.height, m.psfScaleY, m.scaleY)
		k = k.Resample(w, h)
		Logger().Debug("psf resampled",
			"from", fmt.Sprintf("%dx%d", m.psf.width, m.psf.height),
			"to", fmt.Sprintf("%dx%d", w, h))
	} else {
		k = k.Clone()
	}
	if err := k.Normalize(); err != nil {
		return fmt.Errorf("%w: psf: %v", ErrInvalidConfig, err)
	}
	m.psfKernel = k
	return nil
}

// kernelDim maps a kernel dimension from its own pixel scale onto the
// model's.
func kernelDim(n int, kernelScale, modelScale float64) int {
	d := int(math.Round(float64(n) * kernelScale / modelScale))
	if d < 1 {
		d = 1
	}
	return d
}

// renderConvolver returns the convolver the render uses: the
// caller-provided one when set, otherwise one built from the prepared
// kernel (and cached, so FFT kernel transforms survive across
// renders).
func (m *Model) renderConvolver() (Convolver, error) {
	if m.convolver != nil {
		return m.convolver, nil
	}
	if m.builtConv == nil {
		typ := m.convolverType
		if typ == "" {
			typ = ConvolverBrute
		}
		conv, err := NewConvolver(ConvolverConfig{
			Type:                 typ,
			Width:                m.width,
			Height:               m.height,
			Kernel:               m.psfKernel,
			Threads:              m.threads,
			ReuseKernelTransform: true,
			Accelerator:          m.accel,
		})
		if err != nil {
			return nil, err
		}
		Logger().Debug("convolver selected", "type", typ)
		m.builtConv = conv
	}
	return m.builtConv, nil
}

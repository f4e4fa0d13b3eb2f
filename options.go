package galprof

// ModelOption configures a Model during creation.
//
// Example:
//
//	// A bare 100x100 model
//	m := galprof.NewModel(100, 100)
//
//	// With a PSF and an FFT convolver
//	m := galprof.NewModel(100, 100,
//		galprof.WithPSF(psf),
//		galprof.WithConvolverType(galprof.ConvolverFFT))
type ModelOption func(*Model)

// WithScale sets the pixel scale, in physical units per pixel along
// each axis. The default is 1x1.
func WithScale(scaleX, scaleY float64) ModelOption {
	return func(m *Model) {
		m.scaleX = scaleX
		m.scaleY = scaleY
	}
}

// WithMagZero sets the magnitude zero-point: a profile of magnitude
// equal to the zero-point contributes a total flux of 1. The default
// is 0.
func WithMagZero(magzero float64) ModelOption {
	return func(m *Model) {
		m.magzero = magzero
	}
}

// WithPSF sets the point spread function image. Required as soon as a
// profile is flagged for convolution or a psf profile is present. The
// image must not be mutated afterwards.
func WithPSF(psf *Image) ModelOption {
	return func(m *Model) {
		m.psf = psf
	}
}

// WithPSFScale sets the pixel scale of the PSF image when it differs
// from the model's; the kernel is resampled onto the model grid before
// use. The default is the model's own scale.
func WithPSFScale(scaleX, scaleY float64) ModelOption {
	return func(m *Model) {
		m.psfScaleX = scaleX
		m.psfScaleY = scaleY
	}
}

// WithMask restricts evaluation to the pixels the mask marks true.
// Convolution may still spread flux into masked pixels. The mask
// dimensions must equal the model's.
func WithMask(mask *Mask) ModelOption {
	return func(m *Model) {
		m.mask = mask
	}
}

// WithThreads bounds the render parallelism. Zero or negative means
// one worker per CPU.
func WithThreads(threads int) ModelOption {
	return func(m *Model) {
		m.threads = threads
	}
}

// WithConvolver supplies a pre-built convolver, used as planned: its
// kernel, not the model's prepared one, shapes the convolution. Most
// callers want WithConvolverType instead and let the model build the
// convolver from its own PSF.
func WithConvolver(c Convolver) ModelOption {
	return func(m *Model) {
		m.convolver = c
	}
}

// WithConvolverType names the convolution strategy the model builds
// from its prepared PSF kernel: ConvolverBrute (the default),
// ConvolverFFT, ConvolverAccel or any registered type.
func WithConvolverType(typ string) ModelOption {
	return func(m *Model) {
		m.convolverType = typ
	}
}

// WithAccelerator routes convolver construction to a specific
// accelerator instead of the registered one.
func WithAccelerator(a Accelerator) ModelOption {
	return func(m *Model) {
		m.accel = a
	}
}

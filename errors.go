package galprof

import "errors"

// Sentinel errors returned by the package. Errors produced deeper in
// the pipeline wrap one of these, so callers can classify failures
// with errors.Is regardless of the message detail.
var (
	// ErrInvalidConfig reports a fatal model configuration problem:
	// missing dimensions, a mask that does not match the image, a
	// malformed input matrix. Nothing is rendered.
	ErrInvalidConfig = errors.New("galprof: invalid model configuration")

	// ErrInvalidParameter reports an out-of-domain profile parameter.
	// The model drops the offending profile, records a warning and
	// renders the rest.
	ErrInvalidParameter = errors.New("galprof: invalid profile parameter")

	// ErrConvolution reports a failure while convolving the rendered
	// image with the PSF. The whole render is aborted.
	ErrConvolution = errors.New("galprof: convolution failed")

	// ErrUnknownProfile reports a profile kind name with no registered
	// constructor.
	ErrUnknownProfile = errors.New("galprof: unknown profile kind")

	// ErrUnknownConvolver reports a convolver type name with no
	// registered factory.
	ErrUnknownConvolver = errors.New("galprof: unknown convolver type")

	// ErrNoAccelerator is returned when an accelerated convolver is
	// requested but no accelerator has been registered.
	ErrNoAccelerator = errors.New("galprof: no accelerator registered")
)

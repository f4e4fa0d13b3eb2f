package galprof

import (
	"errors"
	"fmt"
	"sync"
)

// ErrFallbackToCPU indicates the accelerator cannot handle this
// convolution. The caller should transparently fall back to one of the
// CPU convolvers.
var ErrFallbackToCPU = errors.New("galprof: falling back to CPU convolution")

// Device describes a single compute device on an accelerator platform.
type Device struct {
	// Name is the device name as reported by the driver.
	Name string

	// DoubleSupport reports whether the device has native double
	// precision. Devices without it convolve in float32 and lose
	// precision relative to the CPU convolvers.
	DoubleSupport bool
}

// Platform describes one compute platform exposed by an accelerator,
// with the devices available on it.
type Platform struct {
	Name    string
	Version string
	Devices []Device
}

// Accelerator is an optional convolution offload provider.
//
// When registered via RegisterAccelerator, convolver construction can
// route through it by setting ConvolverConfig.Type to an
// accelerator-backed type. If the accelerator returns ErrFallbackToCPU,
// construction transparently falls back to the brute-force CPU
// convolver.
//
// Implementations live in external packages; users opt in via blank
// import, which registers the accelerator in its init function.
type Accelerator interface {
	// Name returns the accelerator name (e.g., "opencl", "cuda").
	Name() string

	// Init initializes device resources. Called once during
	// registration.
	Init() error

	// Close releases device resources.
	Close() error

	// Platforms enumerates available platforms and their devices.
	Platforms() []Platform

	// NewConvolver builds a convolver that runs on the accelerator.
	// Returns ErrFallbackToCPU when the configuration is better served
	// on the CPU (e.g., kernels too small to amortize the transfer).
	NewConvolver(cfg ConvolverConfig) (Convolver, error)
}

var (
	accelMu sync.RWMutex
	accel   Accelerator
)

// RegisterAccelerator registers a convolution accelerator.
//
// Only one accelerator can be registered. Subsequent calls replace the
// previous one, closing it. The accelerator's Init() method is called
// during registration; if Init() fails, the accelerator is not
// registered and the error is returned.
//
// Typical usage via blank import in accelerator backend packages:
//
//	func init() {
//	    galprof.RegisterAccelerator(NewCLAccelerator())
//	}
func RegisterAccelerator(a Accelerator) error {
	if a == nil {
		return errors.New("galprof: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return fmt.Errorf("galprof: accelerator %q init: %w", a.Name(), err)
	}
	propagateLogger(a, Logger())
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	Logger().Info("accelerator registered", "name", a.Name())
	return nil
}

// CurrentAccelerator returns the registered accelerator, or nil if none.
func CurrentAccelerator() Accelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// CloseAccelerator closes and unregisters the current accelerator.
// It is a no-op when none is registered. Callers that registered an
// accelerator should close it exactly once during process shutdown.
func CloseAccelerator() error {
	accelMu.Lock()
	a := accel
	accel = nil
	accelMu.Unlock()
	if a == nil {
		return nil
	}
	Logger().Info("accelerator closed", "name", a.Name())
	return a.Close()
}

// Environments returns the platforms and devices of the registered
// accelerator, or nil when no accelerator is registered. This is the
// discovery surface callers use to pick a device before building an
// accelerated convolver.
func Environments() []Platform {
	a := CurrentAccelerator()
	if a == nil {
		return nil
	}
	return a.Platforms()
}

// Package galprof renders 2-D astronomical surface-brightness images.
//
// # Overview
//
// galprof evaluates parametric light profiles — Sersic, Moffat, Ferrer,
// King, core-Sersic, broken-exponential, point sources and a flat sky —
// onto a pixel grid, adaptively subsampling pixels near profile centres,
// and convolves the result with a point spread function. Every profile
// is normalized so that its total flux matches the requested magnitude
// against the model's zero-point.
//
// # Quick Start
//
//	import "github.com/galprof/galprof"
//
//	// A 200x200 model with one galaxy
//	m := galprof.NewModel(200, 200, galprof.WithMagZero(26))
//
//	s := galprof.NewSersic()
//	s.Xcen, s.Ycen = 100, 100
//	s.Mag, s.Re, s.Nser = 18, 12, 2.5
//	s.Ang, s.Axrat = 35, 0.6
//	m.AddProfile(s)
//
//	res, err := m.Evaluate(context.Background())
//	if err != nil {
//		// ...
//	}
//	_ = res.Image
//
// # Architecture
//
// The library is organized into:
//   - Public API: Model, Profile kinds, Image, Mask, Convolver
//   - internal/specfunc: gamma/beta special functions and flux integrals
//   - internal/parallel: the worker pool behind pixel loops and FFTs
//   - Accelerators: an optional plug-in point for device-backed convolvers
//
// # Coordinate System
//
// Pixel (0, 0) is the lower-left corner of the grid; pixel (i, j) covers
// the physical rectangle [i·scaleX, (i+1)·scaleX) × [j·scaleY,
// (j+1)·scaleY), so its centre sits at ((i+0.5)·scaleX, (j+0.5)·scaleY).
// Profile centres and position angles are expressed in those physical
// units; angles are in degrees.
//
// # Convolution
//
// Profiles flagged Convolve are summed separately and convolved with
// the model PSF using a selectable strategy (brute-force or FFT; see
// NewConvolver). Convolving with an even-dimensioned kernel shifts the
// frame by half a pixel, which Evaluate reports as a sub-pixel offset
// on its Result.
package galprof

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)

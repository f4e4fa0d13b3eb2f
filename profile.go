package galprof

import (
	"fmt"
	"sort"
	"strings"
)

// Profile is one parametric light distribution contributing to a model
// image. The concrete kinds are Sersic, Moffat, Ferrer, King,
// CoreSersic, BrokenExponential, Sky, PSF and Null; the set is closed,
// matching the fixed catalog the renderer knows how to normalize.
//
// Profiles follow a two-phase lifecycle: the model initializes each
// one exactly once per render (validating parameters and computing
// normalization constants), then evaluates it over the pixel grid.
// They carry no state across renders.
type Profile interface {
	// Kind returns the profile kind name ("sersic", "sky", ...).
	Kind() string

	// Convolved reports whether the rendered contribution must be
	// convolved with the model PSF.
	Convolved() bool

	initialize(m *Model) error
	evaluate(m *Model, img *Image) error
}

// profileFactories maps kind names to default-parameter constructors.
// "ferrers" is accepted as an alias for "ferrer".
var profileFactories = map[string]func() Profile{
	"sersic":     func() Profile { return NewSersic() },
	"moffat":     func() Profile { return NewMoffat() },
	"ferrer":     func() Profile { return NewFerrer() },
	"ferrers":    func() Profile { return NewFerrer() },
	"king":       func() Profile { return NewKing() },
	"coresersic": func() Profile { return NewCoreSersic() },
	"brokenexp":  func() Profile { return NewBrokenExponential() },
	"sky":        func() Profile { return NewSky() },
	"psf":        func() Profile { return NewPSFProfile() },
	"null":       func() Profile { return NewNull() },
}

// NewProfile constructs a profile by kind name, with every parameter
// at its documented default. Kind names are case-insensitive.
func NewProfile(kind string) (Profile, error) {
	f, ok := profileFactories[strings.ToLower(kind)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, kind)
	}
	return f(), nil
}

// ProfileKinds returns the recognized profile kind names, sorted.
func ProfileKinds() []string {
	kinds := make([]string, 0, len(profileFactories))
	for k := range profileFactories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

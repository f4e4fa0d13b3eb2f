package main

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/galprof/galprof"
)

// modelConfig is the YAML model description. Missing keys keep the
// documented defaults; unknown keys are ignored.
type modelConfig struct {
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	ScaleX  float64 `yaml:"scale_x"`
	ScaleY  float64 `yaml:"scale_y"`
	Magzero float64 `yaml:"magzero"`
	Threads int     `yaml:"threads"`

	PSF       string  `yaml:"psf"`
	PSFScaleX float64 `yaml:"psf_scale_x"`
	PSFScaleY float64 `yaml:"psf_scale_y"`
	Mask      string  `yaml:"mask"`

	Convolver convolverConfig `yaml:"convolver"`

	// Profiles maps a profile kind name to its parameter records.
	Profiles map[string][]yaml.Node `yaml:"profiles"`
}

type convolverConfig struct {
	Type string `yaml:"type"`
}

func loadConfig(path string) (*modelConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &modelConfig{ScaleX: 1, ScaleY: 1}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// build assembles the model: PSF and mask images are loaded from FITS
// files, then every profile record is constructed over its kind's
// defaults.
func (c *modelConfig) build() (*galprof.Model, error) {
	opts := []galprof.ModelOption{
		galprof.WithScale(c.ScaleX, c.ScaleY),
		galprof.WithMagZero(c.Magzero),
		galprof.WithThreads(c.Threads),
	}

	if c.PSF != "" {
		psf, err := readFITS(c.PSF)
		if err != nil {
			return nil, fmt.Errorf("psf %s: %w", c.PSF, err)
		}
		opts = append(opts, galprof.WithPSF(psf))
		if c.PSFScaleX > 0 || c.PSFScaleY > 0 {
			sx, sy := c.PSFScaleX, c.PSFScaleY
			if sx <= 0 {
				sx = c.ScaleX
			}
			if sy <= 0 {
				sy = c.ScaleY
			}
			opts = append(opts, galprof.WithPSFScale(sx, sy))
		}
	}

	if c.Mask != "" {
		img, err := readFITS(c.Mask)
		if err != nil {
			return nil, fmt.Errorf("mask %s: %w", c.Mask, err)
		}
		bits := make([]bool, len(img.Data()))
		for i, v := range img.Data() {
			bits[i] = v != 0
		}
		mask, err := galprof.NewMaskFromData(img.Width(), img.Height(), bits)
		if err != nil {
			return nil, fmt.Errorf("mask %s: %w", c.Mask, err)
		}
		opts = append(opts, galprof.WithMask(mask))
	}

	if c.Convolver.Type != "" {
		opts = append(opts, galprof.WithConvolverType(c.Convolver.Type))
	}

	m := galprof.NewModel(c.Width, c.Height, opts...)

	kinds := make([]string, 0, len(c.Profiles))
	for kind := range c.Profiles {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		for i, node := range c.Profiles[kind] {
			p, err := buildProfile(kind, node)
			if err != nil {
				return nil, fmt.Errorf("profiles.%s[%d]: %w", kind, i, err)
			}
			m.AddProfile(p)
		}
	}
	return m, nil
}

// radialConfig mirrors the shared radial parameters under their
// documented YAML keys.
type radialConfig struct {
	Xcen          float64 `yaml:"xcen"`
	Ycen          float64 `yaml:"ycen"`
	Mag           float64 `yaml:"mag"`
	Ang           float64 `yaml:"ang"`
	Axrat         float64 `yaml:"axrat"`
	Box           float64 `yaml:"box"`
	Rough         bool    `yaml:"rough"`
	Acc           float64 `yaml:"acc"`
	RscaleSwitch  float64 `yaml:"rscale_switch"`
	Resolution    int     `yaml:"resolution"`
	MaxRecursions int     `yaml:"max_recursions"`
	Adjust        bool    `yaml:"adjust"`
	RscaleMax     float64 `yaml:"rscale_max"`
	Convolve      bool    `yaml:"convolve"`
}

func radialConfigOf(r *galprof.RadialProfile) radialConfig {
	return radialConfig{
		Xcen: r.Xcen, Ycen: r.Ycen, Mag: r.Mag, Ang: r.Ang,
		Axrat: r.Axrat, Box: r.Box, Rough: r.Rough, Acc: r.Acc,
		RscaleSwitch: r.RscaleSwitch, Resolution: r.Resolution,
		MaxRecursions: r.MaxRecursions, Adjust: r.Adjust,
		RscaleMax: r.RscaleMax, Convolve: r.Convolve,
	}
}

func (c radialConfig) apply(r *galprof.RadialProfile) {
	r.Xcen, r.Ycen, r.Mag, r.Ang = c.Xcen, c.Ycen, c.Mag, c.Ang
	r.Axrat, r.Box, r.Rough, r.Acc = c.Axrat, c.Box, c.Rough, c.Acc
	r.RscaleSwitch, r.Resolution = c.RscaleSwitch, c.Resolution
	r.MaxRecursions, r.Adjust = c.MaxRecursions, c.Adjust
	r.RscaleMax, r.Convolve = c.RscaleMax, c.Convolve
}

type sersicConfig struct {
	radialConfig `yaml:",inline"`
	Re           float64 `yaml:"re"`
	Nser         float64 `yaml:"nser"`
	RescaleFlux  bool    `yaml:"rescale_flux"`
}

type moffatConfig struct {
	radialConfig `yaml:",inline"`
	FWHM         float64 `yaml:"fwhm"`
	Con          float64 `yaml:"con"`
}

type ferrerConfig struct {
	radialConfig `yaml:",inline"`
	Rout         float64 `yaml:"rout"`
	A            float64 `yaml:"a"`
	B            float64 `yaml:"b"`
}

type kingConfig struct {
	radialConfig `yaml:",inline"`
	Rc           float64 `yaml:"rc"`
	Rt           float64 `yaml:"rt"`
	A            float64 `yaml:"a"`
}

type coreSersicConfig struct {
	radialConfig `yaml:",inline"`
	Re           float64 `yaml:"re"`
	Rb           float64 `yaml:"rb"`
	Nser         float64 `yaml:"nser"`
	A            float64 `yaml:"a"`
	B            float64 `yaml:"b"`
}

type brokenExpConfig struct {
	radialConfig `yaml:",inline"`
	H1           float64 `yaml:"h1"`
	H2           float64 `yaml:"h2"`
	Rb           float64 `yaml:"rb"`
	A            float64 `yaml:"a"`
}

type skyConfig struct {
	Bg       float64 `yaml:"bg"`
	Convolve bool    `yaml:"convolve"`
}

type psfConfig struct {
	Xcen     float64 `yaml:"xcen"`
	Ycen     float64 `yaml:"ycen"`
	Mag      float64 `yaml:"mag"`
	Convolve bool    `yaml:"convolve"`
}

// buildProfile constructs a profile of the given kind and overlays the
// YAML record onto its defaults: decoding starts from the constructor
// values, so absent keys leave them untouched.
func buildProfile(kind string, node yaml.Node) (galprof.Profile, error) {
	p, err := galprof.NewProfile(kind)
	if err != nil {
		return nil, err
	}

	switch q := p.(type) {
	case *galprof.Sersic:
		c := sersicConfig{
			radialConfig: radialConfigOf(&q.RadialProfile),
			Re:           q.Re, Nser: q.Nser, RescaleFlux: q.RescaleFlux,
		}
		if err := node.Decode(&c); err != nil {
			return nil, err
		}
		c.apply(&q.RadialProfile)
		q.Re, q.Nser, q.RescaleFlux = c.Re, c.Nser, c.RescaleFlux

	case *galprof.Moffat:
		c := moffatConfig{
			radialConfig: radialConfigOf(&q.RadialProfile),
			FWHM:         q.FWHM, Con: q.Con,
		}
		if err := node.Decode(&c); err != nil {
			return nil, err
		}
		c.apply(&q.RadialProfile)
		q.FWHM, q.Con = c.FWHM, c.Con

	case *galprof.Ferrer:
		c := ferrerConfig{
			radialConfig: radialConfigOf(&q.RadialProfile),
			Rout:         q.Rout, A: q.A, B: q.B,
		}
		if err := node.Decode(&c); err != nil {
			return nil, err
		}
		c.apply(&q.RadialProfile)
		q.Rout, q.A, q.B = c.Rout, c.A, c.B

	case *galprof.King:
		c := kingConfig{
			radialConfig: radialConfigOf(&q.RadialProfile),
			Rc:           q.Rc, Rt: q.Rt, A: q.A,
		}
		if err := node.Decode(&c); err != nil {
			return nil, err
		}
		c.apply(&q.RadialProfile)
		q.Rc, q.Rt, q.A = c.Rc, c.Rt, c.A

	case *galprof.CoreSersic:
		c := coreSersicConfig{
			radialConfig: radialConfigOf(&q.RadialProfile),
			Re:           q.Re, Rb: q.Rb, Nser: q.Nser, A: q.A, B: q.B,
		}
		if err := node.Decode(&c); err != nil {
			return nil, err
		}
		c.apply(&q.RadialProfile)
		q.Re, q.Rb, q.Nser, q.A, q.B = c.Re, c.Rb, c.Nser, c.A, c.B

	case *galprof.BrokenExponential:
		c := brokenExpConfig{
			radialConfig: radialConfigOf(&q.RadialProfile),
			H1:           q.H1, H2: q.H2, Rb: q.Rb, A: q.A,
		}
		if err := node.Decode(&c); err != nil {
			return nil, err
		}
		c.apply(&q.RadialProfile)
		q.H1, q.H2, q.Rb, q.A = c.H1, c.H2, c.Rb, c.A

	case *galprof.Sky:
		c := skyConfig{Bg: q.Bg, Convolve: q.Convolve}
		if err := node.Decode(&c); err != nil {
			return nil, err
		}
		q.Bg, q.Convolve = c.Bg, c.Convolve

	case *galprof.PSFProfile:
		c := psfConfig{Xcen: q.Xcen, Ycen: q.Ycen, Mag: q.Mag, Convolve: q.Convolve}
		if err := node.Decode(&c); err != nil {
			return nil, err
		}
		q.Xcen, q.Ycen, q.Mag, q.Convolve = c.Xcen, c.Ycen, c.Mag, c.Convolve

	case *galprof.Null:
		// No parameters.
	}
	return p, nil
}

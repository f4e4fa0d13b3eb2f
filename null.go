package galprof

// Null contributes nothing to the image. Useful as a placeholder while
// assembling models programmatically and as a test double.
type Null struct {
	// Convolve is accepted for uniformity; a zero contribution
	// convolves to zero either way.
	Convolve bool
}

// NewNull returns a null profile.
func NewNull() *Null {
	return &Null{}
}

// Kind returns "null".
func (p *Null) Kind() string { return "null" }

// Convolved reports the convolution flag.
func (p *Null) Convolved() bool { return p.Convolve }

func (p *Null) initialize(m *Model) error           { return nil }
func (p *Null) evaluate(m *Model, img *Image) error { return nil }

package core

// Size describes the dimensions of a drawable surface in pixels.
type Size struct {
	W int
	H int
}

// Empty reports whether either dimension is non-positive.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Area returns the pixel count.
func (s Size) Area() int {
	if s.Empty() {
		return 0
	}
	return s.W * s.H
}

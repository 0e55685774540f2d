package noise

import "fmt"

// Kind selects the noise kernel backing a caustic field.
type Kind string

const (
	// KindGradient3D is simplex gradient noise over a 3D volume.
	KindGradient3D Kind = "gradient3d"
	// KindValue2D is hash-based value noise over a 2D plane.
	KindValue2D Kind = "value2d"
)

// Kinds lists every supported kernel.
func Kinds() []Kind { return []Kind{KindGradient3D, KindValue2D} }

// ParseKind resolves a kernel name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("noise: unknown kernel %q", s)
}

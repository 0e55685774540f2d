package render

import (
	"image"

	"caustics/internal/pipeline"
)

// fillRow shades image row y of rc into dst, a row of 4*W NRGBA bytes. Image
// rows count from the top, shading rows from the bottom.
func fillRow(dst []byte, rc pipeline.RenderContext, y int) {
	sy := rc.Resolution.H - 1 - y
	for x := 0; x < rc.Resolution.W; x++ {
		c := rc.Shade(x, sy).NRGBA()
		base := x * 4
		dst[base+0] = c.R
		dst[base+1] = c.G
		dst[base+2] = c.B
		dst[base+3] = c.A
	}
}

// premultiply converts straight-alpha pixels in src into premultiplied RGBA
// bytes in dst. Both must be the same length.
func premultiply(dst, src []byte) {
	for i := 0; i+3 < len(src); i += 4 {
		a := uint32(src[i+3])
		dst[i+0] = uint8((uint32(src[i+0])*a + 127) / 255)
		dst[i+1] = uint8((uint32(src[i+1])*a + 127) / 255)
		dst[i+2] = uint8((uint32(src[i+2])*a + 127) / 255)
		dst[i+3] = uint8(a)
	}
}

// unpremultiply is the inverse of premultiply. Fully transparent pixels stay
// black.
func unpremultiply(dst, src []byte) {
	for i := 0; i+3 < len(src); i += 4 {
		a := uint32(src[i+3])
		if a == 0 {
			dst[i+0], dst[i+1], dst[i+2], dst[i+3] = 0, 0, 0, 0
			continue
		}
		dst[i+0] = uint8(min((uint32(src[i+0])*255+a/2)/a, 255))
		dst[i+1] = uint8(min((uint32(src[i+1])*255+a/2)/a, 255))
		dst[i+2] = uint8(min((uint32(src[i+2])*255+a/2)/a, 255))
		dst[i+3] = uint8(a)
	}
}

// Premultiplied returns img as a premultiplied RGBA image.
func Premultiplied(img *image.NRGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	premultiply(out.Pix, img.Pix)
	return out
}

package image

import (
	stdimage "image"

	"golang.org/x/image/draw"
)

// ToNRGBA returns a copy of img in NRGBA form, rebased to the origin.
func ToNRGBA(img stdimage.Image) *stdimage.NRGBA {
	b := img.Bounds()
	dst := stdimage.NewNRGBA(stdimage.Rect(0, 0, b.Dx(), b.Dy()))

	// NRGBA sources are copied row by row, going through premultiplied
	// color would round translucent pixels.
	if src, ok := img.(*stdimage.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()*4], src.Pix[i:i+b.Dx()*4])
		}
		return dst
	}

	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	return dst
}

// Still wraps a single image as a one frame animation with no timing.
func Still(t ImageType, img stdimage.Image) Animation {
	frame := ToNRGBA(img)

	return Animation{
		Type:   t,
		Width:  frame.Rect.Dx(),
		Height: frame.Rect.Dy(),
		Frames: []Frame{{Image: frame}},
	}
}

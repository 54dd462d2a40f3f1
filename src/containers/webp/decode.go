package webp

import (
	"io"

	xWebp "golang.org/x/image/webp"

	"github.com/seventv/BackgroundKeyer/src/image"
)

// Decode reads a still WebP. Animated WebP files are rejected by the decoder.
func Decode(r io.Reader) (image.Animation, error) {
	img, err := xWebp.Decode(r)
	if err != nil {
		return image.Animation{}, err
	}

	return image.Still(image.WEBP, img), nil
}

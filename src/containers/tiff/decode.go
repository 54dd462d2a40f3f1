package tiff

import (
	"io"

	xTiff "golang.org/x/image/tiff"

	"github.com/seventv/BackgroundKeyer/src/image"
)

func Decode(r io.Reader) (image.Animation, error) {
	img, err := xTiff.Decode(r)
	if err != nil {
		return image.Animation{}, err
	}

	return image.Still(image.TIFF, img), nil
}

package bmp

import (
	"io"

	xBmp "golang.org/x/image/bmp"

	"github.com/seventv/BackgroundKeyer/src/image"
)

func Decode(r io.Reader) (image.Animation, error) {
	img, err := xBmp.Decode(r)
	if err != nil {
		return image.Animation{}, err
	}

	return image.Still(image.BMP, img), nil
}

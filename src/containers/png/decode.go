package png

import (
	nPng "image/png"
	"io"

	"github.com/seventv/BackgroundKeyer/src/image"
)

func Decode(r io.Reader) (image.Animation, error) {
	img, err := nPng.Decode(r)
	if err != nil {
		return image.Animation{}, err
	}

	return image.Still(image.PNG, img), nil
}

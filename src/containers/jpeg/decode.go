package jpeg

import (
	nJpeg "image/jpeg"
	"io"

	"github.com/seventv/BackgroundKeyer/src/image"
)

func Decode(r io.Reader) (image.Animation, error) {
	img, err := nJpeg.Decode(r)
	if err != nil {
		return image.Animation{}, err
	}

	return image.Still(image.JPEG, img), nil
}

package png

import (
	"fmt"
	nPng "image/png"
	"io"

	"github.com/seventv/BackgroundKeyer/src/image"
)

var ErrAnimated = fmt.Errorf("png: cannot encode more than one frame")

// Encode writes a one frame animation as a PNG with a full alpha channel.
func Encode(w io.Writer, anim image.Animation) error {
	switch len(anim.Frames) {
	case 0:
		return fmt.Errorf("png: no frames to encode")
	case 1:
	default:
		return ErrAnimated
	}

	enc := nPng.Encoder{CompressionLevel: nPng.BestCompression}

	return enc.Encode(w, anim.Frames[0].Image)
}

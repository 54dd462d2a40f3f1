package gif

import (
	"fmt"
	stdimage "image"
	nGif "image/gif"
	"io"
	"strings"
	"time"

	"golang.org/x/image/draw"

	"github.com/seventv/BackgroundKeyer/src/image"
)

// Decode reads every frame of a GIF and composites it onto a full canvas the
// way a renderer would, honoring each frame's disposal method. Frames with no
// delay are returned with a zero Duration. A well formed stream without any
// image gives an animation with no frames.
func Decode(r io.Reader) (image.Animation, error) {
	g, err := nGif.DecodeAll(r)
	if err != nil {
		if strings.HasSuffix(err.Error(), errMissingImage) {
			return image.Animation{Type: image.GIF}, nil
		}
		return image.Animation{}, err
	}

	if len(g.Image) == 0 {
		return image.Animation{Type: image.GIF}, nil
	}

	bounds := stdimage.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		for _, f := range g.Image {
			bounds = bounds.Union(f.Bounds())
		}
		bounds.Min = stdimage.Point{}
	}

	anim := image.Animation{
		Type:      image.GIF,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Frames:    make([]image.Frame, 0, len(g.Image)),
		LoopCount: g.LoopCount,
	}

	canvas := stdimage.NewNRGBA(bounds)
	for i, frame := range g.Image {
		if frame == nil {
			return image.Animation{}, fmt.Errorf("gif: frame %d is empty", i)
		}

		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		var previous *stdimage.NRGBA
		if disposal == nGif.DisposalPrevious {
			previous = clone(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

		var delay int
		if i < len(g.Delay) {
			delay = g.Delay[i]
		}

		anim.Frames = append(anim.Frames, image.Frame{
			Image:    clone(canvas),
			Duration: time.Duration(delay) * 10 * time.Millisecond,
		})

		switch disposal {
		case nGif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), stdimage.Transparent, stdimage.Point{}, draw.Src)
		case nGif.DisposalPrevious:
			canvas = previous
		}
	}

	return anim, nil
}

// errMissingImage is how image/gif reports a header and trailer with nothing
// in between.
const errMissingImage = "missing image data"

func clone(img *stdimage.NRGBA) *stdimage.NRGBA {
	out := &stdimage.NRGBA{
		Pix:    make([]uint8, len(img.Pix)),
		Stride: img.Stride,
		Rect:   img.Rect,
	}
	copy(out.Pix, img.Pix)

	return out
}

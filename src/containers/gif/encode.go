package gif

import (
	"fmt"
	stdimage "image"
	nGif "image/gif"
	"io"
	"time"

	"github.com/seventv/BackgroundKeyer/src/image"
)

// Encode writes anim as an animated GIF. Every frame gets its own palette with
// the transparent slot at TransparentIndex and is disposed to background
// before the next one is drawn.
func Encode(w io.Writer, anim image.Animation) error {
	if len(anim.Frames) == 0 {
		return fmt.Errorf("gif: no frames to encode")
	}

	g := &nGif.GIF{
		Image:     make([]*stdimage.Paletted, len(anim.Frames)),
		Delay:     make([]int, len(anim.Frames)),
		Disposal:  make([]byte, len(anim.Frames)),
		LoopCount: anim.LoopCount,
		Config: stdimage.Config{
			Width:  anim.Width,
			Height: anim.Height,
		},
		BackgroundIndex: TransparentIndex,
	}

	for i, f := range anim.Frames {
		g.Image[i] = Paletted(f.Image)
		g.Delay[i] = Delay(f.Duration)
		g.Disposal[i] = nGif.DisposalBackground
	}

	return nGif.EncodeAll(w, g)
}

// Delay converts d to GIF centiseconds, rounding to the nearest one. The
// result is never below 1 since a 0 delay reads back as absent.
func Delay(d time.Duration) int {
	if d <= 0 {
		d = image.DefaultDuration
	}

	cs := int((d + 5*time.Millisecond) / (10 * time.Millisecond))
	if cs < 1 {
		cs = 1
	}

	return cs
}

package keying

import (
	stdimage "image"
	"image/color"

	"github.com/seventv/BackgroundKeyer/src/image"
)

// KeyFrame converts img to NRGBA and replaces every pixel matched by rule with
// Placeholder. Unmatched pixels keep their converted channel values.
func KeyFrame(img stdimage.Image, rule Rule) *stdimage.NRGBA {
	dst := image.ToNRGBA(img)

	pix := dst.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		if rule.FlattenAlpha {
			pix[i+3] = 0xff
		}

		c := colorAt(pix, i)
		if rule.Match(c) {
			pix[i+0] = Placeholder.R
			pix[i+1] = Placeholder.G
			pix[i+2] = Placeholder.B
			pix[i+3] = Placeholder.A
		}
	}

	return dst
}

// Transform keys every frame of anim in order. The result always loops
// forever and never carries a zero duration.
func Transform(anim image.Animation, rule Rule) (image.Animation, error) {
	if err := rule.Validate(); err != nil {
		return image.Animation{}, err
	}

	if len(anim.Frames) == 0 {
		return image.Animation{}, ErrNoFrames
	}

	out := image.Animation{
		Type:      anim.Type,
		Width:     anim.Width,
		Height:    anim.Height,
		Frames:    make([]image.Frame, len(anim.Frames)),
		LoopCount: 0,
	}

	for i, f := range anim.Frames {
		d := f.Duration
		if d <= 0 {
			d = image.DefaultDuration
		}

		out.Frames[i] = image.Frame{
			Image:    KeyFrame(f.Image, rule),
			Duration: d,
		}
	}

	return out, nil
}

func colorAt(pix []uint8, i int) color.NRGBA {
	return color.NRGBA{R: pix[i+0], G: pix[i+1], B: pix[i+2], A: pix[i+3]}
}

package gif

import (
	stdimage "image"
	"image/color"
	"sort"

	"github.com/soniakeys/quant/median"
)

// TransparentIndex is the palette slot every keyed pixel is written to.
const TransparentIndex = 0

// maxColors leaves one of the 256 GIF slots for the transparent entry.
const maxColors = 255

// alphaCutoff is the alpha below which a pixel is written as transparent,
// GIF has no partial transparency.
const alphaCutoff = 0x80

// transparent keeps the placeholder white in the color table. color.RGBA is
// used on purpose so the encoder writes 0xff channels instead of the
// premultiplied zeros an NRGBA would produce.
var transparent = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x00}

// Paletted maps img onto an adaptive palette whose slot TransparentIndex is
// fully transparent. The palette is exact when the frame holds no more than
// maxColors opaque colors and built by median cut otherwise.
func Paletted(img *stdimage.NRGBA) *stdimage.Paletted {
	b := img.Bounds()

	counts := map[[3]uint8]int{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if c.A < alphaCutoff {
				continue
			}
			counts[[3]uint8{c.R, c.G, c.B}]++
		}
	}

	var opaque color.Palette
	if len(counts) <= maxColors {
		opaque = exact(counts)
	} else {
		opaque = quantize(img)
	}

	pal := make(color.Palette, 0, len(opaque)+1)
	pal = append(pal, transparent)
	pal = append(pal, opaque...)

	out := stdimage.NewPaletted(b, pal)
	lookup := make(map[[3]uint8]uint8, len(counts))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if c.A < alphaCutoff {
				out.SetColorIndex(x, y, TransparentIndex)
				continue
			}

			rgb := [3]uint8{c.R, c.G, c.B}
			idx, ok := lookup[rgb]
			if !ok {
				idx = uint8(opaque.Index(color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}) + 1)
				lookup[rgb] = idx
			}
			out.SetColorIndex(x, y, idx)
		}
	}

	return out
}

// exact lists every color of counts, ordered by value so equal frames get
// equal palettes.
func exact(counts map[[3]uint8]int) color.Palette {
	keys := make([][3]uint8, 0, len(counts))
	for rgb := range counts {
		keys = append(keys, rgb)
	}
	sort.Slice(keys, func(i, j int) bool {
		return key(keys[i]) < key(keys[j])
	})

	pal := make(color.Palette, len(keys))
	for i, rgb := range keys {
		pal[i] = color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}
	}

	return pal
}

// quantize builds a median cut palette of at most maxColors entries from the
// opaque pixels of img. Transparent pixels are left out so they do not pull
// the palette toward black.
func quantize(img *stdimage.NRGBA) color.Palette {
	b := img.Bounds()

	opaque := make([]uint8, 0, len(img.Pix))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if c.A >= alphaCutoff {
				opaque = append(opaque, c.R, c.G, c.B, 0xff)
			}
		}
	}

	n := len(opaque) / 4
	strip := &stdimage.NRGBA{
		Pix:    opaque,
		Stride: len(opaque),
		Rect:   stdimage.Rect(0, 0, n, 1),
	}

	quantized := median.Quantizer(maxColors).Quantize(make(color.Palette, 0, maxColors), strip)

	pal := make(color.Palette, 0, len(quantized))
	for _, c := range quantized {
		rgba := color.RGBAModel.Convert(c).(color.RGBA)
		rgba.A = 0xff
		pal = append(pal, rgba)
	}

	return pal
}

func key(rgb [3]uint8) uint32 {
	return uint32(rgb[0])<<16 | uint32(rgb[1])<<8 | uint32(rgb[2])
}

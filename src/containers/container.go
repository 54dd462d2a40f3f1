package containers

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/seventv/BackgroundKeyer/src/containers/bmp"
	"github.com/seventv/BackgroundKeyer/src/containers/gif"
	"github.com/seventv/BackgroundKeyer/src/containers/jpeg"
	"github.com/seventv/BackgroundKeyer/src/containers/png"
	"github.com/seventv/BackgroundKeyer/src/containers/tiff"
	"github.com/seventv/BackgroundKeyer/src/containers/webp"
	"github.com/seventv/BackgroundKeyer/src/image"
)

var (
	ErrUnknownFormat       = fmt.Errorf("unknown image format")
	ErrUnsupportedEncoding = fmt.Errorf("unsupported output format")
)

func ToType(data []byte) (image.ImageType, error) {
	if gif.Test(data) {
		return image.GIF, nil
	} else if png.Test(data) {
		return image.PNG, nil
	} else if webp.Test(data) {
		return image.WEBP, nil
	} else if jpeg.Test(data) {
		return image.JPEG, nil
	} else if tiff.Test(data) {
		return image.TIFF, nil
	} else if bmp.Test(data) { // only two magic bytes, keep it last
		return image.BMP, nil
	}

	return "", ErrUnknownFormat
}

// Decode returns every frame of data as a full canvas NRGBA image.
func Decode(data []byte, imgType image.ImageType) (image.Animation, error) {
	r := bytes.NewReader(data)

	switch imgType {
	case image.GIF:
		return gif.Decode(r)
	case image.PNG:
		return png.Decode(r)
	case image.WEBP:
		return webp.Decode(r)
	case image.JPEG:
		return jpeg.Decode(r)
	case image.TIFF:
		return tiff.Decode(r)
	case image.BMP:
		return bmp.Decode(r)
	}

	return image.Animation{}, ErrUnknownFormat
}

func Encode(w io.Writer, anim image.Animation, imgType image.ImageType) error {
	switch imgType {
	case image.GIF:
		return gif.Encode(w, anim)
	case image.PNG:
		return png.Encode(w, anim)
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedEncoding, imgType)
}

type OutputFormat string

const (
	// OutputAuto keeps the source container when it can be written back,
	// falling back to GIF.
	OutputAuto OutputFormat = "auto"
	OutputGIF  OutputFormat = "gif"
	OutputPNG  OutputFormat = "png"
)

func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return OutputAuto, nil
	case OutputAuto, OutputGIF, OutputPNG:
		return f, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, s)
}

// Resolve picks the container anim is written as.
func (f OutputFormat) Resolve(anim image.Animation) image.ImageType {
	switch f {
	case OutputGIF:
		return image.GIF
	case OutputPNG:
		return image.PNG
	}

	if anim.Type == image.PNG && !anim.Animated() {
		return image.PNG
	}

	return image.GIF
}

// OutputName swaps the extension of name when the container changes.
func OutputName(name string, from, to image.ImageType) string {
	if from == to {
		return name
	}

	ext := filepath.Ext(name)
	switch strings.ToLower(ext) {
	case "", ".gif", ".png", ".webp", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp":
		return strings.TrimSuffix(name, ext) + to.Ext()
	}

	return name + to.Ext()
}

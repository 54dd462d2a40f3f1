package image

import (
	stdimage "image"
	"time"
)

// DefaultDuration is used for frames whose source carries no timing.
const DefaultDuration = 100 * time.Millisecond

type Frame struct {
	Image    *stdimage.NRGBA
	Duration time.Duration
}

type Animation struct {
	Type   ImageType
	Width  int
	Height int
	Frames []Frame
	// LoopCount follows the GIF convention, 0 loops forever.
	LoopCount int
}

func (a Animation) Animated() bool {
	return len(a.Frames) > 1
}

func (a Animation) Durations() []time.Duration {
	durations := make([]time.Duration, len(a.Frames))
	for i, f := range a.Frames {
		durations[i] = f.Duration
	}

	return durations
}

type ImageType string

const (
	BMP  ImageType = "bmp"
	GIF  ImageType = "gif"
	JPEG ImageType = "jpeg"
	PNG  ImageType = "png"
	TIFF ImageType = "tiff"
	WEBP ImageType = "webp"
)

func (t ImageType) Ext() string {
	return "." + string(t)
}

func (t ImageType) ContentType() string {
	return "image/" + string(t)
}

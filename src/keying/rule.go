package keying

import (
	"fmt"
	"image/color"
	"strings"
)

var (
	ErrUnknownMode = fmt.Errorf("unknown keying mode")
	ErrNoFrames    = fmt.Errorf("no frames found")
)

type Mode string

const (
	// BrighterThan keys near-white pixels.
	BrighterThan Mode = "brighter-than"
	// DarkerThan keys near-black pixels.
	DarkerThan Mode = "darker-than"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case BrighterThan, "white", "near-white":
		return BrighterThan, nil
	case DarkerThan, "black", "near-black":
		return DarkerThan, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Placeholder replaces every keyed pixel, whatever the mode.
var Placeholder = color.NRGBA{R: 255, G: 255, B: 255, A: 0}

type Rule struct {
	Threshold uint8
	Mode      Mode
	// FlattenAlpha forces every converted pixel opaque before matching, so
	// transparency already present in the source is lost.
	FlattenAlpha bool
}

func (r Rule) Validate() error {
	switch r.Mode {
	case BrighterThan, DarkerThan:
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownMode, r.Mode)
}

// Match reports whether c is background. Alpha is ignored.
func (r Rule) Match(c color.NRGBA) bool {
	t := r.Threshold
	if r.Mode == DarkerThan {
		return c.R < t && c.G < t && c.B < t
	}

	return c.R > t && c.G > t && c.B > t
}

func (r Rule) String() string {
	return fmt.Sprintf("%s %d", r.Mode, r.Threshold)
}

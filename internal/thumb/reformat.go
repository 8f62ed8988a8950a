package thumb

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/nfnt/resize"
)

// Mode selects how a source image's aspect ratio is mapped onto the fixed
// preview canvas. The mapping is applied at generation time.
type Mode string

const (
	// ModeFit scales to fit inside the canvas, preserving ratio.
	ModeFit Mode = "fit"
	// ModeFill scales to cover the canvas, preserving ratio, then crops
	// the overflow centered.
	ModeFill Mode = "fill"
	// ModeDistort stretches to the exact canvas, ignoring ratio.
	ModeDistort Mode = "distort"
	// ModeExpanding scales so the short side fills the canvas, preserving
	// ratio; the long side is allowed to exceed the canvas.
	ModeExpanding Mode = "expanding"
)

// DefaultMode is used when no reformat mode is configured.
const DefaultMode = ModeFit

// ParseMode validates a configured reformat mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFit, ModeFill, ModeDistort, ModeExpanding:
		return Mode(s), nil
	case "":
		return DefaultMode, nil
	}
	return "", fmt.Errorf("unknown reformat mode %q", s)
}

// Reformat maps src onto a w x h canvas according to mode, using Lanczos
// resampling throughout.
func Reformat(src image.Image, w, h uint, mode Mode) image.Image {
	switch mode {
	case ModeDistort:
		return resize.Resize(w, h, src, resize.Lanczos3)
	case ModeFill:
		return coverCrop(src, w, h)
	case ModeExpanding:
		cw, ch := coverSize(src, w, h)
		return resize.Resize(cw, ch, src, resize.Lanczos3)
	default:
		return resize.Thumbnail(w, h, src, resize.Lanczos3)
	}
}

// coverSize computes the dimensions that scale src to cover a w x h canvas
// while preserving its ratio.
func coverSize(src image.Image, w, h uint) (uint, uint) {
	b := src.Bounds()
	sw, sh := float64(b.Dx()), float64(b.Dy())
	if sw <= 0 || sh <= 0 {
		return w, h
	}
	scale := float64(w) / sw
	if s := float64(h) / sh; s > scale {
		scale = s
	}
	cw := uint(sw*scale + 0.5)
	ch := uint(sh*scale + 0.5)
	if cw < w {
		cw = w
	}
	if ch < h {
		ch = h
	}
	return cw, ch
}

// coverCrop scales src to cover the canvas and crops the overflow centered.
func coverCrop(src image.Image, w, h uint) image.Image {
	cw, ch := coverSize(src, w, h)
	scaled := resize.Resize(cw, ch, src, resize.Lanczos3)

	out := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	offX := (int(cw) - int(w)) / 2
	offY := (int(ch) - int(h)) / 2
	draw.Draw(out, out.Bounds(), scaled, scaled.Bounds().Min.Add(image.Pt(offX, offY)), draw.Src)
	return out
}

package ocr

import (
	"bytes"
	"fmt"
	"image"

	// gif and webp screenshots arrive from Discord and mobile browsers;
	// register their decoders alongside imaging's jpeg/png support.
	_ "image/gif"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// minResolution is the shorter-dimension threshold below which OCR accuracy
// degrades enough to warrant super-resolution.
const minResolution = 1200

// Quality describes an input image's dimensions and whether it should be
// upscaled before recognition.
type Quality struct {
	Width        int
	Height       int
	NeedsUpscale bool
}

// DecodeImage decodes uploaded bytes into an image. Failures wrap ErrDecode
// and abort the request; there is nothing to recover from undecodable input.
func DecodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// AnalyzeQuality inspects image dimensions and flags low-resolution inputs.
func AnalyzeQuality(img image.Image) Quality {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	short := w
	if h < short {
		short = h
	}
	return Quality{Width: w, Height: h, NeedsUpscale: short < minResolution}
}

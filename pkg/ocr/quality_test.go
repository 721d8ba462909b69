package ocr

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
)

func TestDecodeImageGarbage(t *testing.T) {
	_, err := DecodeImage([]byte("not an image"))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode got %v", err)
	}
}

func TestDecodeImagePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, imaging.New(64, 64, color.NRGBA{0, 0, 0, 255})); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := DecodeImage(buf.Bytes())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if img.Bounds().Dx() != 64 {
		t.Fatalf("wrong dimensions: %v", img.Bounds())
	}
}

func TestAnalyzeQuality(t *testing.T) {
	low := AnalyzeQuality(imaging.New(800, 600, color.NRGBA{0, 0, 0, 255}))
	if !low.NeedsUpscale {
		t.Fatalf("800x600 should need upscale")
	}
	high := AnalyzeQuality(imaging.New(1920, 1200, color.NRGBA{0, 0, 0, 255}))
	if high.NeedsUpscale {
		t.Fatalf("1920x1200 should not need upscale")
	}
}

package ocr

import (
	"image"

	"github.com/disintegration/imaging"
)

// DetectFormat classifies the screenshot's source platform from aspect
// ratio and average brightness. Thresholds are tunable policy; detection
// always returns a value and defaults to Arena, the most common source.
func DetectFormat(img image.Image) Format {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return FormatArena
	}
	ratio := float64(w) / float64(h)

	// MTGO's collection window is a very wide, light text list; Arena is a
	// 16:9 game client with a dark board; paper photos trend portrait.
	if ratio > 2.0 {
		return FormatMTGO
	}
	if ratio < 1.2 {
		return FormatPaper
	}
	if meanLuma(img) > 200 {
		return FormatMTGO
	}
	return FormatArena
}

// meanLuma samples average brightness (0-255) over a downscaled copy.
func meanLuma(img image.Image) float64 {
	small := imaging.Resize(img, 64, 0, imaging.Box)
	gray := imaging.Grayscale(small)
	b := gray.Bounds()
	var sum, n uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _, _ := gray.At(x, y).RGBA()
			sum += uint64(r >> 8)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

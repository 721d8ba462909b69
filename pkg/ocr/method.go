package ocr

import (
	"context"
	"image"
	"time"
)

// Request carries everything a method needs to attempt an extraction. The
// zone set may be empty when profile lookup failed; methods that can work on
// the whole image fall back to it.
type Request struct {
	Image   image.Image
	Format  Format
	Zones   ZoneSet
	Attempt int
	// Hint focuses a retry on the section that came up short, empty on
	// the first pass.
	Hint string
}

// Extraction is a single method's read of the screenshot.
type Extraction struct {
	Cards      []Card
	Confidence float64
	Method     string
	Elapsed    time.Duration
}

// Method is one way of turning a screenshot into cards. Implementations must
// honor ctx cancellation; Available lets the pipeline skip methods whose
// prerequisites (credentials, binaries) are missing without spending a call.
type Method interface {
	Name() string
	Available() bool
	Extract(ctx context.Context, req *Request) (*Extraction, error)
}

// TextReader reads raw text off an image region without card parsing. The
// repair loop uses it on header crops that carry deck totals rather than
// card names. LocalOCR satisfies it.
type TextReader interface {
	ReadText(ctx context.Context, img image.Image) (string, error)
}

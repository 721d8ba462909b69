package ocr

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// localTimeout bounds a whole local pass. Tesseract on a zoned screenshot
// normally finishes in 2-4s; anything longer means a pathological image.
const localTimeout = 10 * time.Second

// LocalOCR runs Tesseract against the zone crops, falling back to the whole
// image when no zones were recovered. It is always available when the
// tesseract shared library is installed, which is a build-time requirement.
type LocalOCR struct {
	// Language passed to Tesseract, defaults to eng.
	Language string
}

func (m *LocalOCR) Name() string    { return "local" }
func (m *LocalOCR) Available() bool { return true }

func (m *LocalOCR) language() string {
	if m.Language == "" {
		return "eng"
	}
	return m.Language
}

func (m *LocalOCR) Extract(ctx context.Context, req *Request) (*Extraction, error) {
	ctx, cancel := context.WithTimeout(ctx, localTimeout)
	defer cancel()
	start := time.Now()

	zones := req.Zones.Zones()
	var cards []Card
	if len(zones) == 0 {
		text, err := m.recognize(ctx, PreprocessZone(req.Image, req.Format))
		if err != nil {
			return nil, err
		}
		log.Printf("local ocr: whole image text=%q", snippet(text, 160))
		cards = ParseDeckText(text)
	} else {
		var err error
		cards, err = m.extractZoned(ctx, req, zones)
		if err != nil {
			return nil, err
		}
	}

	return &Extraction{
		Cards:      cards,
		Confidence: localConfidence(cards, req.Zones),
		Method:     m.Name(),
		Elapsed:    time.Since(start),
	}, nil
}

// ReadText runs one recognition pass over an image region and returns the
// raw text, without card parsing. The repair loop reads header crops this
// way.
func (m *LocalOCR) ReadText(ctx context.Context, img image.Image) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, localTimeout)
	defer cancel()
	return m.recognize(ctx, img)
}

// extractZoned reads each zone crop separately so a noisy header cannot
// poison the card list. Grid cells contribute at most one card each.
func (m *LocalOCR) extractZoned(ctx context.Context, req *Request, zones []Zone) ([]Card, error) {
	var cards []Card
	for _, z := range zones {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: local ocr after %d zones", ErrTimeout, len(cards))
		}
		section := classifyZone(strings.TrimSuffix(z.Name, "_card"))
		if section == "" {
			continue
		}
		text, err := m.recognize(ctx, PreprocessZone(z.Image, req.Format))
		if err != nil {
			log.Printf("local ocr: zone %s failed: %v", z, err)
			continue
		}
		for _, c := range ParseDeckText(text) {
			c.Section = section
			cards = append(cards, c)
		}
	}
	return cards, nil
}

// recognize feeds a processed image to Tesseract via a temp file, since the
// client reads from a path. Each call gets its own client so a timed-out
// recognition can be abandoned and release its resources on its own.
func (m *LocalOCR) recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: local ocr", ErrTimeout)
	}
	tmpFile, err := os.CreateTemp("", "deckscan-*.png")
	if err != nil {
		return "", fmt.Errorf("ocr temp file: %w", err)
	}
	tmp := tmpFile.Name()
	_ = tmpFile.Close()
	if err := imaging.Save(img, tmp); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("ocr temp save: %w", err)
	}
	client := gosseract.NewClient()
	_ = client.SetLanguage(m.language())
	client.SetImage(tmp)
	text, err := textWithin(ctx, func() (string, error) {
		defer os.Remove(tmp)
		defer client.Close()
		return client.Text()
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// textWithin runs a recognition call in its own goroutine so an expired
// context regains control. The underlying cgo call cannot be interrupted; on
// timeout it is abandoned and cleans up after itself when it finishes.
func textWithin(ctx context.Context, fn func() (string, error)) (string, error) {
	type reply struct {
		text string
		err  error
	}
	ch := make(chan reply, 1)
	go func() {
		text, err := fn()
		ch <- reply{text, err}
	}()
	select {
	case r := <-ch:
		if r.err != nil {
			return "", fmt.Errorf("tesseract: %w", r.err)
		}
		return r.text, nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: recognition abandoned", ErrTimeout)
	}
}

// localConfidence scales the zone layout confidence by how close the read
// came to a plausible deck.
func localConfidence(cards []Card, zones ZoneSet) float64 {
	base := zones.Confidence
	if base == 0 {
		base = 0.5
	}
	total := MainboardCount(cards) + SideboardCount(cards)
	switch {
	case total == 0:
		return 0
	case total < 20:
		return base * 0.5
	case total < 50:
		return base * 0.8
	}
	return base
}

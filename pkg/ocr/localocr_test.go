package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTextWithinReturnsText(t *testing.T) {
	text, err := textWithin(context.Background(), func() (string, error) {
		return "4 Opt", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "4 Opt" {
		t.Fatalf("expected text back got %q", text)
	}
}

func TestTextWithinAbandonsSlowRecognition(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	release := make(chan struct{})
	defer close(release)
	_, err := textWithin(ctx, func() (string, error) {
		<-release
		return "too late", nil
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout got %v", err)
	}
}

func TestTextWithinWrapsRecognitionError(t *testing.T) {
	_, err := textWithin(context.Background(), func() (string, error) {
		return "", errors.New("no text")
	})
	if err == nil || !strings.Contains(err.Error(), "tesseract") {
		t.Fatalf("expected a tesseract error got %v", err)
	}
}

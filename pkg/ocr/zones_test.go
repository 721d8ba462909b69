package ocr

import (
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestExtractZonesArenaGrid(t *testing.T) {
	img := imaging.New(1920, 1080, color.NRGBA{30, 30, 30, 255})
	profile, res, err := DefaultProfiles().Lookup(FormatArena, 1920, 1080)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if res != "1920x1080" {
		t.Fatalf("expected exact bucket got %s", res)
	}
	set := ExtractZones(img, profile)
	if len(set.Main) != 60 {
		t.Fatalf("expected 60 mainDeck grid cells got %d", len(set.Main))
	}
	if len(set.Side) != 15 {
		t.Fatalf("expected 15 sideboard cells got %d", len(set.Side))
	}
	if set.Confidence != 1.0 {
		t.Fatalf("expected full confidence with %d zones got %.2f", len(set.Zones()), set.Confidence)
	}
	for _, z := range set.Main {
		if z.Name != "mainDeck_card" {
			t.Fatalf("grid cell name wrong: %s", z.Name)
		}
	}
}

func TestExtractZonesSkipsDegenerate(t *testing.T) {
	img := imaging.New(200, 40, color.NRGBA{0, 0, 0, 255})
	profile := Profile{Zones: map[string]ZoneSpec{
		"mainDeck": {X: 0.99, Y: 0.99, Width: 0.5, Height: 0.5},
	}}
	set := ExtractZones(img, profile)
	if len(set.Zones()) != 0 {
		t.Fatalf("degenerate zone should be skipped, got %+v", set.Zones())
	}
}

func TestZoneConfidenceTiers(t *testing.T) {
	cases := []struct {
		zones int
		want  float64
	}{
		{1, 0.7},
		{11, 0.8},
		{21, 0.9},
		{41, 1.0},
		{100, 1.0},
	}
	for _, c := range cases {
		if got := zoneConfidence(c.zones); got != c.want {
			t.Fatalf("zones=%d expected %.1f got %.2f", c.zones, c.want, got)
		}
	}
}

func TestAbsoluteRectClamped(t *testing.T) {
	rect, ok := absoluteRect(ZoneSpec{X: 0.5, Y: 0.5, Width: 0.9, Height: 0.9}, 100, 100)
	if !ok {
		t.Fatalf("expected clamped rect")
	}
	if rect.Max.X != 100 || rect.Max.Y != 100 {
		t.Fatalf("rect not clamped to frame: %v", rect)
	}
}

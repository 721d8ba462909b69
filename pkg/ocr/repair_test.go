package ocr

import (
	"context"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func deckOf(mainQty, sideQty int) []Card {
	var cards []Card
	remaining := mainQty
	for i := 0; remaining > 0; i++ {
		q := 4
		if q > remaining {
			q = remaining
		}
		cards = append(cards, Card{Name: mainName(i), Quantity: q, Section: SectionMainboard})
		remaining -= q
	}
	remaining = sideQty
	for i := 0; remaining > 0; i++ {
		q := 3
		if q > remaining {
			q = remaining
		}
		cards = append(cards, Card{Name: sideName(i), Quantity: q, Section: SectionSideboard})
		remaining -= q
	}
	return cards
}

func mainName(i int) string { return "Main Card " + string(rune('A'+i)) }
func sideName(i int) string { return "Side Card " + string(rune('A'+i)) }

func TestRepairExactDeckUntouched(t *testing.T) {
	r := &Repairer{}
	cards := deckOf(60, 15)
	out, warnings, _, guaranteed := r.Repair(context.Background(), nil, FormatArena, cards)
	if !guaranteed {
		t.Fatalf("exact deck must be guaranteed")
	}
	if len(warnings) != 0 {
		t.Fatalf("exact deck must not warn: %v", warnings)
	}
	if MainboardCount(out) != 60 || SideboardCount(out) != 15 {
		t.Fatalf("counts changed: %d/%d", MainboardCount(out), SideboardCount(out))
	}
}

func TestRepairTrimsOverRead(t *testing.T) {
	r := &Repairer{}
	cards := deckOf(64, 15)
	out, warnings, _, guaranteed := r.Repair(context.Background(), nil, FormatArena, cards)
	if !guaranteed {
		t.Fatalf("trimmable deck should be guaranteed")
	}
	if MainboardCount(out) != 60 {
		t.Fatalf("expected trim to 60 got %d", MainboardCount(out))
	}
	if len(warnings) == 0 || !strings.Contains(warnings[0], "trimmed") {
		t.Fatalf("expected trim warning got %v", warnings)
	}
}

func TestRepairPadsMainboardWithPresentBasics(t *testing.T) {
	img := imaging.New(1920, 1080, color.NRGBA{0, 0, 0, 255})
	r := &Repairer{}
	cards := append(deckOf(36, 15), Card{Name: "Mountain", Quantity: 4, Section: SectionMainboard})
	out, _, _, guaranteed := r.Repair(context.Background(), img, FormatArena, cards)
	if !guaranteed {
		t.Fatalf("padding should complete the deck")
	}
	if MainboardCount(out) != 60 {
		t.Fatalf("expected 60 mainboard got %d", MainboardCount(out))
	}
	mountains := 0
	for _, c := range out {
		if c.Name == "Mountain" {
			mountains += c.Quantity
		}
	}
	if mountains != 24 {
		t.Fatalf("expected padding with the deck's own basic, got %d mountains", mountains)
	}
}

func TestRepairNeverPadsSideboard(t *testing.T) {
	r := &Repairer{}
	cards := deckOf(60, 9)
	out, warnings, _, guaranteed := r.Repair(context.Background(), nil, FormatArena, cards)
	if guaranteed {
		t.Fatalf("short sideboard with no re-read source cannot be guaranteed")
	}
	if SideboardCount(out) != 9 {
		t.Fatalf("sideboard must not be padded: %d", SideboardCount(out))
	}
	last := warnings[len(warnings)-1]
	if !strings.Contains(last, "incomplete") {
		t.Fatalf("expected incomplete warning got %v", warnings)
	}
}

func TestRepairCloudRereadCompletes(t *testing.T) {
	cloud := &fakeMethod{name: "vision", available: true, cards: []Card{
		{Name: "Side Card A", Quantity: 3, Section: SectionSideboard},
		{Name: "Negate", Quantity: 5, Section: SectionSideboard},
	}}
	r := &Repairer{Cloud: cloud}
	cards := deckOf(60, 10)
	out, _, _, guaranteed := r.Repair(context.Background(), nil, FormatArena, cards)
	if !guaranteed {
		t.Fatalf("cloud re-read should complete the sideboard")
	}
	if SideboardCount(out) != 15 {
		t.Fatalf("expected 15 sideboard got %d", SideboardCount(out))
	}
	if cloud.calls == 0 {
		t.Fatalf("cloud method was never consulted")
	}
}

type fakeTextReader struct {
	text  string
	err   error
	calls int
}

func (f *fakeTextReader) ReadText(ctx context.Context, img image.Image) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestRepairHeaderTotalsRaiseBasics(t *testing.T) {
	img := imaging.New(1920, 1080, color.NRGBA{230, 230, 230, 255})
	reader := &fakeTextReader{text: "Lands: 24  Creatures: 20  Other: 16\nSideboard: 15"}
	r := &Repairer{Text: reader, Profiles: DefaultProfiles()}
	cards := append(deckOf(36, 15), Card{Name: "Island", Quantity: 12, Section: SectionMainboard})
	out, warnings, _, guaranteed := r.Repair(context.Background(), img, FormatMTGO, cards)
	if reader.calls == 0 {
		t.Fatalf("header zones were never read")
	}
	if !guaranteed {
		t.Fatalf("header totals should complete the deck: %v", warnings)
	}
	islands := 0
	for _, c := range out {
		if c.Name == "Island" {
			islands += c.Quantity
		}
	}
	if islands != 24 {
		t.Fatalf("expected 24 islands from header delta, got %d", islands)
	}
	for _, w := range warnings {
		if strings.Contains(w, "padded") {
			t.Fatalf("header correction must run before padding: %v", warnings)
		}
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "header") {
			found = true
		}
	}
	if !found {
		t.Fatalf("header correction must be surfaced as a warning: %v", warnings)
	}
}

func TestRepairUnreadableHeaderFallsThrough(t *testing.T) {
	img := imaging.New(1920, 1080, color.NRGBA{230, 230, 230, 255})
	reader := &fakeTextReader{text: "Display  Sort  Apply Filters"}
	r := &Repairer{Text: reader, Profiles: DefaultProfiles()}
	cards := append(deckOf(36, 15), Card{Name: "Island", Quantity: 12, Section: SectionMainboard})
	out, _, _, guaranteed := r.Repair(context.Background(), img, FormatMTGO, cards)
	if !guaranteed {
		t.Fatalf("padding should still complete the deck")
	}
	if MainboardCount(out) != 60 {
		t.Fatalf("expected 60 mainboard got %d", MainboardCount(out))
	}
}

func TestShortSection(t *testing.T) {
	if s := shortSection(deckOf(60, 5)); s != "sideboard" {
		t.Fatalf("expected sideboard got %s", s)
	}
	if s := shortSection(deckOf(40, 15)); s != "mainboard" {
		t.Fatalf("expected mainboard got %s", s)
	}
}

func TestDeckBasicsColorHints(t *testing.T) {
	cards := []Card{
		{Name: "Goblin Guide", Quantity: 4, Section: SectionMainboard},
		{Name: "Lightning Strike", Quantity: 4, Section: SectionMainboard},
	}
	basics := deckBasics(cards)
	if len(basics) == 0 || basics[0] != "Mountain" {
		t.Fatalf("red deck should pad Mountains, got %v", basics)
	}
}

package ocr

import (
	"context"
	"fmt"
	"image"
	"log"
	"sort"
	"strings"
)

// maxRepairAttempts bounds the completion ladder. Each attempt is at most
// one OCR pass, so the worst case stays well under a minute.
const maxRepairAttempts = 5

// basicLands in WUBRG order. Padding draws from these and nothing else.
var basicLands = []string{"Plains", "Island", "Swamp", "Mountain", "Forest"}

// Repairer drives short decks toward exactly 60 mainboard and 15 sideboard
// cards. Escalation order is fixed: targeted cloud re-reads first, header
// total reconciliation and an alternate crop for mtgo layouts next, and
// basic-land padding strictly last because padded cards are synthesized
// rather than read. The sideboard is never padded; inventing sideboard cards
// would corrupt exports silently.
type Repairer struct {
	Cloud    Method
	Local    Method
	Text     TextReader
	Profiles ProfileTable
}

// Repair returns the completed cards, accumulated warnings, failure
// descriptions from rungs that errored, and whether the 60/15 guarantee
// holds. Passing in an already-exact deck returns it untouched.
func (r *Repairer) Repair(ctx context.Context, img image.Image, format Format, cards []Card) ([]Card, []string, []string, bool) {
	cards = Dedupe(cards)
	var warnings, failures []string
	if countsSatisfied(cards) {
		return cards, warnings, failures, true
	}
	cards = trimExcess(cards)
	if countsSatisfied(cards) {
		warnings = append(warnings, "trimmed over-read entries to deck size")
		return cards, warnings, failures, true
	}

	best := cards
	for attempt := 1; attempt <= maxRepairAttempts; attempt++ {
		if ctx.Err() != nil {
			warnings = append(warnings, "repair cancelled")
			break
		}
		merged, warn, failure := r.attempt(ctx, attempt, img, format, best)
		if warn != "" {
			warnings = append(warnings, warn)
		}
		if failure != "" {
			failures = append(failures, failure)
		}
		if merged != nil {
			merged = trimExcess(Dedupe(merged))
			if countDistance(merged) < countDistance(best) {
				best = merged
			}
		}
		if countsSatisfied(best) {
			return best, warnings, failures, true
		}
	}

	warnings = append(warnings, fmt.Sprintf(
		"deck incomplete after repair: %d/60 mainboard, %d/15 sideboard",
		MainboardCount(best), SideboardCount(best)))
	return best, warnings, failures, false
}

// attempt runs one rung of the ladder and returns the merged candidate list
// (nil when the rung produced nothing), a warning, and a failure description.
func (r *Repairer) attempt(ctx context.Context, attempt int, img image.Image, format Format, cards []Card) ([]Card, string, string) {
	switch {
	case attempt <= 2:
		return r.cloudReread(ctx, attempt, img, format, cards)
	case attempt == 3 && format == FormatMTGO:
		return r.headerLandCorrect(ctx, img, cards)
	case attempt == 4 && format == FormatMTGO:
		return r.altProfileReread(ctx, img, cards)
	default:
		return r.padBasicLands(cards)
	}
}

// headerLandCorrect re-reads the header zones of an mtgo capture and, when
// they carry the interface's "Lands: N" counters, raises the deck's basic
// lands to match. MTGO renders stacked basics as one row with a multiplier,
// which OCR drops far more often than spell rows, so the header delta is the
// most reliable completion signal the screenshot offers.
func (r *Repairer) headerLandCorrect(ctx context.Context, img image.Image, cards []Card) ([]Card, string, string) {
	if r.Text == nil || r.Profiles == nil || img == nil {
		return nil, "", ""
	}
	b := img.Bounds()
	profile, _, err := r.Profiles.Lookup(FormatMTGO, b.Dx(), b.Dy())
	if err != nil {
		return nil, "", ""
	}
	set := ExtractZones(img, profile)
	var parts []string
	for _, z := range set.Headers {
		text, err := r.Text.ReadText(ctx, PreprocessZone(z.Image, FormatMTGO))
		if err != nil {
			log.Printf("repair: header zone %s unreadable: %v", z, err)
			continue
		}
		parts = append(parts, text)
	}
	totals, ok := parseHeaderTotals(strings.Join(parts, "\n"))
	if !ok {
		return nil, "", ""
	}
	corrected, added := correctBasicLands(cards, totals.Lands)
	if added == 0 {
		return nil, "", ""
	}
	log.Printf("repair: header claims %d lands, raised basics by %d", totals.Lands, added)
	return corrected, fmt.Sprintf("raised basic lands by %d to match the deck header totals", added), ""
}

// cloudReread asks the vision model again, naming the section that came up
// short so the model focuses there.
func (r *Repairer) cloudReread(ctx context.Context, attempt int, img image.Image, format Format, cards []Card) ([]Card, string, string) {
	if r.Cloud == nil || !r.Cloud.Available() {
		return nil, "", ""
	}
	req := &Request{Image: img, Format: format, Attempt: attempt, Hint: shortSection(cards)}
	ext, err := r.Cloud.Extract(ctx, req)
	if err != nil {
		log.Printf("repair attempt %d: cloud re-read failed: %v", attempt, err)
		return nil, "", methodFailure("repair re-read", err)
	}
	return append(append([]Card{}, cards...), ext.Cards...), "", ""
}

// altProfileReread re-crops with the alternate MTGO layout and runs local
// OCR over the new zones. MTGO's list pane position varies with window
// chrome, so a miss on the primary profile often lands on the alternate.
func (r *Repairer) altProfileReread(ctx context.Context, img image.Image, cards []Card) ([]Card, string, string) {
	if r.Local == nil || r.Profiles == nil {
		return nil, "", ""
	}
	b := img.Bounds()
	profile, res, err := r.Profiles.AltLookup(FormatMTGO, b.Dx(), b.Dy())
	if err != nil {
		return nil, "", ""
	}
	log.Printf("repair: re-cropping with alternate mtgo profile %s", res)
	req := &Request{Image: img, Format: FormatMTGO, Zones: ExtractZones(img, profile)}
	ext, err := r.Local.Extract(ctx, req)
	if err != nil {
		return nil, "", methodFailure("repair alternate crop", err)
	}
	return append(append([]Card{}, cards...), ext.Cards...), "", ""
}

// padBasicLands fills a short mainboard with basic lands matching the deck's
// colors. This is the only rung that fabricates entries, which is why it
// runs last and touches only the mainboard.
func (r *Repairer) padBasicLands(cards []Card) ([]Card, string, string) {
	missing := MainboardTarget - MainboardCount(cards)
	if missing <= 0 {
		return nil, "", ""
	}
	basics := deckBasics(cards)
	add := map[string]int{}
	for i := 0; missing > 0; i++ {
		name := basics[i%len(basics)]
		qty := missing / (len(basics) - i%len(basics))
		if qty < 1 {
			qty = 1
		}
		if qty > missing {
			qty = missing
		}
		add[name] += qty
		missing -= qty
	}
	// Raise quantities on entries already in the deck so the later
	// max-merge dedupe cannot collapse the padding away.
	out := append([]Card{}, cards...)
	for i := range out {
		if out[i].Section != SectionMainboard {
			continue
		}
		if qty, ok := add[out[i].Name]; ok {
			out[i].Quantity += qty
			delete(add, out[i].Name)
		}
	}
	for _, name := range basics {
		if qty, ok := add[name]; ok {
			out = append(out, Card{Name: name, Quantity: qty, Section: SectionMainboard})
		}
	}
	return out, fmt.Sprintf("padded mainboard with basic lands (%s)", strings.Join(basics, ", ")), ""
}

// deckBasics picks which basic lands fit the deck, preferring basics already
// present, then color keywords in card names, then Plains as the neutral
// default.
func deckBasics(cards []Card) []string {
	present := map[string]bool{}
	for _, c := range cards {
		for _, b := range basicLands {
			if strings.EqualFold(c.Name, b) {
				present[b] = true
			}
		}
	}
	if len(present) > 0 {
		out := make([]string, 0, len(present))
		for _, b := range basicLands {
			if present[b] {
				out = append(out, b)
			}
		}
		return out
	}

	hints := map[string][]string{
		"Plains":   {"angel", "knight", "soldier", "white"},
		"Island":   {"counter", "draw", "merfolk", "blue"},
		"Swamp":    {"demon", "zombie", "vampire", "black"},
		"Mountain": {"lightning", "goblin", "dragon", "burn", "red"},
		"Forest":   {"elf", "growth", "beast", "green"},
	}
	scores := map[string]int{}
	for _, c := range cards {
		low := strings.ToLower(c.Name)
		for basic, words := range hints {
			for _, w := range words {
				if strings.Contains(low, w) {
					scores[basic]++
				}
			}
		}
	}
	if len(scores) == 0 {
		return []string{"Plains"}
	}
	out := make([]string, 0, len(scores))
	for _, b := range basicLands {
		if scores[b] > 0 {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return scores[out[i]] > scores[out[j]] })
	return out
}

// shortSection names the section furthest from target for retry prompts.
func shortSection(cards []Card) string {
	mainGap := MainboardTarget - MainboardCount(cards)
	sideGap := SideboardTarget - SideboardCount(cards)
	if sideGap > mainGap {
		return string(SectionSideboard)
	}
	if mainGap > 0 {
		return string(SectionMainboard)
	}
	return ""
}

// trimExcess cuts over-target sections back to exact size by reducing
// quantities from the end of the list, where the least confident reads sit.
func trimExcess(cards []Card) []Card {
	cards = trimSection(cards, SectionMainboard, MainboardTarget)
	return trimSection(cards, SectionSideboard, SideboardTarget)
}

func trimSection(cards []Card, section Section, target int) []Card {
	count := 0
	for _, c := range cards {
		if c.Section == section {
			count += c.Quantity
		}
	}
	excess := count - target
	if excess <= 0 {
		return cards
	}
	out := append([]Card{}, cards...)
	for i := len(out) - 1; i >= 0 && excess > 0; i-- {
		if out[i].Section != section {
			continue
		}
		cut := out[i].Quantity
		if cut > excess {
			cut = excess
		}
		out[i].Quantity -= cut
		excess -= cut
	}
	trimmed := out[:0]
	for _, c := range out {
		if c.Quantity > 0 {
			trimmed = append(trimmed, c)
		}
	}
	return trimmed
}

package ocr

import (
	"regexp"
	"strconv"
	"strings"
)

// allBasicLands lists every card a land correction may touch, including the
// snow and colorless variants. Padding uses the shorter basicLands list;
// correction must also recognize these so a snow deck gets its own basics
// raised instead of gaining plain ones.
var allBasicLands = []string{
	"Plains", "Island", "Swamp", "Mountain", "Forest", "Wastes",
	"Snow-Covered Plains", "Snow-Covered Island", "Snow-Covered Swamp",
	"Snow-Covered Mountain", "Snow-Covered Forest",
}

// headerTotals are the deck totals MTGO prints above the card list.
type headerTotals struct {
	Lands     int
	Creatures int
	Other     int
	Sideboard int
}

// Mainboard is the total the header claims for the main deck.
func (t headerTotals) Mainboard() int { return t.Lands + t.Creatures + t.Other }

var headerPatterns = map[string]*regexp.Regexp{
	"lands":     regexp.MustCompile(`(?i)Lands:\s*(\d+)`),
	"creatures": regexp.MustCompile(`(?i)Creatures:\s*(\d+)`),
	"other":     regexp.MustCompile(`(?i)Other:\s*(\d+)`),
	"sideboard": regexp.MustCompile(`(?i)Sideboard:\s*(\d+)`),
}

// parseHeaderTotals reads MTGO's "Lands: N / Creatures: N / ..." counters out
// of OCR'd header text. It reports ok only when the lands total and at least
// one other counter matched, so stray digits in a noisy crop cannot pass for
// a header.
func parseHeaderTotals(text string) (headerTotals, bool) {
	var totals headerTotals
	matched := 0
	for key, pattern := range headerPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		matched++
		switch key {
		case "lands":
			totals.Lands = n
		case "creatures":
			totals.Creatures = n
		case "other":
			totals.Other = n
		case "sideboard":
			totals.Sideboard = n
		}
	}
	if matched < 2 || headerPatterns["lands"].FindStringSubmatch(text) == nil {
		return headerTotals{}, false
	}
	return totals, true
}

// landNameWords are substrings that mark a card as a land. Besides the basic
// types this covers the common nonbasic cycles and named duals, so header
// math is not thrown off by a deck full of shocklands.
var landNameWords = []string{
	"land", "plains", "island", "swamp", "mountain", "forest",
	"wastes", "verge", "courtyard", "tower", "shrine", "grave",
	"shores", "coast", "catacomb", "fountain", "otawara", "eiganjo",
	"takenuma", "town", "godless", "watery", "hallowed",
	"drowned", "darkslick", "seachrome", "cavern", "triome", "horizon",
}

func isLandName(name string) bool {
	low := strings.ToLower(name)
	for _, w := range landNameWords {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}

// landCount sums mainboard quantities of cards that look like lands.
func landCount(cards []Card) int {
	n := 0
	for _, c := range cards {
		if c.Section != SectionSideboard && isLandName(c.Name) {
			n += c.Quantity
		}
	}
	return n
}

// correctBasicLands reconciles the deck against the lands total the header
// claims. OCR loses stacked basics far more often than spells, so the whole
// shortfall goes onto one basic land already in the deck, or the color's
// basic when none survived the read. A surplus is left alone; shrinking a
// read on header evidence alone would drop real cards. Returns the corrected
// list and the quantity added, 0 when no correction applies.
func correctBasicLands(cards []Card, expectedLands int) ([]Card, int) {
	diff := expectedLands - landCount(cards)
	if diff <= 0 {
		return nil, 0
	}
	basic := findDeckBasic(cards)
	if basic == "" {
		basic = deckBasics(cards)[0]
	}
	out := append([]Card{}, cards...)
	for i := range out {
		if out[i].Section == SectionSideboard {
			continue
		}
		if strings.EqualFold(out[i].Name, basic) {
			out[i].Quantity += diff
			return out, diff
		}
	}
	return append(out, Card{Name: basic, Quantity: diff, Section: SectionMainboard}), diff
}

// findDeckBasic returns the first basic land variant present in the
// mainboard, preferring exact names over partial OCR reads.
func findDeckBasic(cards []Card) string {
	for _, c := range cards {
		if c.Section == SectionSideboard {
			continue
		}
		for _, b := range allBasicLands {
			if strings.EqualFold(c.Name, b) {
				return b
			}
		}
	}
	for _, c := range cards {
		if c.Section == SectionSideboard {
			continue
		}
		low := strings.ToLower(c.Name)
		for _, b := range allBasicLands {
			if strings.Contains(low, strings.ToLower(b)) {
				return b
			}
		}
	}
	return ""
}

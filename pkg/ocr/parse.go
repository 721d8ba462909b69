package ocr

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoJSON is returned when a model response contains no JSON object.
var ErrNoJSON = errors.New("no json block found")

// ExtractJSONBlock finds the first balanced top-level JSON object in text.
// Models wrap responses in markdown fences or prose despite instructions, so
// a brace scan beats trusting the whole payload. The scanner is string and
// escape aware: braces inside string literals do not count.
func ExtractJSONBlock(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", ErrNoJSON
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], nil
				}
			}
		}
	}
	return "", fmt.Errorf("%w: unbalanced braces", ErrNoJSON)
}

type visionEntry struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type visionDeck struct {
	Mainboard []visionEntry `json:"mainboard"`
	Sideboard []visionEntry `json:"sideboard"`
}

// ParseVisionJSON turns a model response into cards. Nameless entries are
// dropped, quantities below 1 default to 1, and common model artifacts
// (fences, ellipsis placeholders) are cleaned before decoding.
func ParseVisionJSON(text string) ([]Card, error) {
	cleaned := cleanModelText(text)
	block, err := ExtractJSONBlock(cleaned)
	if err != nil {
		return nil, err
	}
	var deck visionDeck
	if err := json.Unmarshal([]byte(block), &deck); err != nil {
		return nil, fmt.Errorf("decode deck json: %w", err)
	}
	var cards []Card
	for _, e := range deck.Mainboard {
		if c, ok := entryCard(e, SectionMainboard); ok {
			cards = append(cards, c)
		}
	}
	for _, e := range deck.Sideboard {
		if c, ok := entryCard(e, SectionSideboard); ok {
			cards = append(cards, c)
		}
	}
	return cards, nil
}

func entryCard(e visionEntry, section Section) (Card, bool) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return Card{}, false
	}
	qty := e.Quantity
	if qty < 1 {
		qty = 1
	}
	return Card{Name: name, Quantity: qty, Section: section}, true
}

// cleanModelText strips markdown fences and truncation ellipses models emit
// around or inside JSON.
func cleanModelText(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	// "..." inside an array breaks decoding; an elided list is still a list.
	text = ellipsisEntry.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

var (
	ellipsisEntry = regexp.MustCompile(`,?\s*(\.\.\.|…)\s*`)

	// "4 Lightning Bolt", "4x Lightning Bolt"
	leadingQty = regexp.MustCompile(`^\s*(\d{1,2})\s*[xX]?\s+(.+)$`)
	// "Lightning Bolt x4"
	trailingQty = regexp.MustCompile(`^(.+?)\s+[xX]\s*(\d{1,2})\s*$`)
)

// ParseDeckText parses free-form OCR text into cards, one line per entry.
// Lines are mainboard until a sideboard header; bare names count as one
// copy, matching every export format in circulation.
func ParseDeckText(text string) []Card {
	var cards []Card
	section := SectionMainboard
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isSideboardHeader(line) {
			section = SectionSideboard
			continue
		}
		if isNoiseLine(line) {
			continue
		}
		name := line
		qty := 1
		if m := leadingQty.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 {
				qty = n
				name = m[2]
			}
		} else if m := trailingQty.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[2]); err == nil && n >= 1 {
				qty = n
				name = m[1]
			}
		}
		name = strings.TrimSpace(name)
		if !plausibleCardName(name) {
			continue
		}
		cards = append(cards, Card{Name: name, Quantity: qty, Section: section})
	}
	return cards
}

func isSideboardHeader(line string) bool {
	low := strings.ToLower(strings.Trim(line, ":- "))
	return low == "sideboard" || strings.HasPrefix(low, "sideboard (") || low == "sb" || low == "side board"
}

// isNoiseLine filters UI chrome that survives zoning: counters, deck stats,
// mana curve labels.
func isNoiseLine(line string) bool {
	low := strings.ToLower(line)
	for _, marker := range []string{"deck", "cards", "60/60", "15/15", "mana", "total"} {
		if strings.Contains(low, marker) && len(line) < 24 {
			return true
		}
	}
	return false
}

// plausibleCardName rejects OCR fragments: card names are at least two
// letters and mostly alphabetic.
func plausibleCardName(name string) bool {
	if len(name) < 2 || len(name) > 60 {
		return false
	}
	letters := 0
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters++
		}
	}
	return letters*2 >= len(name)
}

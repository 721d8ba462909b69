package ocr

import "strings"

// Dedupe merges duplicate entries by case-insensitive (name, section) key,
// keeping the MAX quantity seen rather than summing. Multiple methods and
// overlapping zones report the same physical cards, so summing would double
// count; the largest single read is the most complete one. First-seen casing
// and order are preserved.
func Dedupe(cards []Card) []Card {
	type key struct {
		name    string
		section Section
	}
	index := make(map[key]int, len(cards))
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		k := key{name: strings.ToLower(c.Name), section: c.Section}
		if i, ok := index[k]; ok {
			if c.Quantity > out[i].Quantity {
				out[i].Quantity = c.Quantity
			}
			continue
		}
		index[k] = len(out)
		out = append(out, c)
	}
	return out
}

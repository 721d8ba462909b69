package ocr

// Section of a deck list a card belongs to.
type Section string

const (
	SectionMainboard Section = "mainboard"
	SectionSideboard Section = "sideboard"
)

// Fixed deck targets. A constructed deck list on Arena/MTGO is 60 mainboard
// plus 15 sideboard cards; the repair loop chases these counts.
const (
	MainboardTarget = 60
	SideboardTarget = 15
)

// Format is the detected source platform of a screenshot.
type Format string

const (
	FormatArena Format = "arena"
	FormatMTGO  Format = "mtgo"
	FormatPaper Format = "paper"
)

// Card is a single extracted deck-list entry. Name is as-read, not yet
// validated against any card catalog.
type Card struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Section  Section `json:"section"`
}

// Result is the outcome of one pipeline run over one uploaded image.
// Warnings describe anomalies the pipeline worked around; Errors describe
// stage and method failures that did not stop processing.
type Result struct {
	Success      bool     `json:"success"`
	Cards        []Card   `json:"cards"`
	Confidence   float64  `json:"confidence"`
	Guaranteed   bool     `json:"guaranteed"`
	Format       Format   `json:"format"`
	Warnings     []string `json:"warnings,omitempty"`
	Errors       []string `json:"errors,omitempty"`
	MethodsTried []string `json:"methods_tried,omitempty"`
	ProcessingMS int64    `json:"processing_ms"`
}

// MainboardCount sums quantities of mainboard entries.
func MainboardCount(cards []Card) int {
	n := 0
	for _, c := range cards {
		if c.Section != SectionSideboard {
			n += c.Quantity
		}
	}
	return n
}

// SideboardCount sums quantities of sideboard entries.
func SideboardCount(cards []Card) int {
	n := 0
	for _, c := range cards {
		if c.Section == SectionSideboard {
			n += c.Quantity
		}
	}
	return n
}

// countsSatisfied reports whether cards hit the 60/15 targets exactly.
func countsSatisfied(cards []Card) bool {
	return MainboardCount(cards) == MainboardTarget && SideboardCount(cards) == SideboardTarget
}

// countDistance is the Manhattan distance of the current counts to the
// 60/15 targets. Lower is better; 0 means the deck is complete.
func countDistance(cards []Card) int {
	return abs(MainboardTarget-MainboardCount(cards)) + abs(SideboardTarget-SideboardCount(cards))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

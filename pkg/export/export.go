// Package export renders a deck list in the text formats the popular deck
// sites import.
package export

import (
	"fmt"
	"strings"

	"deckscan/pkg/ocr"
)

// Format is a supported export target.
type Format string

const (
	FormatMTGA      Format = "mtga"
	FormatMoxfield  Format = "moxfield"
	FormatArchidekt Format = "archidekt"
	FormatTappedOut Format = "tappedout"
	FormatPlain     Format = "txt"
)

// Formats lists every supported target, for request validation and UI.
func Formats() []Format {
	return []Format{FormatMTGA, FormatMoxfield, FormatArchidekt, FormatTappedOut, FormatPlain}
}

// Render writes the deck in the given format. Unknown formats error rather
// than guessing.
func Render(cards []ocr.Card, format Format) (string, error) {
	main, side := split(cards)
	switch format {
	case FormatMTGA:
		return renderMTGA(main, side), nil
	case FormatMoxfield, FormatPlain:
		return renderPlain(main, side, ""), nil
	case FormatArchidekt:
		return renderX(main, side, "Sideboard"), nil
	case FormatTappedOut:
		return renderX(main, side, "Sideboard:"), nil
	}
	return "", fmt.Errorf("unknown export format %q", format)
}

// FileName suggests a download name for the format.
func FileName(format Format) string {
	return "deck_" + string(format) + ".txt"
}

func split(cards []ocr.Card) (main, side []ocr.Card) {
	for _, c := range cards {
		if c.Section == ocr.SectionSideboard {
			side = append(side, c)
		} else {
			main = append(main, c)
		}
	}
	return main, side
}

// renderMTGA is Arena's import format: explicit Deck/Sideboard headers.
func renderMTGA(main, side []ocr.Card) string {
	var b strings.Builder
	b.WriteString("Deck\n")
	writeLines(&b, main, "%d %s\n")
	if len(side) > 0 {
		b.WriteString("\nSideboard\n")
		writeLines(&b, side, "%d %s\n")
	}
	return b.String()
}

// renderPlain is the bare "4 Name" list Moxfield and most tools accept, with
// the sideboard after a blank line.
func renderPlain(main, side []ocr.Card, header string) string {
	var b strings.Builder
	writeLines(&b, main, "%d %s\n")
	if len(side) > 0 {
		b.WriteString("\n")
		if header != "" {
			b.WriteString(header + "\n")
		}
		writeLines(&b, side, "%d %s\n")
	}
	return b.String()
}

// renderX uses the "4x Name" quantity style TappedOut and Archidekt parse.
func renderX(main, side []ocr.Card, sideHeader string) string {
	var b strings.Builder
	writeLines(&b, main, "%dx %s\n")
	if len(side) > 0 {
		b.WriteString("\n" + sideHeader + "\n")
		writeLines(&b, side, "%dx %s\n")
	}
	return b.String()
}

func writeLines(b *strings.Builder, cards []ocr.Card, format string) {
	for _, c := range cards {
		fmt.Fprintf(b, format, c.Quantity, c.Name)
	}
}

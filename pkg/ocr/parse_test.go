package ocr

import (
	"errors"
	"testing"
)

func TestExtractJSONBlockFenced(t *testing.T) {
	in := "Here is the deck:\n```json\n{\"mainboard\":[{\"name\":\"Opt\",\"quantity\":4}],\"sideboard\":[]}\n```\nDone."
	block, err := ExtractJSONBlock(cleanModelText(in))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if block[0] != '{' || block[len(block)-1] != '}' {
		t.Fatalf("not a balanced object: %q", block)
	}
}

func TestExtractJSONBlockBracesInStrings(t *testing.T) {
	in := `prefix {"mainboard":[{"name":"Weird {Card} Name","quantity":1}],"sideboard":[]} suffix`
	block, err := ExtractJSONBlock(in)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if block != `{"mainboard":[{"name":"Weird {Card} Name","quantity":1}],"sideboard":[]}` {
		t.Fatalf("wrong block: %q", block)
	}
}

func TestExtractJSONBlockMissing(t *testing.T) {
	if _, err := ExtractJSONBlock("no json here"); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON got %v", err)
	}
	if _, err := ExtractJSONBlock(`{"unbalanced": [`); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON for unbalanced got %v", err)
	}
}

func TestParseVisionJSON(t *testing.T) {
	in := `{"mainboard":[{"name":"Lightning Bolt","quantity":4},{"name":"","quantity":2},{"name":"Opt","quantity":0}],"sideboard":[{"name":"Duress","quantity":3}]}`
	cards, err := ParseVisionJSON(in)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("expected 3 cards (nameless dropped) got %d", len(cards))
	}
	if cards[1].Name != "Opt" || cards[1].Quantity != 1 {
		t.Fatalf("zero quantity should default to 1, got %+v", cards[1])
	}
	if cards[2].Section != SectionSideboard {
		t.Fatalf("sideboard entry mis-sectioned: %+v", cards[2])
	}
}

func TestParseVisionJSONEllipsis(t *testing.T) {
	in := `{"mainboard":[{"name":"Opt","quantity":4}, ...],"sideboard":[]}`
	cards, err := ParseVisionJSON(in)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(cards) != 1 || cards[0].Name != "Opt" {
		t.Fatalf("unexpected cards: %+v", cards)
	}
}

func TestParseDeckText(t *testing.T) {
	text := "4 Lightning Bolt\n2x Opt\nShock x3\nIsland\n\nSideboard\n3 Duress\n"
	cards := ParseDeckText(text)
	if len(cards) != 5 {
		t.Fatalf("expected 5 cards got %d: %+v", len(cards), cards)
	}
	if cards[0].Quantity != 4 || cards[0].Name != "Lightning Bolt" {
		t.Fatalf("leading qty parse failed: %+v", cards[0])
	}
	if cards[2].Quantity != 3 || cards[2].Name != "Shock" {
		t.Fatalf("trailing qty parse failed: %+v", cards[2])
	}
	if cards[3].Quantity != 1 {
		t.Fatalf("bare name should default to 1: %+v", cards[3])
	}
	if cards[4].Section != SectionSideboard {
		t.Fatalf("sideboard header not honored: %+v", cards[4])
	}
}

func TestParseDeckTextNoise(t *testing.T) {
	text := "60/60 cards\n!!@#$\nab\n4 Lightning Bolt"
	cards := ParseDeckText(text)
	if len(cards) != 2 {
		t.Fatalf("expected noise filtered, got %+v", cards)
	}
	if cards[1].Name != "Lightning Bolt" {
		t.Fatalf("real card lost: %+v", cards)
	}
}

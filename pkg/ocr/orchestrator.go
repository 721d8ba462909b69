package ocr

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Orchestrator walks the methods in order, cheapest first, and stops at the
// first one that reads any cards at all. Later stages decide whether the
// read is complete; the orchestrator's job is only to get a non-empty start.
type Orchestrator struct {
	Methods []Method
}

// Run attempts each method in order. It returns the first extraction with at
// least one card, the names of everything tried, warnings describing why
// skipped methods did not produce, and failure descriptions for methods that
// errored. A nil extraction means every method came up empty.
func (o *Orchestrator) Run(ctx context.Context, req *Request) (*Extraction, []string, []string, []string) {
	var tried, warnings, failures []string
	for _, m := range o.Methods {
		if err := ctx.Err(); err != nil {
			warnings = append(warnings, "extraction cancelled before "+m.Name())
			return nil, tried, warnings, failures
		}
		if !m.Available() {
			warnings = append(warnings, m.Name()+" unavailable, skipped")
			continue
		}
		tried = append(tried, m.Name())
		ext, err := m.Extract(ctx, req)
		if err != nil {
			failures = append(failures, methodFailure(m.Name(), err))
			log.Printf("method %s failed: %v", m.Name(), err)
			continue
		}
		if len(ext.Cards) == 0 {
			warnings = append(warnings, m.Name()+" found no cards")
			continue
		}
		log.Printf("method %s extracted %d entries in %s", m.Name(), len(ext.Cards), ext.Elapsed)
		return ext, tried, warnings, failures
	}
	return nil, tried, warnings, failures
}

// methodFailure maps a method failure to a user-facing description, keeping
// the distinct causes distinguishable in the response.
func methodFailure(name string, err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return name + " timed out"
	case errors.Is(err, ErrNotConfigured):
		return name + " not configured"
	case errors.Is(err, ErrBudget):
		return name + " skipped: api budget exhausted"
	}
	return fmt.Sprintf("%s failed: %v", name, err)
}

// Package respond picks the health assistant's reply for an utterance.
//
// A Table is an ordered list of keyword rules plus a keyword-less fallback.
// Matching is plain substring containment on the case-folded utterance; the
// first rule with any matching keyword wins and the fallback catches the rest,
// so every utterance gets exactly one of the table's literal texts.
package respond

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/navyasetu/varunnetra/internal/i18n"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidTable is returned by NewTable for malformed rule sets.
var ErrInvalidTable = errors.New("invalid rule table")

// Rule maps a keyword set to one literal response per supported language.
type Rule struct {
	ID        string
	Keywords  []string
	Responses map[i18n.Tag]string
}

func (r Rule) matches(normalized string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

func (r Rule) clone() Rule {
	out := Rule{
		ID:        r.ID,
		Keywords:  make([]string, len(r.Keywords)),
		Responses: make(map[i18n.Tag]string, len(r.Responses)),
	}
	copy(out.Keywords, r.Keywords)
	for k, v := range r.Responses {
		out.Responses[k] = v
	}
	return out
}

// Match is the outcome of one selection.
// Fallback is set when no keyword rule matched; LanguageFallback when the
// requested language was not supported and English was used.
type Match struct {
	RuleID           string   `json:"rule_id"`
	Text             string   `json:"text"`
	Language         i18n.Tag `json:"language"`
	Fallback         bool     `json:"fallback"`
	LanguageFallback bool     `json:"language_fallback"`
}

// Table is an immutable ordered rule set.
type Table struct {
	rules    []Rule
	fallback Rule
}

// NewTable validates and freezes a rule set. Keywords are case-folded once here.
func NewTable(rules []Rule, fallback Rule) (*Table, error) {
	seen := make(map[string]bool, len(rules)+1)
	t := &Table{rules: make([]Rule, 0, len(rules))}

	for i, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: rule %d has no id", ErrInvalidTable, i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate rule id %q", ErrInvalidTable, r.ID)
		}
		seen[r.ID] = true
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("%w: rule %q has no keywords", ErrInvalidTable, r.ID)
		}

		nr := r.clone()
		for j, kw := range nr.Keywords {
			kw = fold(kw)
			if strings.TrimSpace(kw) == "" {
				return nil, fmt.Errorf("%w: rule %q has an empty keyword", ErrInvalidTable, r.ID)
			}
			nr.Keywords[j] = kw
		}
		if err := checkResponses(nr); err != nil {
			return nil, err
		}
		t.rules = append(t.rules, nr)
	}

	if fallback.ID == "" {
		return nil, fmt.Errorf("%w: fallback has no id", ErrInvalidTable)
	}
	if seen[fallback.ID] {
		return nil, fmt.Errorf("%w: fallback id %q reused", ErrInvalidTable, fallback.ID)
	}
	if len(fallback.Keywords) != 0 {
		return nil, fmt.Errorf("%w: fallback must not have keywords", ErrInvalidTable)
	}
	if err := checkResponses(fallback); err != nil {
		return nil, err
	}
	t.fallback = fallback.clone()

	return t, nil
}

func checkResponses(r Rule) error {
	for _, tag := range i18n.Supported() {
		if r.Responses[tag] == "" {
			return fmt.Errorf("%w: rule %q has no %q response", ErrInvalidTable, r.ID, tag)
		}
	}
	return nil
}

// fold lower-cases text. A Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Match selects the reply for utterance in the resolved language.
func (t *Table) Match(utterance, lang string) Match {
	tag := i18n.Resolve(lang)
	normalized := fold(utterance)

	for _, r := range t.rules {
		if r.matches(normalized) {
			return Match{
				RuleID:           r.ID,
				Text:             r.Responses[tag],
				Language:         tag,
				LanguageFallback: string(tag) != lang,
			}
		}
	}
	return Match{
		RuleID:           t.fallback.ID,
		Text:             t.fallback.Responses[tag],
		Language:         tag,
		Fallback:         true,
		LanguageFallback: string(tag) != lang,
	}
}

// Select returns only the reply text.
func (t *Table) Select(utterance, lang string) string {
	return t.Match(utterance, lang).Text
}

// Rules returns copies of the keyword rules in match order.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.clone()
	}
	return out
}

// Fallback returns a copy of the fallback rule.
func (t *Table) Fallback() Rule {
	return t.fallback.clone()
}

// Texts returns every literal response of the table for tag, fallback last.
func (t *Table) Texts(tag i18n.Tag) []string {
	out := make([]string, 0, len(t.rules)+1)
	for _, r := range t.rules {
		out = append(out, r.Responses[tag])
	}
	return append(out, t.fallback.Responses[tag])
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := NewTable(builtinRules(), builtinFallback())
	if err != nil {
		panic("respond: built-in table: " + err.Error())
	}
	return t
})

// Default returns the built-in health assistant table.
func Default() *Table {
	return defaultTable()
}

// Select runs the built-in table.
func Select(utterance, lang string) string {
	return Default().Select(utterance, lang)
}

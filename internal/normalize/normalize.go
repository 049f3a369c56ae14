// Package normalize turns raw recognizer output into a canonical engine
// code using known-prefix correction rules, and judges the structural
// validity of the result.
package normalize

import (
	"strings"

	"github.com/motoforense/motoscan/internal/registry"
)

// Code is a normalized engine code derived from one raw recognition.
// It is immutable once returned.
type Code struct {
	RawText   string `json:"raw_text"`
	Corrected string `json:"corrected_text"`
	// Prefix is non-empty only when the corrected text resolved against
	// the registry, by exact or corrected match.
	Prefix string `json:"prefix,omitempty"`
	Serial string `json:"serial,omitempty"`
	// CorrectionApplied lists the names of the rules applied, in order.
	CorrectionApplied []string `json:"correction_applied,omitempty"`

	record *registry.Record
}

// Record returns the registry record the prefix resolved to, or nil.
func (c Code) Record() *registry.Record { return c.record }

// Resolved reports whether the prefix matched the registry.
func (c Code) Resolved() bool { return c.record != nil }

// Normalize applies the ordered correction rules to raw recognizer text.
// Rules are tried only while the uncorrected text fails to resolve; the
// first rule sequence that yields a registry match wins. When nothing
// matches, the best-effort corrected text is returned with an empty prefix.
func Normalize(raw string, reg *registry.Registry) Code {
	code := Code{RawText: raw}
	text := sanitize(raw)
	code.Corrected = text
	if text == "" {
		return code
	}

	if rec := reg.Lookup(text); rec != nil {
		return resolved(code, text, rec)
	}

	for _, rule := range Rules {
		corrected, ok := rule.Apply(text, reg)
		if !ok {
			continue
		}
		text = corrected
		code.CorrectionApplied = append(code.CorrectionApplied, rule.Name)
		code.Corrected = text
		if rec := reg.Lookup(text); rec != nil {
			return resolved(code, text, rec)
		}
	}
	return code
}

// resolved splits the matched text into prefix and serial, stripping one
// optional separator between them.
func resolved(code Code, text string, rec *registry.Record) Code {
	code.record = rec
	code.Prefix = rec.Prefix
	code.Corrected = text
	rest := text[len(rec.Prefix):]
	rest = strings.TrimPrefix(rest, "-")
	code.Serial = rest
	return code
}

// sanitize uppercases and strips everything except letters, digits and a
// single separator between prefix and serial.
func sanitize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		}
	}
	return b.String()
}

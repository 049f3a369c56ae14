package normalize

import (
	"sort"
	"strings"

	"github.com/motoforense/motoscan/internal/registry"
)

// Rule is a named, pure correction step. Apply returns the corrected text
// and true when the rule changed something useful; it never touches the
// serial span.
type Rule struct {
	Name  string
	Apply func(text string, reg *registry.Registry) (string, bool)
}

// Rule names recorded in Code.CorrectionApplied.
const (
	RuleConfusableSubstitution = "confusable-substitution"
	RuleMissingCharInsertion   = "missing-character-insertion"
)

// Rules is the fixed priority order in which corrections are attempted.
var Rules = []Rule{
	{Name: RuleConfusableSubstitution, Apply: applyConfusables},
	{Name: RuleMissingCharInsertion, Apply: applyMissingChar},
}

// confusablePasses lists the substitutions tried inside the prefix span,
// in fixed order. Letter-to-digit passes come first; the reverse pass is
// a last resort since it can only ever apply to the prefix positions that
// survive the registry match.
var confusablePasses = []map[rune]rune{
	{'O': '0'},
	{'I': '1'},
	{'L': '1'},
	{'O': '0', 'I': '1', 'L': '1'},
	{'0': 'O'},
}

// applyConfusables substitutes known OCR confusables inside the putative
// prefix span until the prefix resolves. Characters past the matched
// prefix are restored from the original text so the serial is never
// rewritten.
func applyConfusables(text string, reg *registry.Registry) (string, bool) {
	span := reg.MaxPrefixLen()
	if span <= 0 || len(text) < 2 {
		return "", false
	}
	if span > len(text) {
		span = len(text)
	}
	head, rest := text[:span], text[span:]

	for _, pass := range confusablePasses {
		candidate := strings.Map(func(r rune) rune {
			if sub, ok := pass[r]; ok {
				return sub
			}
			return r
		}, head)
		if candidate == head {
			continue
		}
		rec := reg.Lookup(candidate + rest)
		if rec == nil {
			continue
		}
		// Keep substitutions only within the matched prefix.
		fixed := candidate[:len(rec.Prefix)] + text[len(rec.Prefix):]
		if reg.Lookup(fixed) != nil {
			return fixed, true
		}
	}
	return "", false
}

// applyMissingChar inserts a single dropped trailing prefix character:
// the registry holds MD09E1 but the camera read MD09E followed directly
// by the serial letter. The dropped character must be a digit and the
// displaced observed character a letter, otherwise the insertion would be
// guessing inside the serial.
func applyMissingChar(text string, reg *registry.Registry) (string, bool) {
	for _, rec := range prefixesByLength(reg) {
		p := rec.Prefix
		if len(p) < 2 || len(text) < len(p) {
			continue
		}
		if strings.HasPrefix(text, p) {
			continue
		}
		stem := p[:len(p)-1]
		if !strings.HasPrefix(text, stem) {
			continue
		}
		missing := p[len(p)-1]
		observed := text[len(p)-1]
		if !isDigit(missing) || !isLetter(observed) {
			continue
		}
		candidate := p + text[len(stem):]
		if reg.Lookup(candidate) != nil {
			return candidate, true
		}
	}
	return "", false
}

// prefixesByLength orders records most specific first so MD09E1 is
// attempted before MD09E.
func prefixesByLength(reg *registry.Registry) []registry.Record {
	recs := reg.Records()
	sort.Slice(recs, func(i, j int) bool {
		if len(recs[i].Prefix) != len(recs[j].Prefix) {
			return len(recs[i].Prefix) > len(recs[j].Prefix)
		}
		return recs[i].Prefix < recs[j].Prefix
	})
	return recs
}

func isDigit(b byte) bool  { return b >= '0' && b <= '9' }
func isLetter(b byte) bool { return b >= 'A' && b <= 'Z' }

package registry

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// EngravingType identifies the physical marking technique used for an
// engine code. The factory technique is determined by the model year.
type EngravingType string

const (
	EngravingStamped EngravingType = "STAMPED"
	EngravingLaser   EngravingType = "LASER"
	EngravingUnknown EngravingType = "UNKNOWN"
)

// LaserTransitionYear is the first model year engraved by laser.
// Years before it were stamped.
const LaserTransitionYear = 2010

// ExpectedEngraving returns the factory engraving technique for a model year.
func ExpectedEngraving(year int) EngravingType {
	if year < LaserTransitionYear {
		return EngravingStamped
	}
	return EngravingLaser
}

// Record describes one known manufacturer engine-code prefix.
type Record struct {
	Prefix         string        `yaml:"prefix"`
	Model          string        `yaml:"model"`
	Displacement   int           `yaml:"displacement"`
	ExpectedLength int           `yaml:"expected_length"`
	Era            EngravingType `yaml:"era"`
}

// Registry is an immutable longest-prefix lookup table of known engine-code
// prefixes. It is safe for unlimited concurrent readers.
type Registry struct {
	records map[string]Record
	// prefixes sorted by descending length so the most specific
	// candidate is tried first during longest-prefix matching.
	byLength []string
}

// New builds a registry from the given records. Later records override
// earlier ones with the same prefix.
func New(records []Record) *Registry {
	r := &Registry{records: make(map[string]Record, len(records))}
	for _, rec := range records {
		rec.Prefix = strings.ToUpper(strings.TrimSpace(rec.Prefix))
		if rec.Prefix == "" {
			continue
		}
		if rec.Era == "" {
			rec.Era = EngravingUnknown
		}
		if _, seen := r.records[rec.Prefix]; !seen {
			r.byLength = append(r.byLength, rec.Prefix)
		}
		r.records[rec.Prefix] = rec
	}
	sort.Slice(r.byLength, func(i, j int) bool {
		if len(r.byLength[i]) != len(r.byLength[j]) {
			return len(r.byLength[i]) > len(r.byLength[j])
		}
		return r.byLength[i] < r.byLength[j]
	})
	return r
}

// Default returns the built-in registry of known Honda engine prefixes.
func Default() *Registry {
	return New(builtinRecords)
}

// LoadFile builds a registry from a YAML file holding a list of records,
// merged on top of the built-in table.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	var extra []Record
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parse registry file %s: %w", path, err)
	}
	merged := make([]Record, 0, len(builtinRecords)+len(extra))
	merged = append(merged, builtinRecords...)
	merged = append(merged, extra...)
	return New(merged), nil
}

// Lookup resolves a candidate code against the registry. Exact match is
// tried first, then the longest registered prefix that is a left-substring
// of the candidate. A nil result means no match; unknown prefixes are a
// forensic signal, not an error.
func (r *Registry) Lookup(candidate string) *Record {
	candidate = strings.ToUpper(strings.TrimSpace(candidate))
	if candidate == "" {
		return nil
	}
	if rec, ok := r.records[candidate]; ok {
		return &rec
	}
	for _, p := range r.byLength {
		if strings.HasPrefix(candidate, p) {
			rec := r.records[p]
			return &rec
		}
	}
	return nil
}

// Exact reports whether the candidate is itself a registered prefix.
func (r *Registry) Exact(candidate string) bool {
	_, ok := r.records[strings.ToUpper(candidate)]
	return ok
}

// Records returns all records sorted by prefix.
func (r *Registry) Records() []Record {
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out
}

// MaxPrefixLen returns the length of the longest registered prefix.
func (r *Registry) MaxPrefixLen() int {
	if len(r.byLength) == 0 {
		return 0
	}
	return len(r.byLength[0])
}

// Len returns the number of registered prefixes.
func (r *Registry) Len() int { return len(r.records) }

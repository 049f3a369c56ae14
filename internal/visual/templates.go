// Package visual scores observed character glyphs against reference
// templates of the factory font.
package visual

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/motoforense/motoscan/internal/utils"
)

// Template glyphs are normalized to this size before comparison.
const (
	glyphWidth  = 50
	glyphHeight = 70
)

// GenericSetID names the fallback template set used when no set exists
// for the resolved prefix.
const GenericSetID = "generic"

// TemplateSet holds the normalized reference glyphs for one prefix/model.
type TemplateSet struct {
	ID     string
	glyphs map[byte]*image.Gray
}

// Glyph returns the reference glyph for a character, or nil.
func (t *TemplateSet) Glyph(c byte) *image.Gray {
	if t == nil {
		return nil
	}
	return t.glyphs[c]
}

// Len returns the number of glyphs in the set.
func (t *TemplateSet) Len() int {
	if t == nil {
		return 0
	}
	return len(t.glyphs)
}

// TemplateStore loads reference glyph sets from a directory tree laid out
// as <root>/<set-id>/<char>.png, with a <root>/generic fallback set.
// Sets are loaded once and cached; the store is safe for concurrent
// readers after Load.
type TemplateStore struct {
	root string
	sets map[string]*TemplateSet
}

// NewTemplateStore scans the template directory. A missing root is not an
// error: the store simply holds no sets and comparisons are skipped.
func NewTemplateStore(root string) (*TemplateStore, error) {
	s := &TemplateStore{root: root, sets: make(map[string]*TemplateSet)}
	if root == "" {
		return s, nil
	}
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		slog.Warn("template directory not found, visual comparison disabled", "dir", root)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read template directory: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		set, err := loadSet(filepath.Join(root, e.Name()), strings.ToUpper(e.Name()))
		if err != nil {
			return nil, err
		}
		if set.Len() > 0 {
			s.sets[set.ID] = set
		}
	}
	slog.Info("reference templates loaded", "sets", len(s.sets))
	return s, nil
}

func loadSet(dir, id string) (*TemplateSet, error) {
	set := &TemplateSet{ID: id, glyphs: make(map[byte]*image.Gray)}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read template set %s: %w", id, err)
	}
	for _, e := range entries {
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		base := strings.ToUpper(strings.TrimSuffix(name, filepath.Ext(name)))
		if e.IsDir() || (ext != ".png" && ext != ".jpg" && ext != ".jpeg") || len(base) != 1 {
			continue
		}
		img, err := imaging.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("open template %s/%s: %w", id, name, err)
		}
		set.glyphs[base[0]] = NormalizeGlyph(img)
	}
	return set, nil
}

// Lookup resolves the template set for a prefix, falling back to the
// generic set, then nil. Absence of a reference is informational, not a
// fraud signal.
func (s *TemplateStore) Lookup(prefix string) *TemplateSet {
	prefix = strings.ToUpper(prefix)
	if set, ok := s.sets[prefix]; ok {
		return set
	}
	// A more specific prefix can borrow its family's set (MD09E1→MD09E).
	for p := prefix; len(p) > 2; p = p[:len(p)-1] {
		if set, ok := s.sets[p]; ok {
			return set
		}
	}
	if set, ok := s.sets[strings.ToUpper(GenericSetID)]; ok {
		return set
	}
	if set, ok := s.sets[GenericSetID]; ok {
		return set
	}
	return nil
}

// AddSet registers an in-memory template set; used by tests.
func (s *TemplateStore) AddSet(set *TemplateSet) { s.sets[set.ID] = set }

// NewTemplateSet builds an in-memory set from raw glyph images.
func NewTemplateSet(id string, glyphs map[byte]image.Image) *TemplateSet {
	set := &TemplateSet{ID: id, glyphs: make(map[byte]*image.Gray, len(glyphs))}
	for c, img := range glyphs {
		set.glyphs[c] = NormalizeGlyph(img)
	}
	return set
}

// NormalizeGlyph scales a glyph image to the canonical size and
// binarizes it.
func NormalizeGlyph(img image.Image) *image.Gray {
	resized := imaging.Resize(img, glyphWidth, glyphHeight, imaging.Lanczos)
	gray, _ := utils.ToGray(resized)
	return utils.Binarize(gray, utils.OtsuThreshold(gray))
}

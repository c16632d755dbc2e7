// Package entitystore deduplicates non-lexeme referents (persons named in
// eponym etymologies, and similar subjects) by compatible-attribute merging,
// the way the teacher's entity-resolution registry merges cross-source
// mentions into one canonical entity.
package entitystore

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nucleus/etymograph/pkg/lexicon"
)

// TemplateData carries the subset of a template's parameters that can seed
// or refine an Entity; anything else is out of scope for identity
// comparison.
type TemplateData struct {
	Occupation  string
	Nationality string
	Born        string
	Died        string
	WPLink      string
}

// Store buckets lexicon.Entity values by name and merges new mentions into
// existing compatible entities, per spec §4.B.
type Store struct {
	mu      sync.Mutex
	buckets map[string][]*lexicon.Entity
	logger  *zap.Logger
}

// New constructs an empty Store. A nil logger is replaced with a no-op one,
// matching the teacher's nil-safe logger convention.
func New(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		buckets: make(map[string][]*lexicon.Entity),
		logger:  logger,
	}
}

// attributesCompatible reports whether e and c can describe the same
// subject: for every attribute in {wplink, born, died, nationality}, either
// side is empty or the values are equal.
func attributesCompatible(e, c *lexicon.Entity) bool {
	return compatible(e.WPLink, c.WPLink) &&
		compatible(e.Born, c.Born) &&
		compatible(e.Died, c.Died) &&
		compatible(e.Nationality, c.Nationality)
}

func compatible(a, b string) bool {
	return a == "" || b == "" || a == b
}

// mergeInto copies missing fields from e into c and concatenates
// occupations with "; ", deterministically ordered (c's occupation first).
func mergeInto(c, e *lexicon.Entity) {
	if c.WPLink == "" {
		c.WPLink = e.WPLink
	}
	if c.Born == "" {
		c.Born = e.Born
	}
	if c.Died == "" {
		c.Died = e.Died
	}
	if c.Nationality == "" {
		c.Nationality = e.Nationality
	}
	c.Occupation = concatOccupations(c.Occupation, e.Occupation)
}

func concatOccupations(existing, incoming string) string {
	existing = strings.TrimSpace(existing)
	incoming = strings.TrimSpace(incoming)
	switch {
	case existing == "" && incoming == "":
		return ""
	case existing == "":
		return incoming
	case incoming == "":
		return existing
	case existing == incoming:
		return existing
	default:
		for _, part := range strings.Split(existing, "; ") {
			if part == incoming {
				return existing
			}
		}
		return existing + "; " + incoming
	}
}

// Identify implements the identify(name, template_data?) -> Entity
// operation: look up name's bucket, build a candidate from templateData (or
// a bare Entity(name)), merge into the first compatible bucket entry, or
// append the candidate as a new entity.
func (s *Store) Identify(name string, templateData *TemplateData) *lexicon.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := newCandidate(name, templateData)

	bucket := s.buckets[name]
	for _, existing := range bucket {
		if attributesCompatible(candidate, existing) {
			mergeInto(existing, candidate)
			s.logger.Debug("entity merged",
				zap.String("name", name), zap.String("id", existing.ID))
			return existing
		}
	}

	s.buckets[name] = append(bucket, candidate)
	s.logger.Debug("entity created",
		zap.String("name", name), zap.String("id", candidate.ID))
	return candidate
}

func newCandidate(name string, templateData *TemplateData) *lexicon.Entity {
	e := &lexicon.Entity{ID: generateID(), Name: name}
	if templateData == nil {
		return e
	}
	e.Occupation = templateData.Occupation
	e.Nationality = templateData.Nationality
	e.Born = templateData.Born
	e.Died = templateData.Died
	e.WPLink = templateData.WPLink
	return e
}

func generateID() string {
	return "entity:" + uuid.New().String()[:8]
}

// Package template translates a wikitext template invocation into a
// structured LinkNormalization using per-template semantics, the way the
// teacher's entity matcher applies a declarative table of named rules
// instead of one big conditional.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nucleus/etymograph/pkg/ontology"
	"github.com/nucleus/etymograph/pkg/relation"
	"github.com/nucleus/etymograph/pkg/wikitext"
)

// ErrNotImplemented is returned by ToNormalization when no handler matches
// the template name; callers ignore the template rather than treat this
// as fatal.
var ErrNotImplemented = errors.New("template: no handler for name")

// PreprocessedTemplate is a template's parameters after renaming,
// whitelisting, and index-folding, ready for a LinkSemantics policy to
// consume.
type PreprocessedTemplate struct {
	// Fields holds non-indexed canonical scalar parameters (lang, term,
	// t, q, alt, unc, linkto, and any boolean relation-upgrade flags).
	Fields map[string]string
	// Targets holds per-index target dictionaries folded from indexed
	// parameters (term1/lang1/alt1, term2/lang2/alt2, ...), in index
	// order.
	Targets []map[string]string
}

// LinkSemantics converts a handler's default relation type and a
// preprocessed template into a LinkNormalization.
type LinkSemantics func(defaultRelation ontology.Type, pre PreprocessedTemplate) (relation.LinkNormalization, error)

// SpecificHandler binds one template name (plus aliases) to its
// positional-parameter layout, synonym/whitelist preprocessing rules, and
// LinkSemantics policy.
type SpecificHandler struct {
	Name            string
	Aliases         []string
	DefaultRelation ontology.Type
	// Positional assigns canonical field names to the template's
	// positional parameters ("1", "2", ...) in order.
	Positional []string
	// Synonyms renames alternate parameter spellings to their canonical
	// name before whitelisting.
	Synonyms map[string]string
	// Whitelist lists the non-indexed canonical field names kept after
	// preprocessing; anything else is dropped.
	Whitelist []string
	Semantics LinkSemantics
	// Render optionally renders a resolved template back into plain
	// text for embedding in prose; unused templates leave this nil.
	Render func(PreprocessedTemplate) string
}

// Registry dispatches a parsed template to its SpecificHandler by name or
// alias.
type Registry struct {
	byName map[string]*SpecificHandler
}

// NewRegistry builds a Registry from a handler list, indexing each by its
// name and every alias.
func NewRegistry(handlers []*SpecificHandler) *Registry {
	r := &Registry{byName: make(map[string]*SpecificHandler)}
	for _, h := range handlers {
		r.byName[h.Name] = h
		for _, a := range h.Aliases {
			r.byName[a] = h
		}
	}
	return r
}

// Lookup returns the handler bound to a template name, if any.
func (r *Registry) Lookup(name string) (*SpecificHandler, bool) {
	h, ok := r.byName[name]
	return h, ok
}

// ToNormalization translates a parsed template into a LinkNormalization.
// Fails with ErrNotImplemented if no handler matches template.Name.
func (r *Registry) ToNormalization(tpl *wikitext.Template) (relation.LinkNormalization, error) {
	h, ok := r.byName[tpl.Name]
	if !ok {
		return relation.LinkNormalization{}, fmt.Errorf("%w: %q", ErrNotImplemented, tpl.Name)
	}
	pre := h.preprocess(tpl)
	return h.Semantics(h.DefaultRelation, pre)
}

// RelationMapping returns, for every relation type a registered handler
// declares as its DefaultRelation, the set of template names (the handler's
// canonical name plus every alias) that denote it -- the same table the
// template handler's get_relation_mapping exposes, consumed by
// RelationAnnotator to recognize a relation by the prose name of the
// template that would otherwise have encoded it.
func (r *Registry) RelationMapping() map[ontology.Type][]string {
	seenHandler := make(map[*SpecificHandler]bool)
	byType := make(map[ontology.Type]map[string]bool)
	for _, h := range r.byName {
		if seenHandler[h] || h.DefaultRelation == "" {
			continue
		}
		seenHandler[h] = true
		if byType[h.DefaultRelation] == nil {
			byType[h.DefaultRelation] = make(map[string]bool)
		}
		byType[h.DefaultRelation][h.Name] = true
		for _, a := range h.Aliases {
			byType[h.DefaultRelation][a] = true
		}
	}
	out := make(map[ontology.Type][]string, len(byType))
	for t, names := range byType {
		list := make([]string, 0, len(names))
		for n := range names {
			list = append(list, n)
		}
		sort.Strings(list)
		out[t] = list
	}
	return out
}

var indexedField = regexp.MustCompile(`^([a-zA-Z]+)([0-9]+)$`)

// preprocess implements the Template Handler's four preprocessing steps:
// rename synonyms to canonical names, keep only whitelisted fields,
// plain-text-flatten non-link values (parameters already arrive as plain
// strings from the parser, so this is a no-op trim), and fold indexed
// parameters into per-index target dictionaries.
func (h *SpecificHandler) preprocess(tpl *wikitext.Template) PreprocessedTemplate {
	raw := make(map[string]string)

	for i, name := range h.Positional {
		if v, ok := tpl.Param(strconv.Itoa(i + 1)); ok {
			raw[name] = v
		}
	}
	for k, v := range tpl.Params {
		if _, err := strconv.Atoi(k); err == nil {
			continue // purely numeric key: already consumed above by position
		}
		canonical := k
		if renamed, ok := h.Synonyms[k]; ok {
			canonical = renamed
		}
		raw[canonical] = v
	}

	whitelist := make(map[string]bool, len(h.Whitelist))
	for _, w := range h.Whitelist {
		whitelist[w] = true
	}

	pre := PreprocessedTemplate{
		Fields: make(map[string]string),
	}
	indexed := make(map[int]map[string]string)
	var maxIndex int

	for k, v := range raw {
		v = strings.TrimSpace(v)
		if m := indexedField.FindStringSubmatch(k); m != nil {
			base, idx := m[1], atoiSafe(m[2])
			if indexed[idx] == nil {
				indexed[idx] = make(map[string]string)
			}
			indexed[idx][base] = v
			if idx > maxIndex {
				maxIndex = idx
			}
			continue
		}
		if whitelist[k] || len(h.Whitelist) == 0 {
			pre.Fields[k] = v
		}
	}

	for i := 1; i <= maxIndex; i++ {
		if t, ok := indexed[i]; ok {
			pre.Targets = append(pre.Targets, t)
		}
	}
	return pre
}

func atoiSafe(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// DeterminePOS looks up templatePOS in a fixed canonical-POS equivalence
// table; failing that, it applies heuristic regexes to the gloss text.
// Returns ("", false) if neither source yields a part of speech.
func DeterminePOS(templatePOS, gloss string) (string, bool) {
	if canonical, ok := posEquivalence[strings.ToLower(templatePOS)]; ok {
		return canonical, true
	}
	gloss = strings.TrimSpace(gloss)
	switch {
	case verbGlossPattern.MatchString(gloss):
		return "verb", true
	case nounGlossPattern.MatchString(gloss):
		return "noun", true
	case adverbGlossPattern.MatchString(gloss):
		return "adverb", true
	default:
		return "", false
	}
}

var posEquivalence = map[string]string{
	"n": "noun", "n.": "noun", "noun": "noun",
	"v": "verb", "v.": "verb", "verb": "verb", "vb": "verb",
	"adj": "adjective", "adj.": "adjective", "adjective": "adjective",
	"adv": "adverb", "adv.": "adverb", "adverb": "adverb",
}

var (
	verbGlossPattern   = regexp.MustCompile(`(?i)^to\s+\w`)
	nounGlossPattern   = regexp.MustCompile(`(?i)^(a|an|the)\s+\w`)
	adverbGlossPattern = regexp.MustCompile(`(?i)\w+ly$`)
)

package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/nucleus/etymograph/pkg/ontology"
	"github.com/nucleus/etymograph/pkg/relation"
	"github.com/nucleus/etymograph/pkg/template"
)

// Rule is one named chain->chain transform. Requires names earlier rules
// that must already have run, validated by SequenceRules before the
// engine ever touches a chain.
type Rule struct {
	Name     string
	Requires []string
	Apply    func(e *Engine, c Chain) Chain
}

// ErrDependencyOrder is returned by SequenceRules when a rule's Requires
// names a rule that does not appear earlier in the sequence.
type ErrDependencyOrder struct {
	Rule    string
	Missing string
}

func (e *ErrDependencyOrder) Error() string {
	return fmt.Sprintf("rules: %q requires %q earlier in the sequence", e.Rule, e.Missing)
}

// SequenceRules validates that every rule's declared dependencies appear
// earlier in the slice, returning the validated, ordered rule list.
func SequenceRules(rules []Rule) ([]Rule, error) {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		for _, dep := range r.Requires {
			if !seen[dep] {
				return nil, &ErrDependencyOrder{Rule: r.Name, Missing: dep}
			}
		}
		seen[r.Name] = true
	}
	return rules, nil
}

// Engine holds the rule catalog plus the reference data (known language
// names, relation phrase table, XY-of phrases) the annotator rules
// consult, and the per-rule application counters the spec requires.
type Engine struct {
	rules     []Rule
	languages map[string]bool
	denylist  map[string]bool
	relPhrases []relationPhrase
	xyPhrases []string
	templates *template.Registry
	counts    map[string]int
}

type relationPhrase struct {
	pattern *regexp.Regexp
	relType ontology.Type
}

// languageDenylist is the fixed set of capitalized common words excluded
// from language-name matching even when they coincide with a known code
// name.
var languageDenylist = map[string]bool{
	"the": true, "are": true, "sign": true, "isolate": true,
	"mixed": true, "not a family": true, "constructed": true, "substrate": true,
}

// NewEngine builds an Engine from the language names known to the
// pipeline's language mapper, the XY-of phrase list, and the Template
// Handler registry ApplyTemplateNormalization delegates to.
func NewEngine(languageNames []string, xyPhrases []string, templates *template.Registry) *Engine {
	e := &Engine{
		languages: make(map[string]bool, len(languageNames)),
		denylist:  languageDenylist,
		xyPhrases: xyPhrases,
		templates: templates,
		counts:    make(map[string]int),
	}
	for _, name := range languageNames {
		if len(name) > 2 {
			e.languages[name] = true
		}
	}
	e.relPhrases = append(templateRelationPhrases(templates), defaultRelationPhrases()...)
	rules, err := SequenceRules(DefaultRules())
	if err != nil {
		panic(err) // the catalog is a compile-time constant; a broken order is a programming error
	}
	e.rules = rules
	return e
}

func defaultRelationPhrases() []relationPhrase {
	table := []struct {
		pattern string
		relType ontology.Type
	}{
		{`(?i)shorten(ed|ing)`, ontology.SHORTENING},
		{`(?i)related to|see|compare`, ontology.RELATED},
		{`(?i)named after|named for`, ontology.EPONYM},
		{`(?i)(of|origin)\s+(uncertain|unknown|unclear)`, ontology.UNKNOWN},
		{`(?i)onomato\w*|imitat\w*`, ontology.ONOM},
		{`(?i)abbreviation`, ontology.ABBREV},
		{`(?i)derived`, ontology.ORIGIN}, // DERIVATION rewritten to ORIGIN: prose is rarely template-specific
	}
	out := make([]relationPhrase, 0, len(table))
	for _, t := range table {
		out = append(out, relationPhrase{pattern: regexp.MustCompile(t.pattern), relType: t.relType})
	}
	return out
}

// templateRelationPhrases derives the other half of the relation-phrase
// table from the Template Handler registry's relation-name mapping: each
// handler's DefaultRelation becomes a pattern matching its template name,
// every alias, or the relation type's own name, the way prose referring to
// a relation that a template could equally have encoded ("a borrowing from
// Latin") is recognized without the template ever appearing. DERIVATION is
// folded into ORIGIN: prose rarely distinguishes it from plain descent.
func templateRelationPhrases(templates *template.Registry) []relationPhrase {
	if templates == nil {
		return nil
	}
	mapping := templates.RelationMapping()
	types := make([]ontology.Type, 0, len(mapping))
	for t := range mapping {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	out := make([]relationPhrase, 0, len(types))
	for _, t := range types {
		words := append([]string(nil), mapping[t]...)
		words = append(words, string(t))
		parts := make([]string, len(words))
		for i, w := range words {
			parts[i] = regexp.QuoteMeta(w)
		}
		relType := t
		if relType == ontology.DERIVATION {
			relType = ontology.ORIGIN
		}
		pattern := regexp.MustCompile(`(?i)\b(` + strings.Join(parts, "|") + `)\b`)
		out = append(out, relationPhrase{pattern: pattern, relType: relType})
	}
	return out
}

// Apply runs the full rule catalog over chain in order, returning the
// final rewritten chain.
func (e *Engine) Apply(chain Chain) Chain {
	for _, r := range e.rules {
		before := chain
		chain = r.Apply(e, chain)
		if changed(before, chain) {
			e.counts[r.Name]++
		}
	}
	return chain
}

// changed reports whether a rule actually rewrote its chain: every rule
// builds a fresh output slice rather than mutating its input in place, so
// before still reflects the pre-application elements and a structural
// comparison tells a real rewrite from a no-op pass.
func changed(before, after Chain) bool {
	if len(before) != len(after) {
		return true
	}
	for i := range before {
		if !sameElement(before[i], after[i]) {
			return true
		}
	}
	return false
}

// sameElement reports whether two elements carry the same content. Pointer
// fields are compared by identity: a rule that didn't touch a position
// carries its Mention/Template/Link/Norm pointer through unchanged, while
// one that did always allocates a new Element value to replace it.
func sameElement(a, b Element) bool {
	return a.Kind == b.Kind &&
		a.Tag == b.Tag &&
		a.Value == b.Value &&
		a.Text == b.Text &&
		a.MentionText == b.MentionText &&
		a.RelType == b.RelType &&
		a.MatchedPhrase == b.MatchedPhrase &&
		a.WikiTitle == b.WikiTitle &&
		a.WikiLang == b.WikiLang &&
		a.Mention == b.Mention &&
		a.Template == b.Template &&
		a.Link == b.Link &&
		a.Norm == b.Norm
}

// Counts returns the number of chains each rule actually touched, keyed
// by rule name.
func (e *Engine) Counts() map[string]int {
	out := make(map[string]int, len(e.counts))
	for k, v := range e.counts {
		out[k] = v
	}
	return out
}

// rewriteTextElements re-scans every KindText element of c with find,
// splicing each non-overlapping match's replacement elements in place of
// the matched substring and preserving the surrounding text as new
// KindText elements. Non-text elements pass through untouched.
func rewriteTextElements(c Chain, find func(s string) []textMatch) Chain {
	out := make(Chain, 0, len(c))
	for _, el := range c {
		if el.Kind != KindText {
			out = append(out, el)
			continue
		}
		matches := find(el.Text)
		if len(matches) == 0 {
			out = append(out, el)
			continue
		}
		sort.Slice(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })
		cursor := 0
		for _, m := range matches {
			if m.Start < cursor {
				continue
			}
			if m.Start > cursor {
				if lead := strings.TrimSpace(el.Text[cursor:m.Start]); lead != "" {
					out = append(out, text(lead))
				}
			}
			out = append(out, m.Elems...)
			cursor = m.End
		}
		if cursor < len(el.Text) {
			if rest := strings.TrimSpace(el.Text[cursor:]); rest != "" {
				out = append(out, text(rest))
			}
		}
	}
	return out
}

type textMatch struct {
	Start, End int
	Elems      []Element
}

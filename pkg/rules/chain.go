// Package rules implements the Rule Engine: an ordered sequence of
// annotate/rewrite passes over a linearized markup chain that discovers
// mentions, compounds, "from X" chains, and eponyms in etymology prose.
package rules

import (
	"sort"
	"strings"

	"github.com/nucleus/etymograph/pkg/ontology"
	"github.com/nucleus/etymograph/pkg/relation"
	"github.com/nucleus/etymograph/pkg/wikitext"
)

// Kind discriminates one chain element's variant.
type Kind int

const (
	KindText Kind = iota
	KindMarkup
	KindAnnotation
	KindRelation
	KindWiki
	KindMentionMaybe
	KindGlossMaybe
	KindMention
	KindTemplate
	KindLink
	KindNormalization
)

// MentionData is the structured payload of a ("Mention", ...) element: a
// candidate lexeme reference plus the context a later rule combined with
// it (a language, a "literally" flag, or a trailing gloss).
type MentionData struct {
	Term      string
	Language  string
	HasLang   bool
	Literally bool
	Gloss     string
	HasGloss  bool
}

// Element is one position of the chain: a tagged variant. Which fields
// are meaningful depends on Kind; rules pattern-match on Kind first.
type Element struct {
	Kind Kind

	// Text holds the raw token text for KindText. Tag holds the markup
	// name ("I" or "B") for KindMarkup and the annotation tag for
	// KindAnnotation; Value holds the markup's "start"/"end" or the
	// annotation's scalar payload (e.g. the matched language name,
	// "maybe", the literal punctuation character, "+", "from").
	Tag   string
	Value string
	Text  string

	// MentionText holds the candidate surface form for KindMentionMaybe
	// before MentionRule resolves it into a MentionData.
	MentionText string

	RelType       ontology.Type
	MatchedPhrase string

	WikiTitle string
	WikiLang  string

	Mention *MentionData

	Template *wikitext.Template
	Link     *wikitext.WikiLink

	Norm *relation.LinkNormalization
}

// Chain is the ordered sequence the Rule Engine rewrites; each rule
// returns a new Chain rather than modifying its input.
type Chain []Element

func text(s string) Element   { return Element{Kind: KindText, Text: s} }
func markup(tag, value string) Element {
	return Element{Kind: KindMarkup, Tag: tag, Value: value}
}
func annotation(tag, value string) Element {
	return Element{Kind: KindAnnotation, Tag: tag, Value: value}
}

// Linearize converts a section's plain text plus its top-level parsed
// spans into the initial chain: interleaved trimmed text runs and
// structural elements, recursing into italic/bold/div content and
// dropping comments and other tags.
func Linearize(sectionText string, spans []*wikitext.Span) Chain {
	sorted := make([]*wikitext.Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return (sorted[i].End - sorted[i].Start) > (sorted[j].End - sorted[j].Start)
	})

	var chain Chain
	cursor := 0
	for _, sp := range sorted {
		if sp.Start < cursor {
			continue // overlaps a previously emitted, earlier-starting span
		}
		if sp.Start > cursor {
			emitTextRun(&chain, sectionText[cursor:sp.Start])
		}
		switch sp.Kind {
		case wikitext.KindTemplate:
			chain = append(chain, Element{Kind: KindTemplate, Template: sp.Template})
		case wikitext.KindWikiLink:
			chain = append(chain, Element{Kind: KindLink, Link: sp.Link})
		case wikitext.KindItalic:
			chain = append(chain, markup("I", "start"))
			chain = append(chain, linearizeChildren(sp)...)
			chain = append(chain, markup("I", "end"))
		case wikitext.KindBold:
			chain = append(chain, markup("B", "start"))
			chain = append(chain, linearizeChildren(sp)...)
			chain = append(chain, markup("B", "end"))
		case wikitext.KindTag:
			if sp.Tag != nil && sp.Tag.Name == "div" {
				chain = append(chain, linearizeChildren(sp)...)
			}
			// any other tag, and comments, drop entirely
		case wikitext.KindComment:
			// drop
		}
		cursor = sp.End
	}
	if cursor < len(sectionText) {
		emitTextRun(&chain, sectionText[cursor:])
	}
	return chain
}

func linearizeChildren(sp *wikitext.Span) Chain {
	if len(sp.Children) == 0 {
		var c Chain
		emitTextRun(&c, sp.Text)
		return c
	}
	children := make([]*wikitext.Span, len(sp.Children))
	copy(children, sp.Children)
	return Linearize(sp.Text, children)
}

func emitTextRun(chain *Chain, run string) {
	run = strings.TrimSpace(run)
	if run == "" {
		return
	}
	*chain = append(*chain, text(run))
}

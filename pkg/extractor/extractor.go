// Package extractor implements the Section Extractors: the handlers that
// turn one wiki section's parsed content into candidate Relation edges,
// anchored on a context lexeme. Baseline, link-section, descendants, and
// etymology-prose extraction all reduce to the same primitive —
// relate-a-resolved-target-to-the-context-lexeme — with the etymology
// extractor additionally driving the Rule Engine over linearized prose.
package extractor

import (
	"strconv"
	"sync/atomic"

	"github.com/nucleus/etymograph/pkg/lexicon"
	"github.com/nucleus/etymograph/pkg/ontology"
	"github.com/nucleus/etymograph/pkg/relation"
	"github.com/nucleus/etymograph/pkg/resolver"
	"github.com/nucleus/etymograph/pkg/rules"
	"github.com/nucleus/etymograph/pkg/template"
	"github.com/nucleus/etymograph/pkg/wikitext"
)

// Extractor holds the Node Resolver, Template Handler registry, and Rule
// Engine a worker needs to turn one entry's sections into Relations.
// Constructor-injected, never ambient, matching the pipeline-wide
// convention.
type Extractor struct {
	resolver  *resolver.Resolver
	templates *template.Registry
	engine    *rules.Engine
	phantoms  uint64
}

// New builds an Extractor. engine may be nil if the caller never invokes
// EtymologySectionExtractor (e.g. a pipeline stage that only runs the
// link/descendants extractors).
func New(res *resolver.Resolver, templates *template.Registry, engine *rules.Engine) *Extractor {
	return &Extractor{resolver: res, templates: templates, engine: engine}
}

// nextPhantom mints a stable-within-process Phantom for an unresolved
// target (a NoTarget target, or a normalization with no targets at all).
// A link or template target the Resolver refuses yields no Relation.
// Counter-based rather than content-based: two textually identical
// unknown origins in the same entry are still distinct unknowns.
func (x *Extractor) nextPhantom() lexicon.Node {
	n := atomic.AddUint64(&x.phantoms, 1)
	return resolver.Phantom("unk:" + strconv.FormatUint(n, 10))
}

// relateOne builds one Relation between ctx and resolved, oriented by
// ctxIsSource.
func relateOne(resolved, ctx lexicon.Node, ctxIsSource bool, attrs relation.Attributes) relation.Relation {
	if ctxIsSource {
		return relation.New(ctx, resolved, attrs)
	}
	return relation.New(resolved, ctx, attrs)
}

// Target is a non-nested template or inline wikilink, the two shapes
// RelateToContextLexeme accepts.
type Target struct {
	Template *wikitext.Template
	Link     *wikitext.WikiLink
}

// TemplateTarget wraps a template span as a Target.
func TemplateTarget(tpl *wikitext.Template) Target { return Target{Template: tpl} }

// LinkTarget wraps a wikilink span as a Target.
func LinkTarget(link *wikitext.WikiLink) Target { return Target{Link: link} }

// RelateToContextLexeme is the extractors' shared primitive: resolve
// target against ctx and emit the Relations it implies, oriented by
// ctxIsSource. An inline link produces at most one Relation of
// defaultType; a template delegates to its LinkNormalization and may
// produce several (one per normalization target — a compound's tuple
// target, for instance).
func (x *Extractor) RelateToContextLexeme(target Target, ctx lexicon.Node, ctxIsSource bool, defaultType ontology.Type) []relation.Relation {
	switch {
	case target.Link != nil:
		resolved, ok := x.resolver.ResolveLink(target.Link.Target, ctx)
		if !ok {
			return nil
		}
		return []relation.Relation{relateOne(resolved, ctx, ctxIsSource, relation.Attributes{Type: defaultType})}
	case target.Template != nil:
		norm, err := x.templateNormalization(target.Template)
		if err != nil {
			return nil // unrecognized handler: no relation, not fatal
		}
		return x.relateNormalization(norm, ctx, ctxIsSource)
	default:
		return nil
	}
}

// templateNormalization asks the Template Handler registry directly; the
// Rule Engine's ApplyTemplateNormalization rule does the same thing for
// templates that appear inline in Etymology prose, but a Baseline or
// Link-section template never goes through a chain at all.
func (x *Extractor) templateNormalization(tpl *wikitext.Template) (relation.LinkNormalization, error) {
	return x.templates.ToNormalization(tpl)
}

// relateNormalization resolves every target of norm and emits one
// Relation per target, oriented by ctxIsSource. A NoTarget target (the
// unk template's sentinel) resolves to a fresh Phantom instead of a
// Lexicon lookup.
func (x *Extractor) relateNormalization(norm relation.LinkNormalization, ctx lexicon.Node, ctxIsSource bool) []relation.Relation {
	if len(norm.Targets) == 0 {
		resolved := x.nextPhantom()
		return []relation.Relation{relateOne(resolved, ctx, ctxIsSource, attrsOf(norm))}
	}
	out := make([]relation.Relation, 0, len(norm.Targets))
	for _, t := range norm.Targets {
		var resolved lexicon.Node
		if t.NoTarget {
			resolved = x.nextPhantom()
		} else {
			node, ok := x.resolver.ResolveTemplate(t, ctx)
			if !ok {
				continue
			}
			resolved = node
		}
		out = append(out, relateOne(resolved, ctx, ctxIsSource, attrsOf(norm)))
	}
	return out
}

func attrsOf(norm relation.LinkNormalization) relation.Attributes {
	return relation.Attributes{Type: norm.Type, Text: norm.Text, Uncertain: norm.Uncertain}
}

// BaselineExtractor walks every non-nested template in a section and
// relates it to ctx. The context lexeme is the relation's source unless
// the section is an Etymology section, in which case it is the target
// (the template's own resolved referent is the more ancestral term).
func (x *Extractor) BaselineExtractor(templates []*wikitext.Template, ctx lexicon.Node, isEtymologySection bool) []relation.Relation {
	ctxIsSource := !isEtymologySection
	var out []relation.Relation
	for _, tpl := range templates {
		out = append(out, x.RelateToContextLexeme(TemplateTarget(tpl), ctx, ctxIsSource, ontology.RELATED)...)
	}
	return out
}

// LinkSectionExtractor handles Related Terms / Derived Terms sections:
// templates and wikilinks are related to ctx identically, ctx always the
// source (these sections are never Etymology sections).
func (x *Extractor) LinkSectionExtractor(templates []*wikitext.Template, links []*wikitext.WikiLink, ctx lexicon.Node) []relation.Relation {
	var out []relation.Relation
	for _, tpl := range templates {
		out = append(out, x.RelateToContextLexeme(TemplateTarget(tpl), ctx, true, ontology.RELATED)...)
	}
	for _, l := range links {
		out = append(out, x.RelateToContextLexeme(LinkTarget(l), ctx, true, ontology.RELATED)...)
	}
	return out
}

// DescendantsSectionExtractor walks a Descendants section's nested list.
// Each item's own templates relate to the current context (the section's
// own ctx at the top level, ctx always the source); an item whose templates
// emit exactly one relation hands that relation's target down as the context
// for its sublist, so a chain of descendants doesn't all anchor back on
// the original entry. An item with no template resets its sublist's
// context back to the outer one instead of propagating a stale target.
func (x *Extractor) DescendantsSectionExtractor(list *wikitext.List, ctx lexicon.Node) []relation.Relation {
	var out []relation.Relation
	if list != nil {
		x.walkDescendants(list.Items, ctx, &out)
	}
	return out
}

func (x *Extractor) walkDescendants(items []*wikitext.ListItem, ctx lexicon.Node, out *[]relation.Relation) {
	for _, item := range items {
		templates := templatesIn(item.Spans)
		subCtx := ctx
		if len(templates) > 0 {
			var rels []relation.Relation
			for _, tpl := range templates {
				rels = append(rels, x.RelateToContextLexeme(TemplateTarget(tpl), ctx, true, ontology.RELATED)...)
			}
			*out = append(*out, rels...)
			if len(rels) == 1 {
				subCtx = rels[0].Target
			}
		}
		if len(item.SubItems) > 0 {
			x.walkDescendants(item.SubItems, subCtx, out)
		}
	}
}

func templatesIn(spans []*wikitext.Span) []*wikitext.Template {
	var out []*wikitext.Template
	for _, sp := range spans {
		if sp.Kind == wikitext.KindTemplate && sp.Template != nil {
			out = append(out, sp.Template)
		}
	}
	return out
}

// EtymologySectionExtractor runs the Rule Engine over a linearized
// Etymology section and interprets the resulting chain of
// LinkNormalizations into Relations, tracking the running
// last-origin-source / from-chain-active / first-sentence-active state
// that lets "A from B, from C" unpack into A→B, B→C rather than A→B, A→C.
//
// Every normalization relates ctx (or, mid-chain, the previous
// normalization's own target) as its source to the resolved referent as
// its target: the word being described always points at what it was
// inherited from, borrowed from, composed of, or named after. While the
// chain state allows it, a normalization anchors on last_origin_source
// instead of ctx, continuing the unpacking; producing exactly one
// relation of a non-root ORIGIN-descendant type then advances
// last_origin_source to that relation's target for the next iteration.
func (x *Extractor) EtymologySectionExtractor(sectionText string, spans []*wikitext.Span, ctx lexicon.Node, onlyInFromChain bool) []relation.Relation {
	chain := rules.Linearize(sectionText, spans)
	chain = x.engine.Apply(chain)

	var out []relation.Relation
	var lastOriginSource lexicon.Node
	fromChainActive := !onlyInFromChain
	firstSentenceActive := true

	for _, el := range chain {
		switch {
		case el.Kind == rules.KindAnnotation && el.Tag == "From":
			fromChainActive = true
		case el.Kind == rules.KindAnnotation && el.Tag == "Punct" && el.Value == ".":
			lastOriginSource = nil
			firstSentenceActive = false
			if onlyInFromChain {
				fromChainActive = false
			}
		case el.Kind == rules.KindNormalization && el.Norm != nil:
			anchor := ctx
			if firstSentenceActive && fromChainActive && lastOriginSource != nil {
				anchor = lastOriginSource
			}

			rels := x.relateNormalization(*el.Norm, anchor, true)
			out = append(out, rels...)

			if len(rels) == 1 && el.Norm.Type.IsA(ontology.ORIGIN) && el.Norm.Type != ontology.ORIGIN {
				lastOriginSource = rels[0].Target
			}
		}
	}
	return out
}

package template

import (
	"strings"

	"github.com/nucleus/etymograph/pkg/ontology"
	"github.com/nucleus/etymograph/pkg/relation"
)

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "yes", "y", "true":
		return true
	default:
		return false
	}
}

func targetFromFields(fields map[string]string) relation.LinkTarget {
	return relation.LinkTarget{
		Term:      fields["term"],
		Language:  fields["lang"],
		Qualifier: fields["q"],
		Anchor:    fields["alt"],
	}
}

// TargetWithSourceLang: the first language parameter labels the source
// and is not used here; every other field describes one target.
func TargetWithSourceLang(def ontology.Type, pre PreprocessedTemplate) (relation.LinkNormalization, error) {
	target := relation.LinkTarget{
		Term:      pre.Fields["term"],
		Language:  pre.Fields["tlang"],
		Qualifier: pre.Fields["q"],
		Anchor:    pre.Fields["alt"],
	}
	return relation.LinkNormalization{
		Type:    def,
		Targets: []relation.LinkTarget{target},
		Text:    pre.Fields["t"],
	}, nil
}

// AllTargetParameters: every parameter describes one target.
func AllTargetParameters(def ontology.Type, pre PreprocessedTemplate) (relation.LinkNormalization, error) {
	return relation.LinkNormalization{
		Type:    def,
		Targets: []relation.LinkTarget{targetFromFields(pre.Fields)},
		Text:    pre.Fields["t"],
	}, nil
}

// MultipleTargets builds a semantics policy for templates whose indexed
// parameters describe several targets; the first parameter is the source
// language, and when withTargetLanguage is set, a second shared target
// language parameter ("tlang") defaults for every target that doesn't
// override it with its own "lang" field.
func MultipleTargets(withTargetLanguage bool) LinkSemantics {
	return func(def ontology.Type, pre PreprocessedTemplate) (relation.LinkNormalization, error) {
		sharedLang := pre.Fields["lang"]
		if withTargetLanguage {
			if tl, ok := pre.Fields["tlang"]; ok && tl != "" {
				sharedLang = tl
			}
		}
		targets := make([]relation.LinkTarget, 0, len(pre.Targets))
		for _, t := range pre.Targets {
			lang := sharedLang
			if l, ok := t["lang"]; ok && l != "" {
				lang = l
			}
			targets = append(targets, relation.LinkTarget{
				Term:      t["term"],
				Language:  lang,
				Qualifier: t["q"],
				Anchor:    t["alt"],
			})
		}
		return relation.LinkNormalization{Type: def, Targets: targets, Text: pre.Fields["t"]}, nil
	}
}

// descendantsUpgrades maps a boolean flag parameter to the relation type it
// selects, in priority order (later entries win ties when multiple flags
// are set, matching the template's own field order convention).
var descendantsUpgrades = []struct {
	Flag string
	Type ontology.Type
}{
	{"der", ontology.DERIVATION},
	{"sl", ontology.SEMANTIC_LOAN},
	{"cal", ontology.CALQUE},
	{"lbor", ontology.LEARNED_BORROWING},
	{"bor", ontology.BORROWING},
}

// DescendantsSemantics: relation type is upgraded by presence of boolean
// parameters (bor, lbor, cal, sl, der, ...); unc sets uncertain.
func DescendantsSemantics(def ontology.Type, pre PreprocessedTemplate) (relation.LinkNormalization, error) {
	typ := def
	for _, u := range descendantsUpgrades {
		if truthy(pre.Fields[u.Flag]) {
			typ = u.Type
		}
	}
	target := relation.LinkTarget{
		Term:     pre.Fields["term"],
		Language: pre.Fields["lang"],
		Anchor:   pre.Fields["alt"],
	}
	return relation.LinkNormalization{
		Type:      typ,
		Targets:   []relation.LinkTarget{target},
		Uncertain: truthy(pre.Fields["unc"]),
	}, nil
}

// PlainMultiLinks: ordered positional terms all share one language.
func PlainMultiLinks(def ontology.Type, pre PreprocessedTemplate) (relation.LinkNormalization, error) {
	lang := pre.Fields["lang"]
	targets := make([]relation.LinkTarget, 0, len(pre.Targets)+1)
	if term := pre.Fields["term"]; term != "" {
		targets = append(targets, relation.LinkTarget{Term: term, Language: lang})
	}
	for _, t := range pre.Targets {
		targets = append(targets, relation.LinkTarget{Term: t["term"], Language: lang})
	}
	return relation.LinkNormalization{Type: def, Targets: targets}, nil
}

// UnknownTarget: target is the sentinel NO_TARGET, yielding a Phantom at
// node resolution time.
func UnknownTarget(def ontology.Type, pre PreprocessedTemplate) (relation.LinkNormalization, error) {
	return relation.LinkNormalization{
		Type:      def,
		Targets:   []relation.LinkTarget{{NoTarget: true}},
		Uncertain: truthy(pre.Fields["unc"]),
	}, nil
}

// ArabicRoot: positional arguments concatenated with spaces as one term in
// language "ar".
func ArabicRoot(def ontology.Type, pre PreprocessedTemplate) (relation.LinkNormalization, error) {
	parts := make([]string, 0, len(pre.Targets)+1)
	if root, ok := pre.Fields["root"]; ok && root != "" {
		parts = append(parts, root)
	}
	for _, t := range pre.Targets {
		if v, ok := t["term"]; ok && v != "" {
			parts = append(parts, v)
		}
	}
	return relation.LinkNormalization{
		Type:    def,
		Targets: []relation.LinkTarget{{Term: strings.Join(parts, " "), Language: "ar"}},
	}, nil
}

// JapaneseLink: parameter linkto overrides term; the original term becomes
// the target's alt/anchor.
func JapaneseLink(def ontology.Type, pre PreprocessedTemplate) (relation.LinkNormalization, error) {
	term := pre.Fields["term"]
	anchor := ""
	if linkto, ok := pre.Fields["linkto"]; ok && linkto != "" {
		anchor = term
		term = linkto
	}
	return relation.LinkNormalization{
		Type: def,
		Targets: []relation.LinkTarget{{
			Term:     term,
			Language: pre.Fields["lang"],
			Anchor:   anchor,
		}},
	}, nil
}

// DefaultHandlers returns the standard template-name bindings, grounded on
// the common Wiktionary-style etymology templates the Rule Engine and
// Section Extractors are specified against.
func DefaultHandlers() []*SpecificHandler {
	return []*SpecificHandler{
		{
			Name:            "inh",
			Aliases:         []string{"inherited"},
			DefaultRelation: ontology.INHERITANCE,
			Positional:      []string{"lang", "tlang", "term", "alt", "t"},
			Whitelist:       []string{"lang", "tlang", "term", "alt", "t", "q"},
			Semantics:       TargetWithSourceLang,
		},
		{
			Name:            "der",
			Aliases:         []string{"derived"},
			DefaultRelation: ontology.DERIVATION,
			Positional:      []string{"lang", "tlang", "term", "alt", "t"},
			Whitelist:       []string{"lang", "tlang", "term", "alt", "t", "q"},
			Semantics:       TargetWithSourceLang,
		},
		{
			Name:            "bor",
			Aliases:         []string{"borrowed"},
			DefaultRelation: ontology.BORROWING,
			Positional:      []string{"lang", "tlang", "term", "alt", "t"},
			Whitelist:       []string{"lang", "tlang", "term", "alt", "t", "q"},
			Semantics:       TargetWithSourceLang,
		},
		{
			Name:            "lbor",
			Aliases:         []string{"learned borrowing"},
			DefaultRelation: ontology.LEARNED_BORROWING,
			Positional:      []string{"lang", "tlang", "term", "alt", "t"},
			Whitelist:       []string{"lang", "tlang", "term", "alt", "t", "q"},
			Semantics:       TargetWithSourceLang,
		},
		{
			Name:            "cal",
			Aliases:         []string{"calque"},
			DefaultRelation: ontology.CALQUE,
			Positional:      []string{"lang", "tlang", "term", "alt", "t"},
			Whitelist:       []string{"lang", "tlang", "term", "alt", "t", "q"},
			Semantics:       TargetWithSourceLang,
		},
		{
			Name:            "cog",
			Aliases:         []string{"cognate"},
			DefaultRelation: ontology.COGNATE,
			Positional:      []string{"lang", "term", "alt", "t"},
			Whitelist:       []string{"lang", "term", "alt", "t", "q"},
			Semantics:       AllTargetParameters,
		},
		{
			Name:            "desc",
			Aliases:         []string{"descendant"},
			DefaultRelation: ontology.INHERITANCE,
			Positional:      []string{"lang", "term", "alt"},
			Whitelist:       []string{"lang", "term", "alt", "bor", "lbor", "cal", "sl", "der", "unc"},
			Semantics:       DescendantsSemantics,
		},
		{
			Name:            "affix",
			Aliases:         []string{"af"},
			DefaultRelation: ontology.COMPOUND,
			Positional:      []string{"lang"},
			Whitelist:       []string{"lang"},
			Semantics:       MultipleTargets(false),
		},
		{
			Name:            "m",
			Aliases:         []string{"mention"},
			DefaultRelation: ontology.RELATED,
			Positional:      []string{"lang", "term", "alt", "t"},
			Whitelist:       []string{"lang", "term", "alt", "t"},
			Semantics:       PlainMultiLinks,
		},
		{
			Name:            "unk",
			Aliases:         []string{"unknown"},
			DefaultRelation: ontology.UNKNOWN,
			Whitelist:       []string{"unc"},
			Semantics:       UnknownTarget,
		},
		{
			Name:            "ar-root",
			DefaultRelation: ontology.ROOT,
			Positional:      []string{"root"},
			Whitelist:       []string{"root"},
			Semantics:       ArabicRoot,
		},
		{
			Name:            "ja-l",
			DefaultRelation: ontology.RELATED,
			Positional:      []string{"term"},
			Whitelist:       []string{"term", "linkto", "lang"},
			Semantics:       JapaneseLink,
		},
	}
}

package rules

import (
	"regexp"
	"sort"
	"strings"

	"github.com/nucleus/etymograph/pkg/ontology"
	"github.com/nucleus/etymograph/pkg/relation"
	"github.com/nucleus/etymograph/pkg/wikitext"
)

// DefaultRules returns the 21-entry catalog (24 individual rule functions,
// since the brackets/punct/from/plus group is one catalog line but four
// rules) in the fixed total order the spec requires.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "LanguageAnnotator", Apply: ruleLanguageAnnotator},
		{Name: "MaybeNameAnnotator", Apply: ruleMaybeNameAnnotator},
		{Name: "UncertainAnnotator", Apply: ruleUncertainAnnotator},
		{Name: "WikipediaLinkAnnotator", Apply: ruleWikipediaLinkAnnotator},
		{Name: "RelationAnnotator", Apply: ruleRelationAnnotator},
		{Name: "XYAnnotator", Apply: ruleXYAnnotator},
		{Name: "LiterallyAnnotator", Apply: ruleLiterallyAnnotator},
		{Name: "QuotesAnnotator", Apply: ruleQuotesAnnotator},
		{Name: "BracketsAnnotator", Apply: ruleBracketsAnnotator},
		{Name: "PunctAnnotator", Apply: rulePunctAnnotator},
		{Name: "FromAnnotator", Apply: ruleFromAnnotator},
		{Name: "PlusAnnotator", Apply: rulePlusAnnotator},
		{Name: "MaybeMentionAnnotator", Requires: []string{"WikipediaLinkAnnotator"}, Apply: ruleMaybeMentionAnnotator},
		{Name: "MaybeGlossAnnotator", Requires: []string{"BracketsAnnotator", "QuotesAnnotator"}, Apply: ruleMaybeGlossAnnotator},
		{Name: "ApplyTemplateNormalization", Apply: ruleApplyTemplateNormalization},
		{Name: "ApplyStringTokenization", Requires: []string{
			"LanguageAnnotator", "MaybeNameAnnotator", "UncertainAnnotator", "RelationAnnotator",
			"XYAnnotator", "LiterallyAnnotator", "QuotesAnnotator", "BracketsAnnotator",
			"PunctAnnotator", "FromAnnotator", "PlusAnnotator", "MaybeMentionAnnotator", "MaybeGlossAnnotator",
		}, Apply: ruleApplyStringTokenization},
		{Name: "MentionRule", Requires: []string{"MaybeMentionAnnotator", "LanguageAnnotator", "LiterallyAnnotator", "MaybeGlossAnnotator", "ApplyTemplateNormalization"}, Apply: ruleMentionRule},
		{Name: "CompoundRule", Requires: []string{"MentionRule", "PlusAnnotator"}, Apply: ruleCompoundRule},
		{Name: "FromRule", Requires: []string{"MentionRule", "FromAnnotator"}, Apply: ruleFromRule},
		{Name: "RelationRule", Requires: []string{"MentionRule", "RelationAnnotator", "XYAnnotator"}, Apply: ruleRelationRule},
		{Name: "NamedAfterRule", Requires: []string{"RelationRule", "WikipediaLinkAnnotator", "MaybeNameAnnotator", "PunctAnnotator"}, Apply: ruleNamedAfterRule},
		{Name: "EtylMentionRule", Requires: []string{"ApplyTemplateNormalization", "MentionRule", "RelationRule"}, Apply: ruleEtylMentionRule},
		{Name: "UncertainRule", Requires: []string{"UncertainAnnotator", "MentionRule", "CompoundRule", "FromRule", "RelationRule", "NamedAfterRule", "EtylMentionRule"}, Apply: ruleUncertainRule},
		{Name: "MentionFallback", Requires: []string{"MentionRule", "CompoundRule", "FromRule", "RelationRule", "NamedAfterRule", "EtylMentionRule", "UncertainRule"}, Apply: ruleMentionFallback},
	}
}

func buildWordRegex(words []string, caseInsensitive bool) *regexp.Regexp {
	sorted := append([]string(nil), words...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	parts := make([]string, len(sorted))
	for i, w := range sorted {
		parts[i] = regexp.QuoteMeta(w)
	}
	prefix := ""
	if caseInsensitive {
		prefix = "(?i)"
	}
	return regexp.MustCompile(prefix + `\b(` + strings.Join(parts, "|") + `)\b`)
}

// 1. LanguageAnnotator
func ruleLanguageAnnotator(e *Engine, c Chain) Chain {
	if len(e.languages) > 0 {
		names := make([]string, 0, len(e.languages))
		for n := range e.languages {
			names = append(names, n)
		}
		re := buildWordRegex(names, false)
		c = rewriteTextElements(c, func(s string) []textMatch {
			var out []textMatch
			for _, loc := range re.FindAllStringIndex(s, -1) {
				matched := s[loc[0]:loc[1]]
				if e.denylist[strings.ToLower(matched)] {
					continue
				}
				out = append(out, textMatch{Start: loc[0], End: loc[1], Elems: []Element{annotation("Language", matched)}})
			}
			return out
		})
	}
	out := make(Chain, 0, len(c))
	for _, el := range c {
		if el.Kind == KindLink && el.Link != nil && e.languages[el.Link.Display] && !e.denylist[strings.ToLower(el.Link.Display)] {
			out = append(out, annotation("Language", el.Link.Display))
			continue
		}
		out = append(out, el)
	}
	return out
}

var maybeNamePattern = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)\b`)

// 2. MaybeNameAnnotator
func ruleMaybeNameAnnotator(e *Engine, c Chain) Chain {
	return rewriteTextElements(c, func(s string) []textMatch {
		var out []textMatch
		for _, loc := range maybeNamePattern.FindAllStringIndex(s, -1) {
			out = append(out, textMatch{Start: loc[0], End: loc[1], Elems: []Element{annotation("Name?", s[loc[0]:loc[1]])}})
		}
		return out
	})
}

var uncertainPattern = regexp.MustCompile(`(?i)\b(maybe|possibly|probably|perhaps)\b`)

// 3. UncertainAnnotator
func ruleUncertainAnnotator(e *Engine, c Chain) Chain {
	return rewriteTextElements(c, func(s string) []textMatch {
		var out []textMatch
		for _, loc := range uncertainPattern.FindAllStringIndex(s, -1) {
			out = append(out, textMatch{Start: loc[0], End: loc[1], Elems: []Element{annotation("Uncertain", strings.ToLower(s[loc[0]:loc[1]]))}})
		}
		return out
	})
}

// 4. WikipediaLinkAnnotator
func ruleWikipediaLinkAnnotator(e *Engine, c Chain) Chain {
	out := make(Chain, 0, len(c))
	for _, el := range c {
		switch el.Kind {
		case KindTemplate:
			name := strings.ToLower(el.Template.Name)
			if name == "w" || name == "wikipedia" {
				title, ok := el.Template.Param("1")
				if !ok || title == "" {
					title, _ = el.Template.Param("title")
				}
				lang, _ := el.Template.Param("lang")
				out = append(out, Element{Kind: KindWiki, WikiTitle: title, WikiLang: lang})
				continue
			}
		case KindLink:
			target := el.Link.Target
			lower := strings.ToLower(target)
			if strings.HasPrefix(lower, "w:") || strings.HasPrefix(lower, "wikipedia:") {
				rest := target[strings.Index(target, ":")+1:]
				lang, title := "", rest
				if idx := strings.Index(rest, ":"); idx >= 0 && idx <= 3 {
					lang, title = rest[:idx], rest[idx+1:]
				}
				out = append(out, Element{Kind: KindWiki, WikiTitle: title, WikiLang: lang})
				continue
			}
		}
		out = append(out, el)
	}
	return out
}

// 5. RelationAnnotator
func ruleRelationAnnotator(e *Engine, c Chain) Chain {
	return rewriteTextElements(c, func(s string) []textMatch {
		var out []textMatch
		for _, rp := range e.relPhrases {
			for _, loc := range rp.pattern.FindAllStringIndex(s, -1) {
				out = append(out, textMatch{Start: loc[0], End: loc[1], Elems: []Element{{
					Kind: KindRelation, RelType: rp.relType, MatchedPhrase: s[loc[0]:loc[1]],
				}}})
			}
		}
		return out
	})
}

// 6. XYAnnotator
func ruleXYAnnotator(e *Engine, c Chain) Chain {
	if len(e.xyPhrases) == 0 {
		return c
	}
	re := buildWordRegex(e.xyPhrases, true)
	return rewriteTextElements(c, func(s string) []textMatch {
		var out []textMatch
		for _, loc := range re.FindAllStringIndex(s, -1) {
			out = append(out, textMatch{Start: loc[0], End: loc[1], Elems: []Element{annotation("XYOf", s[loc[0]:loc[1]])}})
		}
		return out
	})
}

var literallyPattern = regexp.MustCompile(`(?i)\bliterally\b`)

// 7. LiterallyAnnotator
func ruleLiterallyAnnotator(e *Engine, c Chain) Chain {
	return rewriteTextElements(c, func(s string) []textMatch {
		var out []textMatch
		for _, loc := range literallyPattern.FindAllStringIndex(s, -1) {
			out = append(out, textMatch{Start: loc[0], End: loc[1], Elems: []Element{annotation("Literally", "literally")}})
		}
		return out
	})
}

var quotePattern = regexp.MustCompile("\"([^\"]*)\"|“([^”]*)”|`([^`]+)`")

// 8. QuotesAnnotator
func ruleQuotesAnnotator(e *Engine, c Chain) Chain {
	return rewriteTextElements(c, func(s string) []textMatch {
		var out []textMatch
		for _, loc := range quotePattern.FindAllStringSubmatchIndex(s, -1) {
			inner := ""
			for g := 1; g*2 < len(loc); g++ {
				if loc[g*2] >= 0 {
					inner = s[loc[g*2]:loc[g*2+1]]
					break
				}
			}
			elems := []Element{annotation("Quote", "start")}
			if strings.TrimSpace(inner) != "" {
				elems = append(elems, text(inner))
			}
			elems = append(elems, annotation("Quote", "end"))
			out = append(out, textMatch{Start: loc[0], End: loc[1], Elems: elems})
		}
		return out
	})
}

var bracketPattern = regexp.MustCompile(`[()]`)

// 9. BracketsAnnotator
func ruleBracketsAnnotator(e *Engine, c Chain) Chain {
	return rewriteTextElements(c, func(s string) []textMatch {
		var out []textMatch
		for _, loc := range bracketPattern.FindAllStringIndex(s, -1) {
			value := "open"
			if s[loc[0]:loc[1]] == ")" {
				value = "close"
			}
			out = append(out, textMatch{Start: loc[0], End: loc[1], Elems: []Element{annotation("Bracket", value)}})
		}
		return out
	})
}

var punctPattern = regexp.MustCompile(`[.,;]`)

// 10. PunctAnnotator
func rulePunctAnnotator(e *Engine, c Chain) Chain {
	return rewriteTextElements(c, func(s string) []textMatch {
		var out []textMatch
		for _, loc := range punctPattern.FindAllStringIndex(s, -1) {
			out = append(out, textMatch{Start: loc[0], End: loc[1], Elems: []Element{annotation("Punct", s[loc[0]:loc[1]])}})
		}
		return out
	})
}

var fromPattern = regexp.MustCompile(`(?i)\bfrom\b`)

// 11. FromAnnotator
func ruleFromAnnotator(e *Engine, c Chain) Chain {
	return rewriteTextElements(c, func(s string) []textMatch {
		var out []textMatch
		for _, loc := range fromPattern.FindAllStringIndex(s, -1) {
			out = append(out, textMatch{Start: loc[0], End: loc[1], Elems: []Element{annotation("From", "from")}})
		}
		return out
	})
}

var plusPattern = regexp.MustCompile(`\+`)

// 12. PlusAnnotator
func rulePlusAnnotator(e *Engine, c Chain) Chain {
	return rewriteTextElements(c, func(s string) []textMatch {
		var out []textMatch
		for _, loc := range plusPattern.FindAllStringIndex(s, -1) {
			out = append(out, textMatch{Start: loc[0], End: loc[1], Elems: []Element{annotation("Plus", "+")}})
		}
		return out
	})
}

// linkDisplay returns a wikilink's rendered surface form: its display text
// if it has one (a piped link, "[[target|display]]"), its target otherwise.
func linkDisplay(l *wikitext.WikiLink) string {
	if l.Display != "" {
		return l.Display
	}
	return l.Target
}

// 13. MaybeMentionAnnotator
func ruleMaybeMentionAnnotator(e *Engine, c Chain) Chain {
	out := make(Chain, 0, len(c))
	i := 0
	for i < len(c) {
		el := c[i]
		switch {
		case el.Kind == KindLink:
			out = append(out, Element{Kind: KindMentionMaybe, MentionText: linkDisplay(el.Link)})
			i++
		case el.Kind == KindMarkup && el.Value == "start":
			tag := el.Tag
			depth := 1
			j := i + 1
			var inner []string
			for j < len(c) && depth > 0 {
				switch {
				case c[j].Kind == KindMarkup && c[j].Tag == tag:
					if c[j].Value == "start" {
						depth++
					} else {
						depth--
						if depth == 0 {
							break
						}
					}
				case c[j].Kind == KindText:
					inner = append(inner, c[j].Text)
				case c[j].Kind == KindLink:
					inner = append(inner, linkDisplay(c[j].Link))
				case c[j].Kind == KindMentionMaybe:
					inner = append(inner, c[j].MentionText)
				}
				j++
			}
			out = append(out, Element{Kind: KindMentionMaybe, MentionText: strings.Join(inner, " ")})
			i = j + 1
		default:
			out = append(out, el)
			i++
		}
	}
	return out
}

// 14. MaybeGlossAnnotator
func ruleMaybeGlossAnnotator(e *Engine, c Chain) Chain {
	out := make(Chain, 0, len(c))
	i := 0
	for i < len(c) {
		el := c[i]
		if el.Kind == KindAnnotation && el.Tag == "Bracket" && el.Value == "open" {
			depth := 1
			j := i + 1
			var inner []string
			for j < len(c) && depth > 0 {
				cur := c[j]
				switch {
				case cur.Kind == KindAnnotation && cur.Tag == "Bracket":
					if cur.Value == "open" {
						depth++
					} else {
						depth--
						if depth == 0 {
							j++
							continue
						}
					}
				case cur.Kind == KindAnnotation && cur.Tag == "Quote":
					// brackets wrapping quotes: strip both markers
				case cur.Kind == KindText:
					inner = append(inner, cur.Text)
				case cur.Kind == KindMentionMaybe:
					inner = append(inner, cur.MentionText)
				}
				j++
			}
			out = append(out, Element{Kind: KindGlossMaybe, Text: strings.Join(inner, " ")})
			i = j
			continue
		}
		if el.Kind == KindAnnotation && el.Tag == "Quote" && el.Value == "start" {
			j := i + 1
			var inner []string
			for j < len(c) && !(c[j].Kind == KindAnnotation && c[j].Tag == "Quote" && c[j].Value == "end") {
				if c[j].Kind == KindText {
					inner = append(inner, c[j].Text)
				}
				j++
			}
			out = append(out, Element{Kind: KindGlossMaybe, Text: strings.Join(inner, " ")})
			i = j + 1
			continue
		}
		out = append(out, el)
		i++
	}
	return out
}

// 15. ApplyTemplateNormalization
func ruleApplyTemplateNormalization(e *Engine, c Chain) Chain {
	if e.templates == nil {
		return c
	}
	out := make(Chain, 0, len(c))
	for _, el := range c {
		if el.Kind != KindTemplate {
			out = append(out, el)
			continue
		}
		norm, err := e.templates.ToNormalization(el.Template)
		if err != nil {
			out = append(out, el) // no handler: leave the template untouched, not fatal
			continue
		}
		out = append(out, Element{Kind: KindNormalization, Norm: &norm})
	}
	return out
}

// 16. ApplyStringTokenization
func ruleApplyStringTokenization(e *Engine, c Chain) Chain {
	out := make(Chain, 0, len(c))
	for _, el := range c {
		if el.Kind != KindText {
			out = append(out, el)
			continue
		}
		for _, tok := range strings.Fields(el.Text) {
			out = append(out, text(tok))
		}
	}
	return out
}

func isBoundary(el Element) bool {
	return el.Kind == KindAnnotation && (el.Tag == "Plus" || el.Tag == "Punct")
}

// 17. MentionRule
func ruleMentionRule(e *Engine, c Chain) Chain {
	out := make(Chain, len(c))
	copy(out, c)
	for i, el := range out {
		if el.Kind == KindNormalization && el.Norm != nil && el.Norm.Type == ontology.RELATED && len(el.Norm.Targets) == 1 {
			t := el.Norm.Targets[0]
			out[i] = Element{Kind: KindMention, Mention: &MentionData{Term: t.Term, Language: t.Language, HasLang: t.Language != ""}}
			continue
		}
		if el.Kind != KindMentionMaybe {
			continue
		}
		md := &MentionData{Term: el.MentionText}
		for j := i - 1; j >= 0 && j >= i-2; j-- {
			if isBoundary(out[j]) {
				break
			}
			if out[j].Kind == KindAnnotation && out[j].Tag == "Language" {
				md.Language, md.HasLang = out[j].Value, true
				break
			}
		}
		for j := i + 1; j < len(out) && j <= i+3; j++ {
			if isBoundary(out[j]) {
				break
			}
			if out[j].Kind == KindAnnotation && out[j].Tag == "Literally" {
				md.Literally = true
				break
			}
			if out[j].Kind == KindGlossMaybe {
				md.Gloss, md.HasGloss = out[j].Text, true
				break
			}
		}
		out[i] = Element{Kind: KindMention, Mention: md}
	}
	return out
}

// 18. CompoundRule
func ruleCompoundRule(e *Engine, c Chain) Chain {
	var out Chain
	i := 0
	for i < len(c) {
		if c[i].Kind != KindMention {
			out = append(out, c[i])
			i++
			continue
		}
		mentions := []MentionData{*c[i].Mention}
		j := i + 1
		for {
			plusIdx := -1
			for k := j; k < len(c) && k <= j+4; k++ {
				if c[k].Kind == KindAnnotation && c[k].Tag == "Plus" {
					plusIdx = k
					break
				}
				if c[k].Kind != KindText {
					break
				}
			}
			if plusIdx == -1 {
				break
			}
			mentionIdx := -1
			for k := plusIdx + 1; k < len(c) && k <= plusIdx+4; k++ {
				if c[k].Kind == KindMention {
					mentionIdx = k
					break
				}
				if c[k].Kind != KindText {
					break
				}
			}
			if mentionIdx == -1 {
				break
			}
			mentions = append(mentions, *c[mentionIdx].Mention)
			j = mentionIdx + 1
		}
		if len(mentions) < 2 {
			out = append(out, c[i])
			i++
			continue
		}
		targets := make([]relation.LinkTarget, 0, len(mentions))
		for _, md := range mentions {
			targets = append(targets, relation.LinkTarget{Term: md.Term, Language: md.Language})
		}
		out = append(out, Element{Kind: KindNormalization, Norm: &relation.LinkNormalization{
			Type: ontology.MORPHOLOGICAL, Targets: targets,
		}})
		i = j
	}
	return out
}

// 19. FromRule
func ruleFromRule(e *Engine, c Chain) Chain {
	out := make(Chain, len(c))
	copy(out, c)
	for i, el := range out {
		if !(el.Kind == KindAnnotation && el.Tag == "From") {
			continue
		}
		for j := i + 1; j < len(out) && j <= i+2; j++ {
			if out[j].Kind == KindAnnotation && out[j].Tag == "Punct" {
				break
			}
			if out[j].Kind == KindMention {
				md := out[j].Mention
				out[j] = Element{Kind: KindNormalization, Norm: &relation.LinkNormalization{
					Type: ontology.ORIGIN, Targets: []relation.LinkTarget{{Term: md.Term, Language: md.Language}},
				}}
				break
			}
			if out[j].Kind == KindNormalization && out[j].Norm.Type == ontology.RELATED {
				n := out[j].Norm.WithType(ontology.ORIGIN)
				out[j].Norm = &n
				break
			}
		}
	}
	return out
}

// 20. RelationRule
func ruleRelationRule(e *Engine, c Chain) Chain {
	out := make(Chain, len(c))
	copy(out, c)
	for i, el := range out {
		var relType ontology.Type
		var txt string
		switch {
		case el.Kind == KindRelation:
			relType = el.RelType
		case el.Kind == KindAnnotation && el.Tag == "XYOf":
			relType, txt = ontology.ORIGIN, el.Value
		default:
			continue
		}
		for j := i + 1; j < len(out) && j <= i+3; j++ {
			if out[j].Kind == KindMention {
				md := out[j].Mention
				out[j] = Element{Kind: KindNormalization, Norm: &relation.LinkNormalization{
					Type: relType, Text: txt, Targets: []relation.LinkTarget{{Term: md.Term, Language: md.Language}},
				}}
				break
			}
			if out[j].Kind == KindNormalization && out[j].Norm.Type == ontology.RELATED {
				n := out[j].Norm.WithType(relType)
				n.Text = txt
				out[j].Norm = &n
				break
			}
		}
	}
	return out
}

// 21. NamedAfterRule
func ruleNamedAfterRule(e *Engine, c Chain) Chain {
	out := make(Chain, len(c))
	copy(out, c)
	for i, el := range out {
		if !(el.Kind == KindRelation && el.RelType == ontology.EPONYM) {
			continue
		}
		for j := i + 1; j < len(out) && j <= i+8; j++ {
			if out[j].Kind == KindAnnotation && out[j].Tag == "Punct" && out[j].Value == "." {
				break
			}
			if out[j].Kind == KindWiki {
				out[j] = Element{Kind: KindNormalization, Norm: &relation.LinkNormalization{
					Type: ontology.EPONYM, Targets: []relation.LinkTarget{{EntityName: out[j].WikiTitle}},
				}}
				break
			}
			if out[j].Kind == KindAnnotation && out[j].Tag == "Name?" {
				out[j] = Element{Kind: KindNormalization, Norm: &relation.LinkNormalization{
					Type: ontology.EPONYM, Targets: []relation.LinkTarget{{EntityName: out[j].Value}},
				}}
				break
			}
		}
	}
	return out
}

// 22. EtylMentionRule
func ruleEtylMentionRule(e *Engine, c Chain) Chain {
	out := make(Chain, len(c))
	copy(out, c)
	for i, el := range out {
		if !(el.Kind == KindTemplate && strings.ToLower(el.Template.Name) == "etyl") {
			continue
		}
		lang, _ := el.Template.Param("1")
		for j := i + 1; j < len(out) && j <= i+3; j++ {
			if out[j].Kind == KindMention {
				md := out[j].Mention
				language := md.Language
				if language == "" {
					language = lang
				}
				out[j] = Element{Kind: KindNormalization, Norm: &relation.LinkNormalization{
					Type: ontology.ORIGIN, Targets: []relation.LinkTarget{{Term: md.Term, Language: language}},
				}}
				break
			}
			if out[j].Kind == KindNormalization && out[j].Norm.Type == ontology.RELATED {
				n := out[j].Norm.WithType(ontology.ORIGIN)
				if len(n.Targets) == 1 && n.Targets[0].Language == "" {
					n.Targets = []relation.LinkTarget{n.Targets[0]}
					n.Targets[0].Language = lang
				}
				out[j].Norm = &n
				break
			}
		}
	}
	return out
}

// 23. UncertainRule
func ruleUncertainRule(e *Engine, c Chain) Chain {
	out := make(Chain, len(c))
	copy(out, c)
	for i, el := range out {
		if !(el.Kind == KindAnnotation && el.Tag == "Uncertain") {
			continue
		}
		for j := i + 1; j < len(out) && j <= i+3; j++ {
			if out[j].Kind == KindNormalization {
				n := out[j].Norm.WithUncertain(true)
				out[j].Norm = &n
				break
			}
		}
	}
	return out
}

// 24. MentionFallback
func ruleMentionFallback(e *Engine, c Chain) Chain {
	out := make(Chain, len(c))
	copy(out, c)
	for i, el := range out {
		if el.Kind != KindMention {
			continue
		}
		out[i] = Element{Kind: KindNormalization, Norm: &relation.LinkNormalization{
			Type: ontology.RELATED,
			Targets: []relation.LinkTarget{{Term: el.Mention.Term, Language: el.Mention.Language}},
		}}
	}
	return out
}

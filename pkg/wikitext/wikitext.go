// Package wikitext describes the output contract of the low-level wikitext
// parser: a black box, consumed but never implemented here. The core only
// relies on span coordinates and structural recursion over the tree it
// produces.
package wikitext

// Kind discriminates the span variants the parser can produce.
type Kind int

const (
	KindTemplate Kind = iota
	KindWikiLink
	KindItalic
	KindBold
	KindTag
	KindComment
	KindSection
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindTemplate:
		return "Template"
	case KindWikiLink:
		return "WikiLink"
	case KindItalic:
		return "Italic"
	case KindBold:
		return "Bold"
	case KindTag:
		return "Tag"
	case KindComment:
		return "Comment"
	case KindSection:
		return "Section"
	case KindList:
		return "List"
	default:
		return "Unknown"
	}
}

// Span is one node of the parse tree. Start/End are byte offsets into the
// section's source text, used to find interleaved plain-text runs and to
// break ties between overlapping candidates ("earlier start wins, ties
// broken by longer span").
type Span struct {
	Kind     Kind
	Start    int
	End      int
	Text     string   // plain-text projection of this span's content
	Template *Template
	Link     *WikiLink
	Tag      *TagSpan
	Children []*Span // recursive content, populated for Italic/Bold/Tag/List/Section
}

// Template is a `{{name|...}}` invocation with structured parameters.
// Positional parameters are stored under their 1-based numeric string key
// ("1", "2", ...) as well as under Positional for convenient iteration.
type Template struct {
	Name       string
	Params     map[string]string
	Positional []string
}

// Param looks up a named or positional parameter, returning ("", false) if
// absent.
func (t *Template) Param(name string) (string, bool) {
	v, ok := t.Params[name]
	return v, ok
}

// WikiLink is a `[[target|display]]` or `[[target]]` link.
type WikiLink struct {
	Target  string
	Display string
}

// TagSpan is a generic HTML-like tag (`<div>...</div>`), kept only to
// support the `div` passthrough and drop-everything-else linearization
// rules.
type TagSpan struct {
	Name string
}

// ListItem is one entry of a (possibly nested) List span.
type ListItem struct {
	Depth    int
	Spans    []*Span
	SubItems []*ListItem
}

// List is the structural content of a KindList span: nested list items,
// as produced for Descendants sections.
type List struct {
	Items []*ListItem
}

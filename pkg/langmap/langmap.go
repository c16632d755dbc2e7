// Package langmap declares the Language Mapper contract consumed by the
// Node Resolver and Rule Engine, plus a small map-backed reference
// implementation good enough for tests and the demo entrypoint.
package langmap

import (
	"fmt"
	"strings"
)

// Mapper is the external language-code/name table. Production deployments
// back this with a real phylogenetic tree and diacritic-folding tables;
// the core only consumes the interface.
type Mapper interface {
	Contains(code string) bool
	Code2Name(code string) (string, error)
	Name2Code(name string, allowAmbiguity bool) ([]string, error)
	Code2Parent(code string) (string, bool)
	IsFamily(code string) bool
	Normalize(term string, code string) string
	Names() []string
}

// Static is a map-backed Mapper: exact, no fuzzy resolution, documented as
// a placeholder for production language-code tables.
type Static struct {
	codeToName   map[string]string
	nameToCode   map[string][]string
	codeToParent map[string]string
	families     map[string]bool
	substitution map[string]map[string]string // code -> (char -> replacement)
}

// Lang describes one entry for NewStatic: its code, display name, optional
// parent code (for etymology-only / dialectal codes), and whether it names
// a language family rather than a single language.
type Lang struct {
	Code     string
	Name     string
	Parent   string
	IsFamily bool
}

// NewStatic builds a Static mapper from a literal table.
func NewStatic(langs []Lang) *Static {
	s := &Static{
		codeToName:   make(map[string]string),
		nameToCode:   make(map[string][]string),
		codeToParent: make(map[string]string),
		families:     make(map[string]bool),
		substitution: make(map[string]map[string]string),
	}
	for _, l := range langs {
		s.codeToName[l.Code] = l.Name
		s.nameToCode[l.Name] = append(s.nameToCode[l.Name], l.Code)
		if l.Parent != "" {
			s.codeToParent[l.Code] = l.Parent
		}
		if l.IsFamily {
			s.families[l.Code] = true
		}
	}
	return s
}

// WithSubstitution registers per-language character substitutions used by
// Normalize (diacritic stripping and the like).
func (s *Static) WithSubstitution(code string, table map[string]string) *Static {
	s.substitution[code] = table
	return s
}

// Contains implements Mapper.
func (s *Static) Contains(code string) bool {
	_, ok := s.codeToName[code]
	return ok
}

// Code2Name implements Mapper.
func (s *Static) Code2Name(code string) (string, error) {
	name, ok := s.codeToName[code]
	if !ok {
		return "", fmt.Errorf("langmap: unknown code %q", code)
	}
	return name, nil
}

// Name2Code implements Mapper.
func (s *Static) Name2Code(name string, allowAmbiguity bool) ([]string, error) {
	codes, ok := s.nameToCode[name]
	if !ok {
		return nil, fmt.Errorf("langmap: unknown name %q", name)
	}
	if len(codes) > 1 && !allowAmbiguity {
		return nil, fmt.Errorf("langmap: ambiguous name %q", name)
	}
	return codes, nil
}

// Code2Parent implements Mapper.
func (s *Static) Code2Parent(code string) (string, bool) {
	p, ok := s.codeToParent[code]
	return p, ok
}

// IsFamily implements Mapper.
func (s *Static) IsFamily(code string) bool {
	return s.families[code]
}

// Normalize implements Mapper: trims whitespace, then applies the
// per-language substitution table, if any.
func (s *Static) Normalize(term string, code string) string {
	term = strings.TrimSpace(term)
	table, ok := s.substitution[code]
	if !ok {
		return term
	}
	for from, to := range table {
		term = strings.ReplaceAll(term, from, to)
	}
	return term
}

// Names implements Mapper.
func (s *Static) Names() []string {
	out := make([]string, 0, len(s.nameToCode))
	for name := range s.nameToCode {
		out = append(out, name)
	}
	return out
}

package lexicon

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrUnknownSlot is returned by AddFromEntry when the (term, language) slot
// was never declared multi-meaning by BuildFromIndex: the index is the
// source of truth for which slots exist.
var ErrUnknownSlot = errors.New("lexicon: unknown multi-meaning slot")

// IndexEntry is one row of the external dense index: a (term, language)
// pair annotated with how many senses (etymology sections) it has.
type IndexEntry struct {
	Term      string
	Language  string
	EtymCount int
}

// EntryInput is the subset of a parsed entry AddFromEntry needs to
// populate one sense of a multi-meaning slot.
type EntryInput struct {
	Term           string
	Language       string
	SenseIdx       int
	Glosses        []Gloss
	Pronunciations []string
	EtymologyText  string
	EtymID         string
}

type multiSlot struct {
	count   int
	lexemes map[int]Node
}

// Lexicon is the dense index of every (term, language, sense_idx) the
// system can refer to, with single- vs multi-meaning fast paths: a
// (term, language) pair with at most one sense is stored as a stub in a
// short per-term list (O(1) lookup without language, O(k) among
// cross-language homonyms); a term with multiple senses in some language
// is stored per (term, language) as a slot of sense-indexed lexemes.
type Lexicon struct {
	mu             sync.RWMutex
	singleMeanings map[string][]*SingleMeaningStub
	multiMeanings  map[string]map[string]*multiSlot
	noEntries      map[string][]*NoEntryLexeme
	logger         *zap.Logger
}

// New constructs an empty Lexicon. A nil logger is replaced with a no-op
// one.
func New(logger *zap.Logger) *Lexicon {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lexicon{
		singleMeanings: make(map[string][]*SingleMeaningStub),
		multiMeanings:  make(map[string]map[string]*multiSlot),
		noEntries:      make(map[string][]*NoEntryLexeme),
		logger:         logger,
	}
}

// BuildFromIndex populates single_meanings and multi_meanings from an
// iterable of (term, language, etym_count) rows. Idempotent per entry: a
// repeated (term, language) pair is ignored.
func (l *Lexicon) BuildFromIndex(entries []IndexEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range entries {
		if e.EtymCount <= 1 {
			if l.hasSingleMeaning(e.Term, e.Language) {
				continue
			}
			l.singleMeanings[e.Term] = append(l.singleMeanings[e.Term], &SingleMeaningStub{
				LexemeBase: LexemeBase{Term: e.Term, Language: e.Language},
			})
			continue
		}
		byLang, ok := l.multiMeanings[e.Term]
		if !ok {
			byLang = make(map[string]*multiSlot)
			l.multiMeanings[e.Term] = byLang
		}
		if _, exists := byLang[e.Language]; exists {
			continue
		}
		byLang[e.Language] = &multiSlot{count: e.EtymCount, lexemes: make(map[int]Node)}
	}
}

func (l *Lexicon) hasSingleMeaning(term, language string) bool {
	for _, s := range l.singleMeanings[term] {
		if s.Language == language {
			return true
		}
	}
	return false
}

// AddFromEntry inserts a parsed lexeme into an already-declared
// multi-meaning (term, language) slot. Fails with ErrUnknownSlot if the
// slot was not declared by BuildFromIndex.
func (l *Lexicon) AddFromEntry(entry EntryInput) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	byLang, ok := l.multiMeanings[entry.Term]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrUnknownSlot, entry.Term, entry.Language)
	}
	slot, ok := byLang[entry.Language]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrUnknownSlot, entry.Term, entry.Language)
	}

	slot.lexemes[entry.SenseIdx] = &EntryLexeme{
		LexemeBase:     LexemeBase{Term: entry.Term, Language: entry.Language, SenseIdx: entry.SenseIdx},
		Glosses:        entry.Glosses,
		Pronunciations: entry.Pronunciations,
		EtymologyText:  entry.EtymologyText,
		EtymID:         entry.EtymID,
	}
	return nil
}

// AddNoEntry appends a NoEntryLexeme for a (term, language) pair with no
// entry of its own in the dump. Existing entries are never mutated.
func (l *Lexicon) AddNoEntry(term, language string, glosses []Gloss) *NoEntryLexeme {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := &NoEntryLexeme{
		LexemeBase: LexemeBase{Term: term, Language: language},
		Glosses:    glosses,
	}
	l.noEntries[term] = append(l.noEntries[term], n)
	return n
}

// Get searches single_meanings, then multi_meanings, then no_entries for
// term, optionally narrowed by language and sense_idx. When sense_idx is
// given for a multi-meaning slot, an exact match is preferred; on mismatch
// the slot's full contents are returned instead of nothing.
func (l *Lexicon) Get(term string, language *string, senseIdx *int) []Node {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Node

	for _, s := range l.singleMeanings[term] {
		if language == nil || s.Language == *language {
			out = append(out, s)
		}
	}

	for lang, slot := range l.multiMeanings[term] {
		if language != nil && lang != *language {
			continue
		}
		out = append(out, slotLexemes(slot, senseIdx)...)
	}

	for _, n := range l.noEntries[term] {
		if language == nil || n.Language == *language {
			out = append(out, n)
		}
	}

	return out
}

func slotLexemes(slot *multiSlot, senseIdx *int) []Node {
	if senseIdx != nil {
		if lex, ok := slot.lexemes[*senseIdx]; ok {
			return []Node{lex}
		}
	}
	out := make([]Node, 0, len(slot.lexemes))
	for _, lex := range slot.lexemes {
		out = append(out, lex)
	}
	return out
}

// HasMultiSlot reports whether (term, language) was declared a
// multi-meaning slot by BuildFromIndex.
func (l *Lexicon) HasMultiSlot(term, language string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	byLang, ok := l.multiMeanings[term]
	if !ok {
		return false
	}
	_, ok = byLang[language]
	return ok
}

// SlotSenseCount returns the declared sense count for a multi-meaning slot,
// or (0, false) if no such slot exists.
func (l *Lexicon) SlotSenseCount(term, language string) (int, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	byLang, ok := l.multiMeanings[term]
	if !ok {
		return 0, false
	}
	slot, ok := byLang[language]
	if !ok {
		return 0, false
	}
	return slot.count, true
}

// All iterates every lexeme exactly once, in no particular order.
func (l *Lexicon) All() []Node {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Node
	for _, stubs := range l.singleMeanings {
		for _, s := range stubs {
			out = append(out, s)
		}
	}
	for _, byLang := range l.multiMeanings {
		for _, slot := range byLang {
			for _, lex := range slot.lexemes {
				out = append(out, lex)
			}
		}
	}
	for _, entries := range l.noEntries {
		for _, n := range entries {
			out = append(out, n)
		}
	}
	return out
}

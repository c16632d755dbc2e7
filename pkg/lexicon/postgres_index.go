package lexicon

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// IndexSource loads the external dense index of (term, language,
// etym_count) rows that seeds a Lexicon via BuildFromIndex. A real
// deployment backs this with the same corpus database the dump tokenizer
// populated; tests use an in-memory slice instead.
type IndexSource interface {
	LoadIndex(ctx context.Context) ([]IndexEntry, error)
}

// PostgresIndexSource reads the dense index from a Postgres table,
// following the teacher's database/sql + lib/pq idiom (ensureSchema at
// construction, context-scoped queries, no ORM).
type PostgresIndexSource struct {
	db *sql.DB
}

// NewPostgresIndexSource wraps an existing *sql.DB and ensures the index
// table exists.
func NewPostgresIndexSource(db *sql.DB) (*PostgresIndexSource, error) {
	if db == nil {
		return nil, fmt.Errorf("lexicon: db is required")
	}
	src := &PostgresIndexSource{db: db}
	if err := src.ensureSchema(); err != nil {
		return nil, fmt.Errorf("lexicon: ensure schema: %w", err)
	}
	return src, nil
}

func (s *PostgresIndexSource) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS lexeme_index (
  term text NOT NULL,
  language text NOT NULL,
  etym_count integer NOT NULL DEFAULT 1,
  PRIMARY KEY (term, language)
);
`
	_, err := s.db.Exec(ddl)
	return err
}

// LoadIndex reads every row of lexeme_index, ordered for deterministic
// test fixtures.
func (s *PostgresIndexSource) LoadIndex(ctx context.Context) ([]IndexEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT term, language, etym_count FROM lexeme_index ORDER BY term, language`)
	if err != nil {
		return nil, fmt.Errorf("lexicon: query index: %w", err)
	}
	defer rows.Close()

	var out []IndexEntry
	for rows.Next() {
		var e IndexEntry
		if err := rows.Scan(&e.Term, &e.Language, &e.EtymCount); err != nil {
			return nil, fmt.Errorf("lexicon: scan index row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// StaticIndexSource is an in-memory IndexSource, used by tests in place of
// a live database.
type StaticIndexSource struct {
	Entries []IndexEntry
}

// LoadIndex implements IndexSource.
func (s StaticIndexSource) LoadIndex(context.Context) ([]IndexEntry, error) {
	return s.Entries, nil
}

package sc4pac

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SearchIndex is an in-process SQLite-backed fuzzy index over a set of
// channels' combined contents, rebuilt from MetadataRepository.SearchTuples
// whenever the channel set changes. It trades SQLite's FTS5 virtual table
// for a plain LIKE-based scoring query: the corpus per search is a few
// thousand rows at most, so a table scan with separate indexes on name and
// grp is plenty, and it avoids requiring the FTS5 build tag from every consumer.
type SearchIndex struct {
	db *sql.DB
}

// NewSearchIndex opens a fresh in-memory SQLite database and creates the
// index's schema. The returned SearchIndex owns the connection; callers
// must Close it.
func NewSearchIndex() (*SearchIndex, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("searchindex: open: %w", err)
	}
	const schema = `
CREATE TABLE entries (
	grp     TEXT NOT NULL,
	name    TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	is_asset INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX idx_entries_name ON entries(name);
CREATE INDEX idx_entries_grp ON entries(grp);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("searchindex: create schema: %w", err)
	}
	return &SearchIndex{db: db}, nil
}

// Close releases the underlying SQLite connection.
func (s *SearchIndex) Close() error { return s.db.Close() }

// Rebuild replaces the index's contents with tuples, each a (group, name,
// summary, isAsset) row as produced by MetadataRepository.SearchTuples.
// isAsset is "1" or "0", matching the tuple's existing string encoding.
func (s *SearchIndex) Rebuild(ctx context.Context, tuples [][4]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("searchindex: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("searchindex: clear: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO entries (grp, name, summary, is_asset) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("searchindex: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tuples {
		isAsset := 0
		if t[3] == "1" {
			isAsset = 1
		}
		if _, err := stmt.ExecContext(ctx, t[0], t[1], t[2], isAsset); err != nil {
			return fmt.Errorf("searchindex: insert %s:%s: %w", t[0], t[1], err)
		}
	}
	return tx.Commit()
}

// SearchResult is one ranked match.
type SearchResult struct {
	Module  BareModule
	Summary string
	IsAsset bool
	Score   int
}

// Search ranks entries against query, dropping any whose score is below
// threshold, and returns at most limit results ordered by descending score
// then name. A zero threshold returns every
// row that matched at all (score > 0).
func (s *SearchIndex) Search(ctx context.Context, query string, threshold, limit int) ([]SearchResult, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	like := "%" + q + "%"

	const rankedQuery = `
SELECT grp, name, summary, is_asset,
	CASE
		WHEN lower(name) = ?1 THEN 100
		WHEN lower(grp || ':' || name) = ?1 THEN 95
		WHEN lower(name) LIKE ?2 || '%' THEN 80
		WHEN lower(name) LIKE ?3 THEN 60
		WHEN lower(summary) LIKE ?3 THEN 30
		ELSE 0
	END AS score
FROM entries
WHERE score > 0
ORDER BY score DESC, name ASC
LIMIT ?4
`
	rows, err := s.db.QueryContext(ctx, rankedQuery, q, q, like, limit)
	if err != nil {
		return nil, fmt.Errorf("searchindex: query: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var grp, name, summary string
		var isAsset int
		var score int
		if err := rows.Scan(&grp, &name, &summary, &isAsset, &score); err != nil {
			return nil, fmt.Errorf("searchindex: scan: %w", err)
		}
		if score < threshold {
			continue
		}
		out = append(out, SearchResult{
			Module:  BareModule{Group: grp, Name: name},
			Summary: summary,
			IsAsset: isAsset != 0,
			Score:   score,
		})
	}
	return out, rows.Err()
}

// RebuildFromRepositories collects SearchTuples from every repo and rebuilds
// the index in one pass, used whenever the configured channel set changes.
func (s *SearchIndex) RebuildFromRepositories(ctx context.Context, repos []*MetadataRepository) error {
	var tuples [][4]string
	for _, r := range repos {
		tuples = append(tuples, r.SearchTuples()...)
	}
	return s.Rebuild(ctx, tuples)
}

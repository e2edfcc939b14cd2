package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"
)

// keywordIndex is the lexical index over record content. It lives in an
// in-memory SQLite database: an FTS5 table for matching plus fts5vocab tables
// that expose the positional statistics (document frequency, per-document hit
// counts) the BM25 scorer consumes. A side table tracks per-document token
// lengths. The index is derived state; the store rebuilds it at open.
type keywordIndex struct {
	db     *sql.DB
	logger *slog.Logger
}

func newKeywordIndex(logger *slog.Logger) (*keywordIndex, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}
	// Every connection would be a distinct :memory: database.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE VIRTUAL TABLE mem_fts USING fts5(content, mem_id UNINDEXED);
	CREATE VIRTUAL TABLE mem_vocab USING fts5vocab('mem_fts', 'row');
	CREATE VIRTUAL TABLE mem_vocab_inst USING fts5vocab('mem_fts', 'instance');
	CREATE TABLE mem_docs (
		mem_id TEXT PRIMARY KEY,
		length INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index schema: %w", err)
	}
	return &keywordIndex{db: db, logger: logger}, nil
}

func (ix *keywordIndex) insert(ctx context.Context, id, content string) error {
	if _, err := ix.db.ExecContext(ctx,
		`INSERT INTO mem_fts (content, mem_id) VALUES (?, ?)`, content, id); err != nil {
		return err
	}
	_, err := ix.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO mem_docs (mem_id, length) VALUES (?, ?)`,
		id, len(Tokenize(content)))
	return err
}

func (ix *keywordIndex) delete(ctx context.Context, id string) error {
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM mem_fts WHERE mem_id = ?`, id); err != nil {
		return err
	}
	_, err := ix.db.ExecContext(ctx, `DELETE FROM mem_docs WHERE mem_id = ?`, id)
	return err
}

func (ix *keywordIndex) clear(ctx context.Context) error {
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM mem_fts`); err != nil {
		return err
	}
	_, err := ix.db.ExecContext(ctx, `DELETE FROM mem_docs`)
	return err
}

func (ix *keywordIndex) Close() error {
	return ix.db.Close()
}

// matchStats carries the structured positional statistics for one query: the
// corpus size and average document length, plus per-candidate token lengths,
// per-term document frequencies and per-term per-candidate hit counts.
type matchStats struct {
	corpusSize int
	avgDocLen  float64
	docLen     map[string]int            // mem_id -> token length
	docFreq    map[string]int            // term -> documents containing it
	termHits   map[string]map[string]int // term -> mem_id -> hits in doc
}

// search returns candidate record ids with the statistics needed to score
// them. Terms must already be tokenized. A MATCH syntax failure is treated as
// zero results, not an error.
func (ix *keywordIndex) search(ctx context.Context, terms []string) ([]string, *matchStats, error) {
	if len(terms) == 0 {
		return nil, nil, nil
	}

	stats := &matchStats{
		docLen:   make(map[string]int),
		docFreq:  make(map[string]int),
		termHits: make(map[string]map[string]int),
	}

	var totalLen sql.NullInt64
	if err := ix.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(length), 0) FROM mem_docs`).
		Scan(&stats.corpusSize, &totalLen); err != nil {
		return nil, nil, err
	}
	if stats.corpusSize == 0 {
		return nil, nil, nil
	}
	stats.avgDocLen = float64(totalLen.Int64) / float64(stats.corpusSize)
	if stats.avgDocLen == 0 {
		stats.avgDocLen = 1
	}

	candidates, err := ix.matchCandidates(ctx, terms)
	if err != nil {
		// Malformed match syntax: no results rather than a crash.
		ix.logger.Debug("keyword match query rejected", "error", err)
		return nil, nil, nil
	}
	if len(candidates) == 0 {
		return nil, nil, nil
	}
	candidateSet := make(map[string]bool, len(candidates))
	for _, id := range candidates {
		candidateSet[id] = true
	}

	for _, term := range terms {
		var df int
		err := ix.db.QueryRowContext(ctx,
			`SELECT doc FROM mem_vocab WHERE term = ?`, term).Scan(&df)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		stats.docFreq[term] = df

		rows, err := ix.db.QueryContext(ctx,
			`SELECT f.mem_id, COUNT(*)
			 FROM mem_vocab_inst v JOIN mem_fts f ON f.rowid = v.doc
			 WHERE v.term = ?
			 GROUP BY f.mem_id`, term)
		if err != nil {
			return nil, nil, err
		}
		hits := make(map[string]int)
		for rows.Next() {
			var id string
			var n int
			if err := rows.Scan(&id, &n); err != nil {
				rows.Close()
				return nil, nil, err
			}
			if candidateSet[id] {
				hits[id] = n
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, nil, err
		}
		rows.Close()
		stats.termHits[term] = hits
	}

	lenRows, err := ix.db.QueryContext(ctx, `SELECT mem_id, length FROM mem_docs`)
	if err != nil {
		return nil, nil, err
	}
	defer lenRows.Close()
	for lenRows.Next() {
		var id string
		var n int
		if err := lenRows.Scan(&id, &n); err != nil {
			return nil, nil, err
		}
		if candidateSet[id] {
			stats.docLen[id] = n
		}
	}
	if err := lenRows.Err(); err != nil {
		return nil, nil, err
	}

	return candidates, stats, nil
}

// matchCandidates runs an OR query over the quoted terms against the FTS
// table. Errors here almost always mean the generated MATCH expression upset
// the FTS5 parser; the caller maps them to an empty result set.
func (ix *keywordIndex) matchCandidates(ctx context.Context, terms []string) ([]string, error) {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	match := strings.Join(quoted, " OR ")

	rows, err := ix.db.QueryContext(ctx,
		`SELECT mem_id FROM mem_fts WHERE mem_fts MATCH ?`, match)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Package store provides the durable memory record store and its keyword
// index. Records live in a single JSON file rewritten atomically on save; the
// lexical index is derived state held in an in-memory SQLite FTS5 table and
// rebuilt from record content when the file is opened.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/embedding"
	"github.com/jdavis-cyber/lliam-ai-agent/internal/model"
)

// ErrNotOpen is returned when an operation is attempted before Open, or after
// Close. This is a programmer error, not an expected condition.
var ErrNotOpen = errors.New("store: not open")

const fileVersion = 1

// Store is a file-backed memory record store. It assumes a single logical
// writer; concurrent external callers must serialize mutations themselves.
type Store struct {
	path    string
	logger  *slog.Logger
	records map[string]*model.Memory
	index   *keywordIndex
	entropy *rand.Rand
	dirty   bool
	opened  bool
}

// storedMemory is the on-disk shape: the record plus its embedding as raw
// little-endian float32 bytes (base64 in JSON).
type storedMemory struct {
	model.Memory
	Embedding []byte `json:"embedding,omitempty"`
}

type fileFormat struct {
	Version int            `json:"version"`
	Records []storedMemory `json:"records"`
}

// Open loads the store file at path, or initializes an empty store when the
// file does not exist. A file that exists but cannot be read or parsed is an
// explicit error, never a silent empty store.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	s := &Store{
		path:    path,
		logger:  logger,
		records: make(map[string]*model.Memory),
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Debug("store file missing, starting empty", "path", path)
	case err != nil:
		return nil, fmt.Errorf("read store file: %w", err)
	default:
		var ff fileFormat
		if err := json.Unmarshal(data, &ff); err != nil {
			return nil, fmt.Errorf("parse store file %s: %w", path, err)
		}
		for i := range ff.Records {
			rec := ff.Records[i].Memory
			if len(ff.Records[i].Embedding) > 0 {
				vec, err := embedding.DecodeVector(ff.Records[i].Embedding)
				if err != nil {
					return nil, fmt.Errorf("record %s: %w", rec.ID, err)
				}
				rec.Embedding = vec
			}
			s.records[rec.ID] = &rec
		}
	}

	idx, err := newKeywordIndex(logger)
	if err != nil {
		return nil, fmt.Errorf("open keyword index: %w", err)
	}
	s.index = idx
	s.opened = true

	if err := s.RebuildIndex(ctx); err != nil {
		idx.Close()
		s.opened = false
		return nil, fmt.Errorf("index store content: %w", err)
	}
	return s, nil
}

func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// CreateParams holds parameters for creating a memory record.
type CreateParams struct {
	Content            string
	Category           model.Category
	SourceType         model.SourceType
	SourceSession      string
	SourceMessageIndex *int
	Confidence         float64 // 0 means default 1.0
	Tags               []string
	Embedding          []float32
	EmbeddingModel     string
}

// Create persists a new record and indexes its content. Returns the new id.
func (s *Store) Create(ctx context.Context, p CreateParams) (string, error) {
	if !s.opened {
		return "", ErrNotOpen
	}
	if p.Content == "" {
		return "", fmt.Errorf("store: content must not be empty")
	}

	category := p.Category
	if category == "" {
		category = model.CategoryOther
	}
	if !model.ValidCategories[category] {
		return "", fmt.Errorf("store: invalid category %q", category)
	}
	sourceType := p.SourceType
	if sourceType == "" {
		sourceType = model.SourceManual
	}
	if !model.ValidSourceTypes[sourceType] {
		return "", fmt.Errorf("store: invalid source type %q", sourceType)
	}
	confidence := p.Confidence
	if confidence == 0 {
		confidence = 1.0
	}
	if confidence < 0 || confidence > 1 {
		return "", fmt.Errorf("store: confidence %v out of range [0,1]", confidence)
	}

	now := time.Now().UnixMilli()
	rec := &model.Memory{
		ID:                 s.newID(),
		Category:           category,
		Content:            p.Content,
		SourceType:         sourceType,
		SourceSession:      p.SourceSession,
		SourceMessageIndex: p.SourceMessageIndex,
		Confidence:         confidence,
		Tags:               p.Tags,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if len(p.Embedding) > 0 {
		rec.Embedding = p.Embedding
		rec.EmbeddingModel = p.EmbeddingModel
		rec.EmbeddingDims = len(p.Embedding)
	}

	if err := s.index.insert(ctx, rec.ID, rec.Content); err != nil {
		return "", fmt.Errorf("index record: %w", err)
	}
	s.records[rec.ID] = rec
	s.dirty = true
	return rec.ID, nil
}

// Get returns the record with the given id, or nil when absent. Reading by id
// bumps the access count and last-accessed timestamp as a visible side effect.
func (s *Store) Get(ctx context.Context, id string) (*model.Memory, error) {
	if !s.opened {
		return nil, ErrNotOpen
	}
	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	rec.AccessCount++
	rec.LastAccessedAt = time.Now().UnixMilli()
	s.dirty = true
	out := *rec
	return &out, nil
}

// ListParams holds filters for listing records.
type ListParams struct {
	Category   model.Category
	SourceType model.SourceType
	SessionID  string
	Tag        string
	Limit      int // <= 0 means no limit
	Offset     int
}

// List returns records matching the filters, newest first.
func (s *Store) List(ctx context.Context, p ListParams) ([]model.Memory, error) {
	if !s.opened {
		return nil, ErrNotOpen
	}
	var out []model.Memory
	for _, rec := range s.records {
		if p.Category != "" && rec.Category != p.Category {
			continue
		}
		if p.SourceType != "" && rec.SourceType != p.SourceType {
			continue
		}
		if p.SessionID != "" && rec.SourceSession != p.SessionID {
			continue
		}
		if p.Tag != "" && !hasTag(rec.Tags, p.Tag) {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID > out[j].ID
	})
	if p.Offset > 0 {
		if p.Offset >= len(out) {
			return nil, nil
		}
		out = out[p.Offset:]
	}
	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, nil
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

// UpdateParams holds the partial update for a record. Nil fields are left
// untouched.
type UpdateParams struct {
	Content    *string
	Category   *model.Category
	Confidence *float64
	Tags       *[]string
}

// Update applies a partial update. Returns false when the id does not exist;
// reporting follows rows-affected semantics, absence is not an error. A
// content change rewrites the keyword index entry for the record; regenerating
// the embedding is the caller's job (see Engine.Update).
func (s *Store) Update(ctx context.Context, id string, p UpdateParams) (bool, error) {
	if !s.opened {
		return false, ErrNotOpen
	}
	rec, ok := s.records[id]
	if !ok {
		return false, nil
	}

	if p.Content != nil {
		if *p.Content == "" {
			return false, fmt.Errorf("store: content must not be empty")
		}
		if *p.Content != rec.Content {
			if err := s.index.delete(ctx, id); err != nil {
				return false, fmt.Errorf("reindex record: %w", err)
			}
			if err := s.index.insert(ctx, id, *p.Content); err != nil {
				return false, fmt.Errorf("reindex record: %w", err)
			}
			rec.Content = *p.Content
		}
	}
	if p.Category != nil {
		if !model.ValidCategories[*p.Category] {
			return false, fmt.Errorf("store: invalid category %q", *p.Category)
		}
		rec.Category = *p.Category
	}
	if p.Confidence != nil {
		if *p.Confidence < 0 || *p.Confidence > 1 {
			return false, fmt.Errorf("store: confidence %v out of range [0,1]", *p.Confidence)
		}
		rec.Confidence = *p.Confidence
	}
	if p.Tags != nil {
		rec.Tags = *p.Tags
	}

	rec.UpdatedAt = time.Now().UnixMilli()
	s.dirty = true
	return true, nil
}

// SetEmbedding replaces the stored vector for a record. A nil vector clears it.
func (s *Store) SetEmbedding(ctx context.Context, id string, vec []float32, modelName string) (bool, error) {
	if !s.opened {
		return false, ErrNotOpen
	}
	rec, ok := s.records[id]
	if !ok {
		return false, nil
	}
	rec.Embedding = vec
	rec.EmbeddingDims = len(vec)
	rec.EmbeddingModel = modelName
	if len(vec) == 0 {
		rec.EmbeddingModel = ""
	}
	rec.UpdatedAt = time.Now().UnixMilli()
	s.dirty = true
	return true, nil
}

// Delete removes a record and its index entry. Returns false when absent.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	if !s.opened {
		return false, ErrNotOpen
	}
	if _, ok := s.records[id]; !ok {
		return false, nil
	}
	if err := s.index.delete(ctx, id); err != nil {
		return false, fmt.Errorf("deindex record: %w", err)
	}
	delete(s.records, id)
	s.dirty = true
	return true, nil
}

// DeleteBySession removes every record whose source session matches. Returns
// the number of records removed.
func (s *Store) DeleteBySession(ctx context.Context, sessionID string) (int, error) {
	if !s.opened {
		return 0, ErrNotOpen
	}
	var ids []string
	for id, rec := range s.records {
		if rec.SourceSession == sessionID {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		if err := s.index.delete(ctx, id); err != nil {
			return 0, fmt.Errorf("deindex record: %w", err)
		}
		delete(s.records, id)
	}
	if len(ids) > 0 {
		s.dirty = true
	}
	return len(ids), nil
}

// Count returns the number of records, optionally restricted to a category.
func (s *Store) Count(ctx context.Context, category model.Category) (int, error) {
	if !s.opened {
		return 0, ErrNotOpen
	}
	if category == "" {
		return len(s.records), nil
	}
	n := 0
	for _, rec := range s.records {
		if rec.Category == category {
			n++
		}
	}
	return n, nil
}

// EmbeddingRow pairs a record id with its stored vector.
type EmbeddingRow struct {
	ID     string
	Vector []float32
}

// AllEmbeddings enumerates every record that has a stored vector.
func (s *Store) AllEmbeddings(ctx context.Context) ([]EmbeddingRow, error) {
	if !s.opened {
		return nil, ErrNotOpen
	}
	var rows []EmbeddingRow
	for id, rec := range s.records {
		if rec.HasEmbedding() {
			rows = append(rows, EmbeddingRow{ID: id, Vector: rec.Embedding})
		}
	}
	return rows, nil
}

// ByIDs returns the records for the given ids, preserving input order and
// silently skipping ids that no longer exist. No access bump; this is the
// hydration path for search results, not a read-by-id.
func (s *Store) ByIDs(ctx context.Context, ids []string) ([]model.Memory, error) {
	if !s.opened {
		return nil, ErrNotOpen
	}
	out := make([]model.Memory, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.records[id]; ok {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// RebuildIndex clears and regenerates the keyword index from current record
// content. Used at open and for recovery after index/record divergence.
func (s *Store) RebuildIndex(ctx context.Context) error {
	if !s.opened {
		return ErrNotOpen
	}
	if err := s.index.clear(ctx); err != nil {
		return err
	}
	for id, rec := range s.records {
		if err := s.index.insert(ctx, id, rec.Content); err != nil {
			return err
		}
	}
	return nil
}

// Save flushes the store to disk. The file is written to a temporary sibling
// and renamed over the target, so a crash mid-write leaves either the old or
// the new complete state on disk.
func (s *Store) Save() error {
	if !s.opened {
		return ErrNotOpen
	}
	ff := fileFormat{Version: fileVersion, Records: make([]storedMemory, 0, len(s.records))}
	for _, rec := range s.records {
		ff.Records = append(ff.Records, storedMemory{
			Memory:    *rec,
			Embedding: embedding.EncodeVector(rec.Embedding),
		})
	}
	sort.Slice(ff.Records, func(i, j int) bool { return ff.Records[i].ID < ff.Records[j].ID })

	data, err := json.Marshal(ff)
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".memory-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename store file: %w", err)
	}
	s.dirty = false
	return nil
}

// Dirty reports whether there are unsaved changes.
func (s *Store) Dirty() bool { return s.dirty }

// Path returns the on-disk location of the store file.
func (s *Store) Path() string { return s.path }

// Close flushes pending changes and releases the keyword index.
func (s *Store) Close() error {
	if !s.opened {
		return ErrNotOpen
	}
	if s.dirty {
		if err := s.Save(); err != nil {
			return err
		}
	}
	s.opened = false
	return s.index.Close()
}

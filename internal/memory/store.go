// Package memory persists user-saved clipboard snippets in SQLite and ranks
// search results by embedding similarity when an embedder is available,
// falling back to keyword matching when it is not.
package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"hotclip/internal/domain"
)

// Embedder turns text into a vector for similarity ranking. May be nil, in
// which case search degrades to keyword matching.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store implements ports.Memory on a single SQLite file.
type Store struct {
	db       *sql.DB
	embedder Embedder
}

const schema = `
CREATE TABLE IF NOT EXISTS memories (
	id         TEXT PRIMARY KEY,
	label      TEXT NOT NULL DEFAULT '',
	category   TEXT NOT NULL DEFAULT 'note',
	content    TEXT NOT NULL,
	embedding  TEXT,
	created_at TEXT NOT NULL
);
`

// Open creates or opens the store under dir. The directory is created if
// missing.
func Open(dir string, embedder Embedder) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create memory dir: %w", err)
	}

	dsn := filepath.Join(dir, "memories.db") +
		"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create memory schema: %w", err)
	}
	return &Store{db: db, embedder: embedder}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores one snippet and returns its id. Embedding failures degrade the
// record to keyword-only search rather than failing the save.
func (s *Store) Save(ctx context.Context, text, label, category string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("nothing to save")
	}
	if category == "" {
		category = "note"
	}

	var embeddingJSON sql.NullString
	if s.embedder != nil {
		if vec, err := s.embedder.Embed(ctx, text); err == nil && len(vec) > 0 {
			if raw, err := json.Marshal(vec); err == nil {
				embeddingJSON = sql.NullString{String: string(raw), Valid: true}
			}
		}
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (id, label, category, content, embedding, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, label, category, text, embeddingJSON, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert memory: %w", err)
	}
	return id, nil
}

// Search returns the best matches for query, at most limit. Ranking uses
// cosine similarity over stored embeddings when both the query embedding and
// record embeddings exist; records without embeddings compete via keyword
// score.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]domain.MemoryHit, error) {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil, nil
	}

	var queryVec []float32
	if s.embedder != nil {
		if vec, err := s.embedder.Embed(ctx, query); err == nil {
			queryVec = vec
		}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, label, category, content, embedding FROM memories`)
	if err != nil {
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}
	defer rows.Close()

	var hits []domain.MemoryHit
	for rows.Next() {
		var (
			id, label, category, content string
			embeddingJSON                sql.NullString
		)
		if err := rows.Scan(&id, &label, &category, &content, &embeddingJSON); err != nil {
			return nil, err
		}

		score := keywordScore(query, content, label)
		if queryVec != nil && embeddingJSON.Valid {
			var vec []float32
			if err := json.Unmarshal([]byte(embeddingJSON.String), &vec); err == nil {
				if sim := cosine(queryVec, vec); sim > score {
					score = sim
				}
			}
		}
		if score <= 0 {
			continue
		}
		hits = append(hits, domain.MemoryHit{ID: id, Text: content, Label: label, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete memory: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("no memory with id %s", id)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM memories`); err != nil {
		return fmt.Errorf("failed to clear memories: %w", err)
	}
	return nil
}

// keywordScore is the fraction of query terms present in the record. It keeps
// search usable when no embedder is configured.
func keywordScore(query, content, label string) float64 {
	haystack := strings.ToLower(content + " " + label)
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 0
	}
	matched := 0
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			matched++
		}
	}
	// Scale under 1.0 so an embedding match outranks keyword overlap.
	return 0.9 * float64(matched) / float64(len(terms))
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

package reply

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"inboxpilot/internal/llm"
)

const memorySchema = `
CREATE TABLE IF NOT EXISTS replies (
	id         TEXT PRIMARY KEY,
	tone       TEXT NOT NULL,
	reply      TEXT NOT NULL,
	sentiment  TEXT NOT NULL,
	urgency    TEXT NOT NULL,
	embedding  TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// StoredReply is a generated reply kept for similarity lookups.
type StoredReply struct {
	ID        string
	Tone      string
	Reply     string
	Sentiment string
	Urgency   string
}

// SimilarReply is a lookup hit with its cosine similarity score.
type SimilarReply struct {
	StoredReply
	Score float64
}

// Memory is a local vector store over generated replies: embeddings
// live in SQLite and similarity is computed in-process. Small N makes
// a remote vector index unnecessary.
type Memory struct {
	db    *sql.DB
	embed llm.Embedder
}

// NewMemory opens (and if needed creates) the reply store at path.
func NewMemory(path string, embed llm.Embedder) (*Memory, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open reply memory: %w", err)
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(memorySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create replies table: %w", err)
	}
	return &Memory{db: db, embed: embed}, nil
}

// Close releases the underlying database.
func (m *Memory) Close() error {
	return m.db.Close()
}

// Store embeds a reply and persists it.
func (m *Memory) Store(ctx context.Context, r StoredReply) error {
	if strings.TrimSpace(r.Reply) == "" {
		return fmt.Errorf("reply memory: empty reply")
	}

	vec, err := m.embed.Embed(ctx, r.Reply)
	if err != nil {
		return fmt.Errorf("reply memory: embed: %w", err)
	}
	encoded, err := json.Marshal(normalize(vec))
	if err != nil {
		return fmt.Errorf("reply memory: encode embedding: %w", err)
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err = m.db.ExecContext(ctx,
		`INSERT INTO replies (id, tone, reply, sentiment, urgency, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Tone, r.Reply, r.Sentiment, r.Urgency, string(encoded), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("reply memory: insert: %w", err)
	}
	return nil
}

// Similar returns the k stored replies closest to the query text,
// best match first.
func (m *Memory) Similar(ctx context.Context, query string, k int) ([]SimilarReply, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	queryVec, err := m.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reply memory: embed query: %w", err)
	}
	queryVec = normalize(queryVec)

	rows, err := m.db.QueryContext(ctx,
		`SELECT id, tone, reply, sentiment, urgency, embedding FROM replies`)
	if err != nil {
		return nil, fmt.Errorf("reply memory: query: %w", err)
	}
	defer rows.Close()

	var hits []SimilarReply
	for rows.Next() {
		var r StoredReply
		var encoded string
		if err := rows.Scan(&r.ID, &r.Tone, &r.Reply, &r.Sentiment, &r.Urgency, &encoded); err != nil {
			return nil, fmt.Errorf("reply memory: scan: %w", err)
		}
		var vec []float64
		if err := json.Unmarshal([]byte(encoded), &vec); err != nil {
			continue // skip rows with corrupt embeddings
		}
		hits = append(hits, SimilarReply{StoredReply: r, Score: Cosine(queryVec, vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reply memory: rows: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count reports how many replies are stored.
func (m *Memory) Count(ctx context.Context) (int, error) {
	var n int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM replies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("reply memory: count: %w", err)
	}
	return n, nil
}

// Cosine computes cosine similarity. Mismatched lengths compare the
// common prefix; zero vectors score 0.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// normalize scales a vector to unit length.
func normalize(vec []float64) []float64 {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}

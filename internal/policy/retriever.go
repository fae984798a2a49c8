package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NoMatch is returned to the agent when no chunk matches the query.
const NoMatch = "No relevant policy information was found."

// ToolDescription tells the agent when to use the retriever.
const ToolDescription = "Use this tool to answer any questions about official company policies, " +
	"rules, procedures, and benefits. It is the definitive source for topics " +
	"like paid time off (PTO), sick leave, work-from-home rules, " +
	"code of conduct, dress code, and HR regulations."

// Retriever finds the policy passages most relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (string, error)
}

// Chunk is one stored passage of a policy document.
type Chunk struct {
	Source  string
	Content string
}

type postgresRetriever struct {
	pool *pgxpool.Pool
	topK int
}

// NewPostgresRetriever ranks policy_chunks with Postgres full text search.
func NewPostgresRetriever(pool *pgxpool.Pool, topK int) Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &postgresRetriever{pool: pool, topK: topK}
}

func (r *postgresRetriever) Retrieve(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return NoMatch, nil
	}

	// Terms are OR'ed so a chunk only needs to share some words with the question.
	rows, err := r.pool.Query(ctx, `
		WITH q AS (
			SELECT replace(plainto_tsquery('english', $1)::text, '&', '|') AS terms
		)
		SELECT c.source, c.content
		FROM policy_chunks c, q
		WHERE q.terms <> '' AND c.tsv @@ q.terms::tsquery
		ORDER BY ts_rank(c.tsv, q.terms::tsquery) DESC, c.id
		LIMIT $2`, query, r.topK)
	if err != nil {
		return "", fmt.Errorf("search policy chunks: %w", err)
	}
	chunks, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Chunk])
	if err != nil {
		return "", fmt.Errorf("scan policy chunks: %w", err)
	}
	return Join(chunks), nil
}

// Join renders chunks for the agent, separated by blank lines.
func Join(chunks []Chunk) string {
	if len(chunks) == 0 {
		return NoMatch
	}
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, strings.TrimSpace(c.Content))
	}
	return strings.Join(parts, "\n\n")
}

// InsertChunks stores passages from source, replacing any previous ones.
func InsertChunks(ctx context.Context, pool *pgxpool.Pool, source string, contents []string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM policy_chunks WHERE source = $1`, source); err != nil {
		return fmt.Errorf("clear %s: %w", source, err)
	}
	batch := &pgx.Batch{}
	for _, c := range contents {
		batch.Queue(`INSERT INTO policy_chunks (source, content) VALUES ($1, $2)`, source, c)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert chunks for %s: %w", source, err)
	}
	return tx.Commit(ctx)
}

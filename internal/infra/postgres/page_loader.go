// Package postgres loads question pages directly from a Postgres question
// bank, for deployments that own the content store instead of calling the
// question API.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/source"
)

// PageLoader reads ordered question pages from the questions table.
// The options column holds whatever the content import produced, so rows go
// through the same normalization as API payloads; rows whose options cannot
// be recovered degrade to an empty option list rather than failing the page.
type PageLoader struct {
	pool *pgxpool.Pool
}

func NewPageLoader(pool *pgxpool.Pool) *PageLoader {
	return &PageLoader{pool: pool}
}

func (l *PageLoader) LoadPage(ctx context.Context, categoryID string, page, pageSize int) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, category_id, content_category, content, options, explanation, passage
		FROM questions
		WHERE category_id = $1
		ORDER BY position, id
		LIMIT $2 OFFSET $3`,
		categoryID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q          domain.Question
			rawOptions []byte
		)
		if err := rows.Scan(&q.ID, &q.Category.ID, &q.Category.ContentCategory, &q.Content, &rawOptions, &q.Explanation, &q.Passage); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if options, err := source.NormalizeOptions(rawOptions); err == nil {
			q.Options = options
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	return questions, nil
}

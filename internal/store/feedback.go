package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type feedbackRepo struct {
	db *sql.DB
}

func (r *feedbackRepo) Save(ctx context.Context, body []byte) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feedback_documents (id, created_at, body) VALUES (?, ?, ?)`,
		id, time.Now().UTC(), string(body),
	)
	if err != nil {
		return "", fmt.Errorf("save feedback: %w", err)
	}
	return id, nil
}

func (r *feedbackRepo) Get(ctx context.Context, id string) (*FeedbackDocument, error) {
	var (
		doc  FeedbackDocument
		body string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, created_at, body FROM feedback_documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.CreatedAt, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get feedback %s: %w", id, err)
	}
	doc.Body = []byte(body)
	return &doc, nil
}

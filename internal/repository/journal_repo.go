package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"clairon-backend/internal/models"
)

type JournalRepo struct {
	pool *pgxpool.Pool
}

func NewJournalRepo(pool *pgxpool.Pool) *JournalRepo {
	return &JournalRepo{pool: pool}
}

// Create inserts the entry and fills in its generated id and created_at.
func (r *JournalRepo) Create(ctx context.Context, e *models.JournalEntry) error {
	e.ID = uuid.New()

	query := `INSERT INTO journal_entries (id, user_id, text)
		VALUES ($1, $2, $3) RETURNING created_at`

	return r.pool.QueryRow(ctx, query, e.ID, e.UserID, e.Text).Scan(&e.CreatedAt)
}

// ListByUser returns the user's entries, newest first.
func (r *JournalRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.JournalEntry, error) {
	query := `SELECT id, user_id, text, created_at
		FROM journal_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		var e models.JournalEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Text, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

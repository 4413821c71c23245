package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/harmonia-ir/intel-engine/pkg/database"
	"github.com/harmonia-ir/intel-engine/pkg/models"
)

// UserQueryRepository persists the question/answer audit trail.
type UserQueryRepository interface {
	Create(ctx context.Context, uq *models.UserQuery) error
	ListRecent(ctx context.Context, limit int) ([]*models.UserQuery, error)
}

type userQueryRepository struct {
	db *database.DB
}

// NewUserQueryRepository creates a new UserQueryRepository.
func NewUserQueryRepository(db *database.DB) UserQueryRepository {
	return &userQueryRepository{db: db}
}

var _ UserQueryRepository = (*userQueryRepository)(nil)

func (r *userQueryRepository) Create(ctx context.Context, uq *models.UserQuery) error {
	if uq.CreatedAt.IsZero() {
		uq.CreatedAt = time.Now()
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO user_queries (question, answer, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`,
		uq.Question, uq.Answer, uq.CreatedAt,
	).Scan(&uq.ID)
	if err != nil {
		return fmt.Errorf("failed to create user query: %w", err)
	}

	return nil
}

func (r *userQueryRepository) ListRecent(ctx context.Context, limit int) ([]*models.UserQuery, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, question, answer, created_at
		FROM user_queries
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list user queries: %w", err)
	}
	defer rows.Close()

	queries := make([]*models.UserQuery, 0)
	for rows.Next() {
		var uq models.UserQuery
		if err := rows.Scan(&uq.ID, &uq.Question, &uq.Answer, &uq.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user query: %w", err)
		}
		queries = append(queries, &uq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user queries: %w", err)
	}

	return queries, nil
}

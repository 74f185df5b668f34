package repository

import (
	"context"
	"fmt"

	"community-service/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CommentRepository interface {
	ListByPostIDs(ctx context.Context, postIDs []uuid.UUID) ([]models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// ListByPostIDs returns the comments of the given posts, oldest first.
func (r *commentRepository) ListByPostIDs(ctx context.Context, postIDs []uuid.UUID) ([]models.Comment, error) {
	postIDs = Distinct(postIDs)
	if len(postIDs) == 0 {
		return []models.Comment{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+commentColumns+`
		FROM comments
		WHERE post_id IN (?)
		ORDER BY created_at ASC, id ASC
	`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	return comments, nil
}

// Create inserts a new comment into the database
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + commentColumns

	err := r.db.QueryRowxContext(ctx, query,
		comment.ID,
		comment.PostID,
		comment.UserID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	).StructScan(comment)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

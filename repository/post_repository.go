package repository

import (
	"context"
	"fmt"

	"community-service/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PostRepository interface {
	ListRecent(ctx context.Context) ([]models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	DeleteOwned(ctx context.Context, postID, userID uuid.UUID) (int64, error)
}

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// ListRecent returns every post, newest first.
func (r *postRepository) ListRecent(ctx context.Context) ([]models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		ORDER BY created_at DESC, id DESC
	`

	var posts []models.Post
	if err := r.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

// Create inserts the post and reads back the stored row.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, user_id, content, image_url, like_count, comment_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + postColumns

	err := r.db.QueryRowxContext(ctx, query,
		post.ID,
		post.UserID,
		post.Content,
		post.ImageURL,
		post.LikeCount,
		post.CommentCount,
		post.CreatedAt,
		post.UpdatedAt,
	).StructScan(post)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

// DeleteOwned deletes the post only if userID authored it. Ownership is
// part of the predicate, so a foreign post simply matches zero rows.
func (r *postRepository) DeleteOwned(ctx context.Context, postID, userID uuid.UUID) (int64, error) {
	query := `DELETE FROM posts WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

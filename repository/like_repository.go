package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"community-service/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrReactionConflict means another request created the viewer's like
// between the lookup and the insert. No row was written.
var ErrReactionConflict = errors.New("reaction changed concurrently")

type LikeRepository interface {
	ListByPostIDs(ctx context.Context, postIDs []uuid.UUID) ([]models.Like, error)
	Toggle(ctx context.Context, postID, userID uuid.UUID, reaction models.ReactionType) (models.ToggleAction, error)
}

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

// ListByPostIDs returns every like on the given posts.
func (r *likeRepository) ListByPostIDs(ctx context.Context, postIDs []uuid.UUID) ([]models.Like, error) {
	postIDs = Distinct(postIDs)
	if len(postIDs) == 0 {
		return []models.Like{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+likeColumns+`
		FROM likes
		WHERE post_id IN (?)
		ORDER BY created_at ASC, id ASC
	`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var likes []models.Like
	if err := r.db.SelectContext(ctx, &likes, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get likes: %w", err)
	}

	return likes, nil
}

// Toggle applies a reaction request for (postID, userID) in one
// transaction. The viewer's row is locked while the action is decided.
func (r *likeRepository) Toggle(ctx context.Context, postID, userID uuid.UUID, reaction models.ReactionType) (models.ToggleAction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := r.lockExisting(ctx, tx, postID, userID)
	if err != nil {
		return 0, err
	}

	action := models.DecideToggle(existing, reaction)
	switch action {
	case models.ToggleInsert:
		err = r.insert(ctx, tx, postID, userID, reaction)
	case models.ToggleDelete:
		_, err = tx.ExecContext(ctx, `DELETE FROM likes WHERE id = $1`, existing.ID)
		if err != nil {
			err = fmt.Errorf("failed to delete like: %w", err)
		}
	case models.ToggleUpdate:
		_, err = tx.ExecContext(ctx, `UPDATE likes SET type = $1 WHERE id = $2`, reaction, existing.ID)
		if err != nil {
			err = fmt.Errorf("failed to update like: %w", err)
		}
	}
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit reaction: %w", err)
	}

	return action, nil
}

func (r *likeRepository) lockExisting(ctx context.Context, tx *sqlx.Tx, postID, userID uuid.UUID) (*models.Like, error) {
	query := `
		SELECT ` + likeColumns + `
		FROM likes
		WHERE post_id = $1 AND user_id = $2
		FOR UPDATE
	`

	var like models.Like
	err := tx.GetContext(ctx, &like, query, postID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get like: %w", err)
	}

	return &like, nil
}

func (r *likeRepository) insert(ctx context.Context, tx *sqlx.Tx, postID, userID uuid.UUID, reaction models.ReactionType) error {
	query := `
		INSERT INTO likes (id, post_id, user_id, type, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`

	result, err := tx.ExecContext(ctx, query, uuid.New(), postID, userID, reaction, time.Now())
	if err != nil {
		return fmt.Errorf("failed to create like: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrReactionConflict
	}

	return nil
}

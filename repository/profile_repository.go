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

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error)
	ListByName(ctx context.Context) ([]models.Profile, error)
	Update(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) (*models.Profile, error)
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// GetByIDs fetches the profiles whose id is in ids. Unknown ids are skipped.
func (r *profileRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error) {
	ids = Distinct(ids)
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+profileColumns+` FROM profiles WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}

	return profiles, nil
}

// ListByName returns every profile ordered by display name, unnamed last.
func (r *profileRepository) ListByName(ctx context.Context) ([]models.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		ORDER BY full_name ASC NULLS LAST, id ASC
	`

	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	return profiles, nil
}

// Update overwrites the editable fields. A nil AvatarURL keeps the current avatar.
func (r *profileRepository) Update(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET full_name = $1, region = $2, farm_type = $3,
		    avatar_url = COALESCE($4, avatar_url), updated_at = $5
		WHERE id = $6
		RETURNING ` + profileColumns

	var profile models.Profile
	err := r.db.QueryRowxContext(ctx, query,
		update.FullName,
		update.Region,
		update.FarmType,
		update.AvatarURL,
		time.Now(),
		id,
	).StructScan(&profile)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &profile, nil
}

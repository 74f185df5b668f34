package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile is a member's public identity record.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FullName  *string   `json:"full_name" db:"full_name"`
	AvatarURL *string   `json:"avatar_url" db:"avatar_url"`
	Region    *string   `json:"region" db:"region"`
	FarmType  *string   `json:"farm_type" db:"farm_type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Matches reports whether term occurs, case-insensitively, in the full
// name, region or farm type. A blank term matches every profile.
func (p Profile) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range []*string{p.FullName, p.Region, p.FarmType} {
		if field != nil && strings.Contains(strings.ToLower(*field), term) {
			return true
		}
	}
	return false
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	FullName  *string `json:"full_name"`
	Region    *string `json:"region"`
	FarmType  *string `json:"farm_type"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

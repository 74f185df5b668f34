package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a feed entry. Profile, Likes and Comments are filled in by the
// feed aggregator and are never read from the posts table.
type Post struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Content      string    `json:"content" db:"content"`
	ImageURL     *string   `json:"image_url,omitempty" db:"image_url"`
	LikeCount    int32     `json:"like_count" db:"like_count"`
	CommentCount int32     `json:"comment_count" db:"comment_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Profile  *Profile  `json:"profile,omitempty" db:"-"`
	Likes    []Like    `json:"likes" db:"-"`
	Comments []Comment `json:"comments" db:"-"`
}

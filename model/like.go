package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReactionType is the kind of endorsement a like carries.
type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionHaha  ReactionType = "haha"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
)

var ErrInvalidReaction = errors.New("invalid reaction type")

// ReactionTypes lists every accepted reaction in display order.
var ReactionTypes = []ReactionType{
	ReactionLike, ReactionLove, ReactionHaha, ReactionWow, ReactionSad, ReactionAngry,
}

func (t ReactionType) Valid() bool {
	for _, r := range ReactionTypes {
		if t == r {
			return true
		}
	}
	return false
}

// ParseReactionType maps an empty string to ReactionLike.
func ParseReactionType(s string) (ReactionType, error) {
	if s == "" {
		return ReactionLike, nil
	}
	t := ReactionType(s)
	if !t.Valid() {
		return "", ErrInvalidReaction
	}
	return t, nil
}

type Like struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	PostID    uuid.UUID    `json:"post_id" db:"post_id"`
	UserID    uuid.UUID    `json:"user_id" db:"user_id"`
	Type      ReactionType `json:"type" db:"type"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`

	Profile *Profile `json:"profile,omitempty" db:"-"`
}

// ToggleAction is the write a reaction toggle resolves to.
type ToggleAction int

const (
	ToggleInsert ToggleAction = iota
	ToggleDelete
	ToggleUpdate
)

func (a ToggleAction) String() string {
	switch a {
	case ToggleInsert:
		return "insert"
	case ToggleDelete:
		return "delete"
	case ToggleUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// DecideToggle resolves a reaction request against the viewer's current
// like on the post. Every branch leaves at most one like for the pair.
func DecideToggle(existing *Like, requested ReactionType) ToggleAction {
	switch {
	case existing == nil:
		return ToggleInsert
	case existing.Type == requested:
		return ToggleDelete
	default:
		return ToggleUpdate
	}
}

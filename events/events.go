package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	PostCreated     = "post.created"
	PostDeleted     = "post.deleted"
	ReactionToggled = "reaction.toggled"
	CommentAdded    = "comment.added"

	// NoticePrefix is followed by the recipient's user id.
	NoticePrefix = "community.notice."

	// OriginHeader carries the id of the instance that published an event.
	OriginHeader = "Community-Origin"
)

// FeedSubjects are the subjects after which the feed must be reloaded.
var FeedSubjects = []string{PostCreated, PostDeleted, ReactionToggled, CommentAdded}

// Event payloads
type PostCreatedEvent struct {
	PostID    uuid.UUID `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type PostDeletedEvent struct {
	PostID    uuid.UUID `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

type ReactionToggledEvent struct {
	PostID    uuid.UUID `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
	Type      string    `json:"type"`
	Action    string    `json:"action"`
	ToggledAt time.Time `json:"toggled_at"`
}

type CommentAddedEvent struct {
	CommentID uuid.UUID `json:"comment_id"`
	PostID    uuid.UUID `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Notice is a transient, user-visible message.
type Notice struct {
	UserID  uuid.UUID `json:"user_id"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

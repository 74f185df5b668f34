package service

import (
	"errors"

	"community-service/model"
)

var (
	ErrUnauthenticated = errors.New("you must be signed in")
	ErrEmptyPost       = errors.New("a post needs text or an image")
	ErrImageTooLarge   = errors.New("image is too large (max 5 MB)")
	ErrImageType       = errors.New("file must be an image")
	ErrEmptyComment    = errors.New("comment cannot be empty")
	ErrCommentTooLong  = errors.New("comment must be less than 2000 characters")
)

// OperationError reports a store or backend failure caught at the
// boundary of a gateway operation. Message is safe to show to users.
type OperationError struct {
	Op      string
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	return e.Message + ": " + e.Err.Error()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err was raised before any write because
// the request itself was unacceptable.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrEmptyPost,
		ErrImageTooLarge,
		ErrImageType,
		ErrEmptyComment,
		ErrCommentTooLong,
		models.ErrInvalidReaction,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

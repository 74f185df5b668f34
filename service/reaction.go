package service

import (
	"github.com/google/uuid"

	"community-service/model"
)

// HasUserReacted returns the viewer's reaction on post. With a reaction
// argument it only reports a match for that reaction. A nil viewer never
// has a reaction.
func HasUserReacted(post models.Post, viewerID *uuid.UUID, reaction ...models.ReactionType) (models.ReactionType, bool) {
	if viewerID == nil {
		return "", false
	}

	for _, like := range post.Likes {
		if like.UserID != *viewerID {
			continue
		}
		if len(reaction) > 0 && reaction[0] != "" && like.Type != reaction[0] {
			return "", false
		}
		return like.Type, true
	}

	return "", false
}

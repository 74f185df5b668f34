package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"community-service/model"
)

func TestHasUserReacted(t *testing.T) {
	viewer := uuid.New()
	other := uuid.New()

	post := models.Post{
		ID: uuid.New(),
		Likes: []models.Like{
			{UserID: other, Type: models.ReactionLike},
			{UserID: viewer, Type: models.ReactionLove},
		},
	}

	tests := []struct {
		name     string
		viewer   *uuid.UUID
		filter   []models.ReactionType
		expected models.ReactionType
		found    bool
	}{
		{name: "No viewer", viewer: nil, expected: "", found: false},
		{name: "No viewer with filter", viewer: nil, filter: []models.ReactionType{models.ReactionLove}, expected: "", found: false},
		{name: "Viewer reacted", viewer: &viewer, expected: models.ReactionLove, found: true},
		{name: "Matching filter", viewer: &viewer, filter: []models.ReactionType{models.ReactionLove}, expected: models.ReactionLove, found: true},
		{name: "Other filter", viewer: &viewer, filter: []models.ReactionType{models.ReactionLike}, expected: "", found: false},
		{name: "Viewer without reaction", viewer: ptrTo(uuid.New()), expected: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reaction, found := HasUserReacted(post, tt.viewer, tt.filter...)
			assert.Equal(t, tt.expected, reaction)
			assert.Equal(t, tt.found, found)
		})
	}
}

func TestHasUserReactedNoLikes(t *testing.T) {
	viewer := uuid.New()
	_, found := HasUserReacted(models.Post{}, &viewer)
	assert.False(t, found)
}

func ptrTo[T any](v T) *T {
	return &v
}

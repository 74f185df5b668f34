package api

import (
	"time"

	"github.com/google/uuid"

	"community-service/model"
	"community-service/service"
)

type GetFeedRequest struct{}

// FeedPost is a feed entry annotated with the caller's own reaction.
type FeedPost struct {
	models.Post
	ViewerReaction models.ReactionType `json:"viewer_reaction,omitempty"`
}

type FeedResponse struct {
	Posts    []FeedPost `json:"posts"`
	Loading  bool       `json:"loading"`
	Error    string     `json:"error,omitempty"`
	LoadedAt time.Time  `json:"loaded_at"`
}

// NewFeedResponse renders a feed snapshot for viewer, who may be nil.
func NewFeedResponse(state service.State, viewerID *uuid.UUID) *FeedResponse {
	resp := &FeedResponse{
		Posts:    make([]FeedPost, len(state.Posts)),
		Loading:  state.Loading,
		LoadedAt: state.LoadedAt,
	}
	if state.Err != nil {
		resp.Error = "Could not load posts"
	}

	for i, post := range state.Posts {
		resp.Posts[i] = FeedPost{Post: post}
		if reaction, ok := service.HasUserReacted(post, viewerID); ok {
			resp.Posts[i].ViewerReaction = reaction
		}
	}
	return resp
}

type ListMembersRequest struct{}

type SearchMembersRequest struct {
	Query string `json:"query"`
}

type MembersResponse struct {
	Members []models.Profile `json:"members"`
	Error   string           `json:"error,omitempty"`
}

// NewMembersResponse renders profiles taken from the members snapshot.
func NewMembersResponse(members service.Members, profiles []models.Profile) *MembersResponse {
	resp := &MembersResponse{Members: profiles}
	if members.Err != nil {
		resp.Error = "Could not load members"
	}
	return resp
}

// Image is an uploaded file carried inline; Data is base64 in JSON.
type Image struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type CreatePostRequest struct {
	Content string `json:"content"`
	Image   *Image `json:"image,omitempty"`
}

type PostResponse struct {
	Post models.Post `json:"post"`
}

type AddReactionRequest struct {
	PostID string `json:"post_id"`
	Type   string `json:"type"`
}

type AddReactionResponse struct {
	Action string `json:"action"`
	Type   string `json:"type"`
}

type AddCommentRequest struct {
	PostID  string `json:"post_id"`
	Content string `json:"content"`
}

type CommentResponse struct {
	Comment models.Comment `json:"comment"`
}

type DeletePostRequest struct {
	PostID string `json:"post_id"`
}

type DeletePostResponse struct {
	Deleted int64 `json:"deleted"`
}

type GetUserReactionRequest struct {
	PostID string `json:"post_id"`
	Type   string `json:"type,omitempty"`
}

type GetUserReactionResponse struct {
	Reacted bool   `json:"reacted"`
	Type    string `json:"type,omitempty"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Region   *string `json:"region,omitempty"`
	FarmType *string `json:"farm_type,omitempty"`
	Avatar   *Image  `json:"avatar,omitempty"`
}

type ProfileResponse struct {
	Profile models.Profile `json:"profile"`
}

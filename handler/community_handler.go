package handler

import (
	"bytes"
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"community-service/api"
	"community-service/interceptor"
	"community-service/model"
	"community-service/service"
)

// FeedReader is the read side of the community service.
type FeedReader interface {
	State() service.State
	Members() service.Members
	SearchMembers(term string) []models.Profile
}

// Mutations is the write side of the community service.
type Mutations interface {
	CreatePost(ctx context.Context, viewerID *uuid.UUID, content string, image *service.ImageUpload) (*models.Post, error)
	AddReaction(ctx context.Context, viewerID *uuid.UUID, postID uuid.UUID, reaction models.ReactionType) (models.ToggleAction, error)
	AddComment(ctx context.Context, viewerID *uuid.UUID, postID uuid.UUID, content string) (*models.Comment, error)
	DeletePost(ctx context.Context, viewerID *uuid.UUID, postID uuid.UUID) (int64, error)
	UpdateProfile(ctx context.Context, viewerID *uuid.UUID, input service.ProfileInput) (*models.Profile, error)
}

type CommunityHandler struct {
	feed    FeedReader
	gateway Mutations
}

func NewCommunityHandler(feed FeedReader, gateway Mutations) *CommunityHandler {
	return &CommunityHandler{
		feed:    feed,
		gateway: gateway,
	}
}

// GetFeed returns the current feed snapshot with the caller's reactions.
func (h *CommunityHandler) GetFeed(ctx context.Context, req *api.GetFeedRequest) (*api.FeedResponse, error) {
	return api.NewFeedResponse(h.feed.State(), interceptor.ViewerFromContext(ctx)), nil
}

func (h *CommunityHandler) ListMembers(ctx context.Context, req *api.ListMembersRequest) (*api.MembersResponse, error) {
	members := h.feed.Members()
	return api.NewMembersResponse(members, members.Ordered), nil
}

func (h *CommunityHandler) SearchMembers(ctx context.Context, req *api.SearchMembersRequest) (*api.MembersResponse, error) {
	return api.NewMembersResponse(h.feed.Members(), h.feed.SearchMembers(req.Query)), nil
}

func (h *CommunityHandler) CreatePost(ctx context.Context, req *api.CreatePostRequest) (*api.PostResponse, error) {
	post, err := h.gateway.CreatePost(ctx, interceptor.ViewerFromContext(ctx), req.Content, toUpload(req.Image))
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.PostResponse{Post: *post}, nil
}

func (h *CommunityHandler) AddReaction(ctx context.Context, req *api.AddReactionRequest) (*api.AddReactionResponse, error) {
	postID, err := parsePostID(req.PostID)
	if err != nil {
		return nil, err
	}

	reaction, err := models.ParseReactionType(req.Type)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	action, err := h.gateway.AddReaction(ctx, interceptor.ViewerFromContext(ctx), postID, reaction)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.AddReactionResponse{Action: action.String(), Type: string(reaction)}, nil
}

func (h *CommunityHandler) AddComment(ctx context.Context, req *api.AddCommentRequest) (*api.CommentResponse, error) {
	postID, err := parsePostID(req.PostID)
	if err != nil {
		return nil, err
	}

	comment, err := h.gateway.AddComment(ctx, interceptor.ViewerFromContext(ctx), postID, req.Content)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.CommentResponse{Comment: *comment}, nil
}

func (h *CommunityHandler) DeletePost(ctx context.Context, req *api.DeletePostRequest) (*api.DeletePostResponse, error) {
	postID, err := parsePostID(req.PostID)
	if err != nil {
		return nil, err
	}

	deleted, err := h.gateway.DeletePost(ctx, interceptor.ViewerFromContext(ctx), postID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.DeletePostResponse{Deleted: deleted}, nil
}

// GetUserReaction reports the caller's reaction on a post in the current
// snapshot. Anonymous callers never have one.
func (h *CommunityHandler) GetUserReaction(ctx context.Context, req *api.GetUserReactionRequest) (*api.GetUserReactionResponse, error) {
	postID, err := parsePostID(req.PostID)
	if err != nil {
		return nil, err
	}

	viewerID := interceptor.ViewerFromContext(ctx)
	if viewerID == nil {
		return &api.GetUserReactionResponse{}, nil
	}

	for _, post := range h.feed.State().Posts {
		if post.ID != postID {
			continue
		}
		reaction, ok := service.HasUserReacted(post, viewerID, models.ReactionType(req.Type))
		return &api.GetUserReactionResponse{Reacted: ok, Type: string(reaction)}, nil
	}

	return nil, status.Error(codes.NotFound, "post not found")
}

func (h *CommunityHandler) UpdateProfile(ctx context.Context, req *api.UpdateProfileRequest) (*api.ProfileResponse, error) {
	profile, err := h.gateway.UpdateProfile(ctx, interceptor.ViewerFromContext(ctx), service.ProfileInput{
		FullName: req.FullName,
		Region:   req.Region,
		FarmType: req.FarmType,
		Avatar:   toUpload(req.Avatar),
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.ProfileResponse{Profile: *profile}, nil
}

func parsePostID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, status.Error(codes.InvalidArgument, "post_id is required")
	}

	postID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, "invalid post_id format")
	}
	return postID, nil
}

func toUpload(image *api.Image) *service.ImageUpload {
	if image == nil || len(image.Data) == 0 {
		return nil
	}

	return &service.ImageUpload{
		Filename:    image.Filename,
		ContentType: image.ContentType,
		Size:        int64(len(image.Data)),
		Body:        bytes.NewReader(image.Data),
	}
}

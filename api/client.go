package api

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls the community service over a gRPC connection using the
// JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetFeed(ctx context.Context, in *GetFeedRequest, opts ...grpc.CallOption) (*FeedResponse, error) {
	return invoke[GetFeedRequest, FeedResponse](ctx, c.cc, "GetFeed", in, opts)
}

func (c *Client) ListMembers(ctx context.Context, in *ListMembersRequest, opts ...grpc.CallOption) (*MembersResponse, error) {
	return invoke[ListMembersRequest, MembersResponse](ctx, c.cc, "ListMembers", in, opts)
}

func (c *Client) SearchMembers(ctx context.Context, in *SearchMembersRequest, opts ...grpc.CallOption) (*MembersResponse, error) {
	return invoke[SearchMembersRequest, MembersResponse](ctx, c.cc, "SearchMembers", in, opts)
}

func (c *Client) CreatePost(ctx context.Context, in *CreatePostRequest, opts ...grpc.CallOption) (*PostResponse, error) {
	return invoke[CreatePostRequest, PostResponse](ctx, c.cc, "CreatePost", in, opts)
}

func (c *Client) AddReaction(ctx context.Context, in *AddReactionRequest, opts ...grpc.CallOption) (*AddReactionResponse, error) {
	return invoke[AddReactionRequest, AddReactionResponse](ctx, c.cc, "AddReaction", in, opts)
}

func (c *Client) AddComment(ctx context.Context, in *AddCommentRequest, opts ...grpc.CallOption) (*CommentResponse, error) {
	return invoke[AddCommentRequest, CommentResponse](ctx, c.cc, "AddComment", in, opts)
}

func (c *Client) DeletePost(ctx context.Context, in *DeletePostRequest, opts ...grpc.CallOption) (*DeletePostResponse, error) {
	return invoke[DeletePostRequest, DeletePostResponse](ctx, c.cc, "DeletePost", in, opts)
}

func (c *Client) GetUserReaction(ctx context.Context, in *GetUserReactionRequest, opts ...grpc.CallOption) (*GetUserReactionResponse, error) {
	return invoke[GetUserReactionRequest, GetUserReactionResponse](ctx, c.cc, "GetUserReaction", in, opts)
}

func (c *Client) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[UpdateProfileRequest, ProfileResponse](ctx, c.cc, "UpdateProfile", in, opts)
}

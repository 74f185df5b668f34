package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "community.CommunityService"

// FullMethod returns the gRPC method path for a method of the service.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// PublicMethods may be called without a bearer token.
var PublicMethods = []string{
	FullMethod("GetFeed"),
	FullMethod("ListMembers"),
	FullMethod("SearchMembers"),
	FullMethod("GetUserReaction"),
}

// CommunityServiceServer is the server API for the community service.
type CommunityServiceServer interface {
	GetFeed(context.Context, *GetFeedRequest) (*FeedResponse, error)
	ListMembers(context.Context, *ListMembersRequest) (*MembersResponse, error)
	SearchMembers(context.Context, *SearchMembersRequest) (*MembersResponse, error)
	CreatePost(context.Context, *CreatePostRequest) (*PostResponse, error)
	AddReaction(context.Context, *AddReactionRequest) (*AddReactionResponse, error)
	AddComment(context.Context, *AddCommentRequest) (*CommentResponse, error)
	DeletePost(context.Context, *DeletePostRequest) (*DeletePostResponse, error)
	GetUserReaction(context.Context, *GetUserReactionRequest) (*GetUserReactionResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*ProfileResponse, error)
}

func RegisterCommunityServiceServer(s grpc.ServiceRegistrar, srv CommunityServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CommunityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetFeed", Handler: unaryHandler("GetFeed", CommunityServiceServer.GetFeed)},
		{MethodName: "ListMembers", Handler: unaryHandler("ListMembers", CommunityServiceServer.ListMembers)},
		{MethodName: "SearchMembers", Handler: unaryHandler("SearchMembers", CommunityServiceServer.SearchMembers)},
		{MethodName: "CreatePost", Handler: unaryHandler("CreatePost", CommunityServiceServer.CreatePost)},
		{MethodName: "AddReaction", Handler: unaryHandler("AddReaction", CommunityServiceServer.AddReaction)},
		{MethodName: "AddComment", Handler: unaryHandler("AddComment", CommunityServiceServer.AddComment)},
		{MethodName: "DeletePost", Handler: unaryHandler("DeletePost", CommunityServiceServer.DeletePost)},
		{MethodName: "GetUserReaction", Handler: unaryHandler("GetUserReaction", CommunityServiceServer.GetUserReaction)},
		{MethodName: "UpdateProfile", Handler: unaryHandler("UpdateProfile", CommunityServiceServer.UpdateProfile)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "community.json",
}

func unaryHandler[Req, Resp any](
	method string,
	call func(CommunityServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CommunityServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CommunityServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

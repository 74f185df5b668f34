package interceptor

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ContextKey type for context keys
type ContextKey string

const (
	ViewerKey ContextKey = "viewer_id"
)

// TokenVerifier resolves a bearer token to the user it was issued to.
type TokenVerifier interface {
	VerifyUser(token string) (uuid.UUID, error)
}

// AuthInterceptor attaches the viewer id from a JWT to the request
// context. Public methods accept requests without a token, or with one
// that fails verification, and run without a viewer.
type AuthInterceptor struct {
	verifier      TokenVerifier
	publicMethods map[string]bool
}

func NewAuthInterceptor(verifier TokenVerifier, publicMethods []string) *AuthInterceptor {
	methodMap := make(map[string]bool)
	for _, method := range publicMethods {
		methodMap[method] = true
	}

	return &AuthInterceptor{
		verifier:      verifier,
		publicMethods: methodMap,
	}
}

// Unary returns a server interceptor function to authenticate unary RPCs.
func (interceptor *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		viewerID, err := interceptor.authorize(ctx)
		if err != nil {
			if !interceptor.publicMethods[info.FullMethod] {
				return nil, err
			}
			return handler(ctx, req)
		}

		return handler(WithViewer(ctx, viewerID), req)
	}
}

// authorize verifies the bearer token from the metadata and returns the
// viewer id.
func (interceptor *AuthInterceptor) authorize(ctx context.Context) (uuid.UUID, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return uuid.Nil, status.Error(codes.Unauthenticated, "metadata is not provided")
	}

	values := md["authorization"]
	if len(values) == 0 {
		return uuid.Nil, status.Error(codes.Unauthenticated, "authorization token is not provided")
	}

	token := values[0]
	if !strings.HasPrefix(token, "Bearer ") {
		return uuid.Nil, status.Error(codes.Unauthenticated, "invalid authorization format")
	}

	viewerID, err := interceptor.verifier.VerifyUser(strings.TrimPrefix(token, "Bearer "))
	if err != nil {
		return uuid.Nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
	}

	return viewerID, nil
}

// WithViewer returns a copy of ctx carrying the viewer id.
func WithViewer(ctx context.Context, viewerID uuid.UUID) context.Context {
	return context.WithValue(ctx, ViewerKey, viewerID)
}

// ViewerFromContext returns the authenticated viewer, or nil.
func ViewerFromContext(ctx context.Context) *uuid.UUID {
	viewerID, ok := ctx.Value(ViewerKey).(uuid.UUID)
	if !ok {
		return nil
	}
	return &viewerID
}

// Logging logs every unary call with its outcome and duration.
func Logging(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	duration := time.Since(start)

	outcome := "OK"
	if err != nil {
		outcome = status.Code(err).String()
	}

	log.Printf("[%s] %s - %v (took %v)", outcome, info.FullMethod, err, duration)
	return resp, err
}

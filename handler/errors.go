package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"community-service/repository"
	"community-service/service"
)

// toStatus maps a gateway error to a gRPC status.
func toStatus(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, err.Error())
	case service.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, repository.ErrReactionConflict):
		return status.Error(codes.Aborted, "reaction changed concurrently, try again")
	case errors.Is(err, repository.ErrProfileNotFound):
		return status.Error(codes.NotFound, "profile not found")
	}

	var opErr *service.OperationError
	if errors.As(err, &opErr) {
		return status.Error(codes.Internal, opErr.Message)
	}
	return status.Errorf(codes.Internal, "internal error: %v", err)
}

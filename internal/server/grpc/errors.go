package grpc

import (
	"errors"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service outcomes to gRPC status errors. Anything not
// recognised becomes codes.Internal with a generic message.
func toStatus(err error) error {
	var (
		validation *api.ValidationError
		conflict   *common.ConflictError
		unauth     *common.UnauthenticatedError
	)

	switch {
	case errors.As(err, &validation):
		return status.Error(codes.InvalidArgument, validation.Error())
	case errors.As(err, &conflict):
		return status.Error(codes.AlreadyExists, conflict.Error())
	case errors.As(err, &unauth):
		return status.Error(codes.Unauthenticated, unauth.Reason)
	case errors.Is(err, common.ErrNoCredential):
		return status.Error(codes.PermissionDenied, common.ReasonNotAuthenticated)
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

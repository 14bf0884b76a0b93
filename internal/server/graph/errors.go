package graph

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/assetvault/internal/common"
)

const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeVersionConflict = "VERSION_CONFLICT"
	CodeBadRequest      = "BAD_REQUEST"
	CodeIntegrity       = "INTEGRITY_ERROR"
	CodeInternal        = "INTERNAL"
)

// Error is a resolver error carrying a machine-readable code in the
// "extensions" member of the GraphQL response.
type Error struct {
	Message string
	Code    string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

var codes = []struct {
	err  error
	code string
}{
	{common.ErrUnauthenticated, CodeUnauthenticated},
	{common.ErrInvalidToken, CodeUnauthenticated},
	{common.ErrTokenExpired, CodeUnauthenticated},
	{common.ErrForbidden, CodeForbidden},
	{common.ErrorNotFound, CodeNotFound},
	{common.ErrVersionConflict, CodeVersionConflict},
	{common.ErrBadRequest, CodeBadRequest},
	{common.ErrIntegrity, CodeIntegrity},
}

// toGraphQLError classifies err. Unclassified errors are logged and
// replaced with a generic message.
func (r *Resolver) toGraphQLError(ctx context.Context, err error) error {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return &Error{Message: err.Error(), Code: c.code}
		}
	}
	r.log.Error(ctx, "resolver failed", "error", err)
	return &Error{Message: common.ErrorInternal.Error(), Code: CodeInternal}
}

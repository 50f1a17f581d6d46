package report

import (
	"context"
	goerrors "errors"

	"github.com/gin-gonic/gin"

	"github.com/guardkit/guardkit/errors"
	"github.com/guardkit/guardkit/resilience"
)

// MapError translates guard and resilience errors into AppErrors for the
// HTTP edge. Errors already carrying an AppError pass through unchanged;
// anything unrecognized becomes an internal error.
func MapError(err error) *errors.AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}

	var openErr *resilience.CircuitOpenError
	switch {
	case goerrors.As(err, &openErr):
		return errors.CircuitOpen(openErr.Service).WithCause(err)
	case goerrors.Is(err, resilience.ErrCircuitOpen):
		return errors.CircuitOpen("unknown").WithCause(err)
	case goerrors.Is(err, resilience.ErrRateLimited):
		return errors.RateLimited().WithCause(err)
	case goerrors.Is(err, context.Canceled):
		return errors.Timeout("request canceled").WithCause(err)
	case goerrors.Is(err, context.DeadlineExceeded):
		return errors.Timeout("deadline exceeded").WithCause(err)
	default:
		return errors.Internal(err)
	}
}

// WriteError maps err and writes the JSON error response with the
// AppError's HTTP status.
func WriteError(c *gin.Context, err error) {
	appErr := MapError(err)
	if appErr == nil {
		return
	}
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}

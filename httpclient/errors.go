package httpclient

import (
	"context"
	stderrors "errors"
	"net"

	"github.com/kbukum/cosmosdb/errors"
)

const serviceName = "http"

// classifyTransportError turns a failed round trip into an AppError.
// The caller's context decides between cancellation and timeout; a
// transport-level timeout without a context error is still a timeout.
func classifyTransportError(ctx context.Context, err error) *errors.AppError {
	switch ctxErr := ctx.Err(); {
	case stderrors.Is(ctxErr, context.Canceled):
		return errors.Canceled("http request", stderrors.Join(ctxErr, err))
	case stderrors.Is(ctxErr, context.DeadlineExceeded):
		return errors.Timeout("http request", stderrors.Join(ctxErr, err))
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Timeout("http request", err)
	}
	return errors.ConnectionFailed(serviceName, err)
}

// IsCanceled reports whether err is a cancellation outcome.
func IsCanceled(err error) bool { return errors.IsCanceled(err) }

// IsTimeout reports whether err is a timeout outcome.
func IsTimeout(err error) bool {
	appErr, ok := errors.AsAppError(err)
	return ok && appErr.Code == errors.ErrCodeTimeout
}

// IsConnection reports whether err is a connection failure.
func IsConnection(err error) bool {
	appErr, ok := errors.AsAppError(err)
	return ok && appErr.Code == errors.ErrCodeConnectionFailed
}

package cosmosdb

import "fmt"

// GetFailureCode classifies a failed read.
type GetFailureCode int

const (
	GetUnknown GetFailureCode = iota
	GetNotFound
	GetUnauthorized
	GetTooManyRequests
)

func (c GetFailureCode) String() string {
	switch c {
	case GetNotFound:
		return "NotFound"
	case GetUnauthorized:
		return "Unauthorized"
	case GetTooManyRequests:
		return "TooManyRequests"
	default:
		return "Unknown"
	}
}

// UpdateFailureCode classifies a failed partial update.
type UpdateFailureCode int

const (
	UpdateUnknown UpdateFailureCode = iota
	UpdateNotFound
	UpdatePreconditionFailed
	UpdateBadRequest
	UpdateUnauthorized
	UpdateConflict
	UpdateEntityTooLarge
	UpdateTooManyRequests
)

func (c UpdateFailureCode) String() string {
	switch c {
	case UpdateNotFound:
		return "NotFound"
	case UpdatePreconditionFailed:
		return "PreconditionFailed"
	case UpdateBadRequest:
		return "BadRequest"
	case UpdateUnauthorized:
		return "Unauthorized"
	case UpdateConflict:
		return "Conflict"
	case UpdateEntityTooLarge:
		return "EntityTooLarge"
	case UpdateTooManyRequests:
		return "TooManyRequests"
	default:
		return "Unknown"
	}
}

// Failure is a classified failure. Message is diagnostic text and must not
// be parsed. StatusCode and Body are the raw response that was classified.
type Failure[C fmt.Stringer] struct {
	Code       C
	Message    string
	StatusCode int
	Body       string
}

func (f Failure[C]) String() string {
	return fmt.Sprintf("%s (status %d): %s", f.Code, f.StatusCode, f.Message)
}

// Result holds exactly one of a value or a Failure. Build it with Success
// or Fail. The zero Result is a failure with the zero code.
type Result[T any, C fmt.Stringer] struct {
	value   T
	failure Failure[C]
	ok      bool
}

// Success wraps a value.
func Success[T any, C fmt.Stringer](v T) Result[T, C] {
	return Result[T, C]{value: v, ok: true}
}

// Fail wraps a failure.
func Fail[T any, C fmt.Stringer](f Failure[C]) Result[T, C] {
	return Result[T, C]{failure: f}
}

// IsSuccess reports whether r holds a value.
func (r Result[T, C]) IsSuccess() bool { return r.ok }

// Value returns the value and true, or the zero value and false.
func (r Result[T, C]) Value() (T, bool) {
	if !r.ok {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Failure returns the failure and true, or a zero Failure and false.
func (r Result[T, C]) Failure() (Failure[C], bool) {
	if r.ok {
		return Failure[C]{}, false
	}
	return r.failure, true
}

// Fold calls exactly one of onSuccess or onFailure.
func Fold[T any, C fmt.Stringer, R any](r Result[T, C], onSuccess func(T) R, onFailure func(Failure[C]) R) R {
	if r.ok {
		return onSuccess(r.value)
	}
	return onFailure(r.failure)
}

package cosmosdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// MapGetStatus classifies a non-success read status.
func MapGetStatus(status int) GetFailureCode {
	switch status {
	case http.StatusNotFound:
		return GetNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return GetUnauthorized
	case http.StatusTooManyRequests:
		return GetTooManyRequests
	default:
		return GetUnknown
	}
}

// MapUpdateStatus classifies a non-success update status.
func MapUpdateStatus(status int) UpdateFailureCode {
	switch status {
	case http.StatusNotFound:
		return UpdateNotFound
	case http.StatusPreconditionFailed:
		return UpdatePreconditionFailed
	case http.StatusBadRequest:
		return UpdateBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return UpdateUnauthorized
	case http.StatusConflict:
		return UpdateConflict
	case http.StatusRequestEntityTooLarge:
		return UpdateEntityTooLarge
	case http.StatusTooManyRequests:
		return UpdateTooManyRequests
	default:
		return UpdateUnknown
	}
}

// mapResponse turns a status and body into a Result. Success bodies are
// decoded exactly once; classify is only consulted for non-2xx statuses.
func mapResponse[T any, C fmt.Stringer](status int, body []byte, classify func(int) C, unknown C) Result[T, C] {
	if status < 200 || status > 299 {
		return Fail[T](Failure[C]{
			Code:       classify(status),
			Message:    errorMessage(status, body),
			StatusCode: status,
			Body:       string(body),
		})
	}

	doc, err := decodeDocument[T](body)
	if err != nil {
		return Fail[T](Failure[C]{
			Code:       unknown,
			Message:    err.Error(),
			StatusCode: status,
			Body:       string(body),
		})
	}
	return Success[T, C](doc)
}

// decodeDocument decodes body into T. An empty body or a JSON null is an
// absent document.
func decodeDocument[T any](body []byte) (T, error) {
	var zero T
	if len(bytes.TrimSpace(body)) == 0 {
		return zero, fmt.Errorf("cannot deserialize response body: %s", body)
	}

	var doc *T
	if err := json.Unmarshal(body, &doc); err != nil {
		return zero, fmt.Errorf("an error occurred during deserialization response body: %s, error: %s", body, err)
	}
	if doc == nil {
		return zero, fmt.Errorf("cannot deserialize response body: %s", body)
	}
	return *doc, nil
}

// serviceError is the error body the service returns with non-2xx statuses.
type serviceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorMessage(status int, body []byte) string {
	var se serviceError
	if err := json.Unmarshal(body, &se); err == nil && se.Message != "" {
		if se.Code != "" {
			return se.Code + ": " + se.Message
		}
		return se.Message
	}
	return fmt.Sprintf("unexpected status %d: %s", status, body)
}

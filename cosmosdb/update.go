package cosmosdb

import (
	"context"
	"net/http"

	"github.com/kbukum/cosmosdb/errors"
	"github.com/kbukum/cosmosdb/observability"
)

// UpdateDocument applies in.Operations, in order, to one document and
// decodes the patched document into T. When in.Condition is non-empty it
// is sent as If-Match and a mismatch yields UpdatePreconditionFailed.
//
// Errors follow GetDocument: when err is non-nil the Result is the zero
// value and must be ignored. An operation that cannot be encoded is an
// INVALID_INPUT error and nothing is sent.
func UpdateDocument[T any](ctx context.Context, c *Client, in UpdateIn) (Result[UpdateOut[T], UpdateFailureCode], error) {
	body, err := encodeOperations(in.Operations)
	if err != nil {
		return Result[UpdateOut[T], UpdateFailureCode]{}, errors.InvalidInput("operations", err.Error())
	}

	headers := map[string]string{headerContentType: contentTypePatch}
	if in.Condition != "" {
		headers[headerIfMatch] = in.Condition
	}

	cl := call{
		operation:    operationUpdate,
		method:       http.MethodPatch,
		containerID:  in.ContainerID,
		documentID:   in.DocumentID,
		partitionKey: in.PartitionKey,
		headers:      headers,
		body:         body,
	}
	ctx, finish := c.begin(ctx, cl)
	observability.SetSpanAttribute(ctx, observability.AttrOperationCount, len(in.Operations))

	resp, activityID, err := c.send(ctx, cl)
	if err != nil {
		finish(outcome{activityID: activityID, err: err})
		return Result[UpdateOut[T], UpdateFailureCode]{}, err
	}

	mapped := mapResponse[T](resp.StatusCode, resp.Body, MapUpdateStatus, UpdateUnknown)
	o := outcome{status: resp.StatusCode, activityID: activityID}
	if f, failed := mapped.Failure(); failed {
		o.failure, o.message = f.Code.String(), f.Message
		finish(o)
		return Fail[UpdateOut[T]](f), nil
	}
	finish(o)

	doc, _ := mapped.Value()
	return Success[UpdateOut[T], UpdateFailureCode](UpdateOut[T]{
		Document:   doc,
		ETag:       resp.Header(headerETag),
		ActivityID: activityID,
	}), nil
}

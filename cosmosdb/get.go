package cosmosdb

import (
	"context"
	"net/http"
)

// GetDocument reads one document and decodes it into T.
//
// A response is always classified into the Result. The error is non-nil
// only when no response was obtained: the context was canceled or expired,
// or the service could not be reached. When err is non-nil the Result is
// the zero value and carries no classification; check err first.
func GetDocument[T any](ctx context.Context, c *Client, in GetIn) (Result[GetOut[T], GetFailureCode], error) {
	cl := call{
		operation:    operationGet,
		method:       http.MethodGet,
		containerID:  in.ContainerID,
		documentID:   in.DocumentID,
		partitionKey: in.PartitionKey,
	}
	ctx, finish := c.begin(ctx, cl)

	resp, activityID, err := c.send(ctx, cl)
	if err != nil {
		finish(outcome{activityID: activityID, err: err})
		return Result[GetOut[T], GetFailureCode]{}, err
	}

	mapped := mapResponse[T](resp.StatusCode, resp.Body, MapGetStatus, GetUnknown)
	o := outcome{status: resp.StatusCode, activityID: activityID}
	if f, failed := mapped.Failure(); failed {
		o.failure, o.message = f.Code.String(), f.Message
		finish(o)
		return Fail[GetOut[T]](f), nil
	}
	finish(o)

	doc, _ := mapped.Value()
	return Success[GetOut[T], GetFailureCode](GetOut[T]{
		Document:   doc,
		ETag:       resp.Header(headerETag),
		ActivityID: activityID,
	}), nil
}

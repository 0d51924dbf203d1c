package cosmosdb

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/cosmosdb/errors"
	"github.com/kbukum/cosmosdb/httpclient"
	"github.com/kbukum/cosmosdb/logger"
	"github.com/kbukum/cosmosdb/observability"
	"github.com/kbukum/cosmosdb/version"
)

const (
	headerAuthorization = "Authorization"
	headerDate          = "x-ms-date"
	headerVersion       = "x-ms-version"
	headerPartitionKey  = "x-ms-documentdb-partitionkey"
	headerActivityID    = "x-ms-activity-id"
	headerIfMatch       = "If-Match"
	headerETag          = "ETag"
	headerAccept        = "Accept"
	headerContentType   = "Content-Type"
	headerUserAgent     = "User-Agent"

	contentTypeJSON  = "application/json"
	contentTypePatch = "application/json_patch+json"

	componentName = "cosmosdb"

	operationGet    = "get"
	operationUpdate = "update"
)

var errNoResponse = stderrors.New("cosmosdb: sender returned neither a response nor an error")

// Client sends document reads and updates for one database. It holds no
// per-call state and is safe for concurrent use.
type Client struct {
	option    Option
	key       []byte
	baseURL   string
	userAgent string
	sender    httpclient.Sender
	log       *logger.Logger
	metrics   *observability.Metrics
	now       func() time.Time

	// live counts signers acquired and not yet released.
	live atomic.Int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) { c.log = l.WithComponent(componentName) }
}

// WithClock sets the time source used for the x-ms-date header.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// WithMetrics records request counts, durations and failures.
func WithMetrics(m *observability.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// New validates opt, decodes the master key and returns a Client that
// sends through sender.
func New(opt Option, sender httpclient.Sender, opts ...ClientOption) (*Client, error) {
	opt.ApplyDefaults()
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, errors.MissingField("sender")
	}

	key, err := base64.StdEncoding.DecodeString(opt.MasterKey)
	if err != nil {
		return nil, errors.InvalidInput("master_key", err.Error())
	}

	c := &Client{
		option:    opt,
		key:       key,
		baseURL:   strings.TrimRight(opt.BaseAddress, "/") + "/",
		userAgent: version.UserAgent(),
		sender:    sender,
		log:       logger.Nop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// call is one prepared document request.
type call struct {
	operation    string
	method       string
	containerID  string
	documentID   string
	partitionKey string
	headers      map[string]string
	body         []byte
}

// send signs and sends one request. The authorization header travels in
// Request.Headers so any Sender sends it. The signer is released before
// send returns, whatever the outcome. A returned error is always an AppError.
func (c *Client) send(ctx context.Context, cl call) (*httpclient.Response, string, error) {
	signer := newRequestSigner(c.key, resourceLink(c.option.DatabaseID, cl.containerID, cl.documentID), c.releaseSigner)
	c.live.Add(1)
	defer signer.release()

	date := c.now().UTC().Format(http.TimeFormat)
	token, err := signer.authorize(cl.method, date)
	if err != nil {
		return nil, "", errors.Internal(err)
	}

	activityID := uuid.NewString()
	headers := map[string]string{
		headerAuthorization: token,
		headerDate:          date,
		headerVersion:       c.option.APIVersion,
		headerPartitionKey:  partitionKeyHeader(cl.partitionKey),
		headerActivityID:    activityID,
		headerAccept:        contentTypeJSON,
		headerUserAgent:     c.userAgent,
	}
	for k, v := range cl.headers {
		headers[k] = v
	}

	resp, err := c.sender.Do(ctx, httpclient.Request{
		Method:  cl.method,
		Path:    c.baseURL + resourcePath(c.option.DatabaseID, cl.containerID, cl.documentID),
		Headers: headers,
		Body:    cl.body,
	})
	if err != nil {
		return nil, activityID, transportError(ctx, cl.operation, err)
	}
	if resp == nil {
		return nil, activityID, errors.Internal(errNoResponse)
	}
	if id := resp.Header(headerActivityID); id != "" {
		activityID = id
	}
	return resp, activityID, nil
}

func (c *Client) releaseSigner() { c.live.Add(-1) }

// outcome summarizes a finished call for logs, spans and metrics.
type outcome struct {
	status     int
	activityID string
	// failure is the failure code name; empty on success.
	failure string
	message string
	err     error
}

func (c *Client) begin(ctx context.Context, cl call) (context.Context, func(outcome)) {
	spanName := observability.SpanDocumentGet
	if cl.operation == operationUpdate {
		spanName = observability.SpanDocumentUpdate
	}
	ctx, span := observability.StartSpan(ctx, spanName)
	observability.SetSpanAttribute(ctx, observability.AttrDBSystem, componentName)
	observability.SetSpanAttribute(ctx, observability.AttrDBName, c.option.DatabaseID)
	observability.SetSpanAttribute(ctx, observability.AttrDBOperation, cl.operation)
	observability.SetSpanAttribute(ctx, observability.AttrDBContainer, cl.containerID)

	if c.metrics != nil {
		c.metrics.RecordRequestStart(ctx, cl.operation)
	}
	start := time.Now()

	return ctx, func(o outcome) {
		defer span.End()
		elapsed := time.Since(start)

		fields := logger.MergeWithDuration(logger.Fields(
			logger.FieldOperation, cl.operation,
			logger.FieldDatabase, c.option.DatabaseID,
			logger.FieldContainer, cl.containerID,
			logger.FieldDocument, cl.documentID,
			logger.FieldActivityID, o.activityID,
		), elapsed)
		if o.status != 0 {
			fields[logger.FieldStatus] = o.status
			observability.SetSpanAttribute(ctx, observability.AttrDBStatusCode, o.status)
		}
		if o.activityID != "" {
			observability.SetSpanAttribute(ctx, observability.AttrDBActivityID, o.activityID)
		}

		result := "success"
		switch {
		case o.err != nil:
			result = "error"
			code := string(errors.ErrCodeInternal)
			if appErr, ok := errors.AsAppError(o.err); ok {
				code = string(appErr.Code)
			}
			fields[logger.FieldError] = o.err.Error()
			c.log.Error("document "+cl.operation+" failed", fields)
			observability.SetSpanError(ctx, o.err)
			c.recordFailure(ctx, cl.operation, code)
		case o.failure != "":
			result = "failure"
			fields[logger.FieldFailureCode] = o.failure
			fields[logger.FieldError] = o.message
			c.log.Warn("document "+cl.operation+" returned failure", fields)
			observability.SetSpanAttribute(ctx, observability.AttrFailureCode, o.failure)
			c.recordFailure(ctx, cl.operation, o.failure)
		default:
			c.log.Debug("document "+cl.operation+" ok", fields)
		}

		if c.metrics != nil {
			c.metrics.RecordRequestEnd(ctx, cl.operation, result, elapsed)
		}
	}
}

func (c *Client) recordFailure(ctx context.Context, operation, code string) {
	if c.metrics != nil {
		c.metrics.RecordFailure(ctx, operation, code)
	}
}

// transportError normalizes whatever the sender returned into an AppError.
// The context decides first so a custom sender cannot mask cancellation.
func transportError(ctx context.Context, operation string, err error) error {
	switch ctxErr := ctx.Err(); {
	case stderrors.Is(ctxErr, context.Canceled):
		if errors.IsCanceled(err) {
			return err
		}
		return errors.Canceled(operation, stderrors.Join(ctxErr, err))
	case stderrors.Is(ctxErr, context.DeadlineExceeded):
		if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.ErrCodeTimeout {
			return err
		}
		return errors.Timeout(operation, stderrors.Join(ctxErr, err))
	}
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	// A sender may give up on its own context while the caller's is live.
	switch {
	case stderrors.Is(err, context.Canceled):
		return errors.Canceled(operation, err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Timeout(operation, err)
	}
	return errors.ConnectionFailed(componentName, err)
}

// partitionKeyHeader renders the partition key as a one-element JSON array
// of its unescaped value.
func partitionKeyHeader(key string) string {
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode([]string{key})
	return strings.TrimSuffix(buf.String(), "\n")
}

// Package cosmosdb is a client-side adapter for a Cosmos-DB-style document
// REST API. It supports two calls: a point read of one document and a
// partial update (patch) of one document under an optional
// optimistic-concurrency condition.
//
// Each call builds a signed request, sends it through an injected
// httpclient.Sender and classifies the response. Classified outcomes
// (success, not found, precondition failed, ...) come back as a Result.
// Only transport-level outcomes are returned as an error: cancellation,
// deadline expiry and connection failure, each an *errors.AppError.
//
// # Usage
//
//	sender, _ := httpclient.New(httpclient.Config{Transport: pooled})
//	client, err := cosmosdb.New(cosmosdb.Option{
//	    BaseAddress: "https://acct.documents.azure.com:443/",
//	    DatabaseID:  "app",
//	    MasterKey:   masterKey,
//	}, sender)
//
//	res, err := cosmosdb.GetDocument[Order](ctx, client, cosmosdb.GetIn{
//	    ContainerID:  "orders",
//	    DocumentID:   "42",
//	    PartitionKey: "tenant-1",
//	})
//	if err != nil {
//	    return err // canceled, timed out or unreachable
//	}
//	if f, failed := res.Failure(); failed && f.Code == cosmosdb.GetNotFound {
//	    ...
//	}
//
// The adapter never retries. Wrap NewGetProvider or NewUpdateProvider with
// provider.WithRetry to add a caller-side policy.
package cosmosdb

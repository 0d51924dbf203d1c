package cosmosdb

// GetIn identifies one document to read. Empty strings are sent as-is;
// the adapter does not validate identifiers.
type GetIn struct {
	ContainerID  string `json:"container_id"`
	DocumentID   string `json:"document_id"`
	PartitionKey string `json:"partition_key"`
}

// GetOut is the decoded document of a successful read.
type GetOut[T any] struct {
	Document T
	// ETag is the document version, usable as an UpdateIn condition.
	ETag string
	// ActivityID correlates the call with service-side diagnostics.
	ActivityID string
}

// UpdateIn describes a partial update of one document.
type UpdateIn struct {
	ContainerID  string      `json:"container_id"`
	DocumentID   string      `json:"document_id"`
	PartitionKey string      `json:"partition_key"`
	Operations   []Operation `json:"operations"`
	// Condition is sent as If-Match when non-empty.
	Condition string `json:"condition"`
}

// NewUpdateIn builds an UpdateIn, turning a nil operation list into an empty one.
func NewUpdateIn(containerID, documentID, partitionKey string, operations []Operation, condition string) UpdateIn {
	if operations == nil {
		operations = []Operation{}
	}
	return UpdateIn{
		ContainerID:  containerID,
		DocumentID:   documentID,
		PartitionKey: partitionKey,
		Operations:   operations,
		Condition:    condition,
	}
}

// UpdateOut is the patched document returned by a successful update.
type UpdateOut[T any] struct {
	Document   T
	ETag       string
	ActivityID string
}

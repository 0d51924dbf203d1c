package cosmosdb

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OperationKind is the patch operation name sent on the wire.
type OperationKind string

const (
	OpAdd       OperationKind = "add"
	OpSet       OperationKind = "set"
	OpReplace   OperationKind = "replace"
	OpRemove    OperationKind = "remove"
	OpIncrement OperationKind = "incr"
	OpMove      OperationKind = "move"
)

func (k OperationKind) valid() bool {
	switch k {
	case OpAdd, OpSet, OpReplace, OpRemove, OpIncrement, OpMove:
		return true
	}
	return false
}

func (k OperationKind) takesValue() bool {
	return k != OpRemove && k != OpMove
}

// Operation is one field-level mutation at a JSON-pointer path. Value is
// ignored for remove and move; From is only used by move.
type Operation struct {
	Kind  OperationKind
	Path  string
	Value any
	From  string
}

// Set writes value at path, creating the field if needed.
func Set(path string, value any) Operation {
	return Operation{Kind: OpSet, Path: path, Value: value}
}

// Add inserts value at path. For arrays the value is inserted at the index.
func Add(path string, value any) Operation {
	return Operation{Kind: OpAdd, Path: path, Value: value}
}

// Replace overwrites an existing field.
func Replace(path string, value any) Operation {
	return Operation{Kind: OpReplace, Path: path, Value: value}
}

// Remove deletes the field at path.
func Remove(path string) Operation {
	return Operation{Kind: OpRemove, Path: path}
}

// Increment adds delta to a numeric field.
func Increment(path string, delta any) Operation {
	return Operation{Kind: OpIncrement, Path: path, Value: delta}
}

// Move moves the value at from to path.
func Move(from, path string) Operation {
	return Operation{Kind: OpMove, Path: path, From: from}
}

type valueOperation struct {
	Op    OperationKind `json:"op"`
	Path  string        `json:"path"`
	Value any           `json:"value"`
}

type removeOperation struct {
	Op   OperationKind `json:"op"`
	Path string        `json:"path"`
}

type moveOperation struct {
	Op   OperationKind `json:"op"`
	From string        `json:"from"`
	Path string        `json:"path"`
}

// MarshalJSON encodes the operation in wire form. Kinds that take a value
// always carry a "value" member, null included.
func (o Operation) MarshalJSON() ([]byte, error) {
	switch {
	case !o.Kind.valid():
		return nil, fmt.Errorf("unknown patch operation %q", o.Kind)
	case o.Kind == OpMove:
		return json.Marshal(moveOperation{Op: o.Kind, From: o.From, Path: o.Path})
	case o.Kind == OpRemove:
		return json.Marshal(removeOperation{Op: o.Kind, Path: o.Path})
	default:
		return json.Marshal(valueOperation{Op: o.Kind, Path: o.Path, Value: o.Value})
	}
}

// UnmarshalJSON decodes a wire operation. Numbers decode as float64.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var w struct {
		Op    OperationKind   `json:"op"`
		Path  string          `json:"path"`
		From  string          `json:"from"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Op.valid() {
		return fmt.Errorf("unknown patch operation %q", w.Op)
	}

	op := Operation{Kind: w.Op, Path: w.Path, From: w.From}
	if w.Op.takesValue() && len(w.Value) > 0 {
		if err := json.Unmarshal(w.Value, &op.Value); err != nil {
			return fmt.Errorf("decode value of %s %s: %w", w.Op, w.Path, err)
		}
	}
	*o = op
	return nil
}

type patchBody struct {
	Operations []Operation `json:"operations"`
}

// encodeOperations renders the patch body with operations in input order.
// A nil or empty list encodes as an empty array.
func encodeOperations(ops []Operation) ([]byte, error) {
	if ops == nil {
		ops = []Operation{}
	}
	return json.Marshal(patchBody{Operations: ops})
}

// DecodeOperations parses a patch body produced by the update call back
// into operations, preserving their order.
func DecodeOperations(body []byte) ([]Operation, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var p patchBody
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode patch body: %w", err)
	}
	if p.Operations == nil {
		return []Operation{}, nil
	}
	return p.Operations, nil
}

// Package payload is the canonical codec for workflow requests.
//
// A request is one of two cases: Create carries a caller-supplied dependency
// graph, Get carries only the workflow id. The encoded bytes are what the
// transaction header digests, so Encode must be stable: the same logical
// request always produces the same bytes.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"unicode/utf8"

	"xdao.co/wfledger/fault"
)

// Action names the operation a request asks for.
type Action string

const (
	ActionCreate Action = "create"
	ActionGet    Action = "get"
)

// Request is implemented by Create and Get only.
type Request interface {
	Action() Action
	ID() string
	isRequest()
}

// Create registers a new workflow. Graph is any JSON-encodable value; nil
// means absent. Encode writes the graph's canonical form (see NormalizeGraph),
// and Decode returns that form.
type Create struct {
	WorkflowID string
	Graph      any
}

// Get asks for the state of an existing workflow.
type Get struct {
	WorkflowID string
}

func (Create) Action() Action { return ActionCreate }
func (c Create) ID() string   { return c.WorkflowID }
func (Create) isRequest()     {}

func (Get) Action() Action { return ActionGet }
func (g Get) ID() string   { return g.WorkflowID }
func (Get) isRequest()     {}

// wire is the on-ledger layout. Field order fixes key order in the output.
type wire struct {
	Action          Action          `json:"action"`
	WorkflowID      string          `json:"workflow_id"`
	DependencyGraph json.RawMessage `json:"dependency_graph,omitempty"`
}

// Encode returns the canonical bytes of req.
func Encode(req Request) ([]byte, error) {
	if req == nil {
		return nil, fault.New(fault.KindPayloadEncode, "WFL-PAY-001", "nil request")
	}
	if req.ID() == "" {
		return nil, fault.New(fault.KindPayloadEncode, "WFL-PAY-002", "workflow id is required")
	}
	w := wire{Action: req.Action(), WorkflowID: req.ID()}
	if !utf8.ValidString(w.WorkflowID) {
		return nil, fault.New(fault.KindPayloadEncode, "WFL-PAY-005", "workflow id is not valid UTF-8")
	}
	if c, ok := req.(Create); ok && c.Graph != nil {
		g, err := canonicalGraph(c.Graph)
		if err != nil {
			return nil, err
		}
		w.DependencyGraph = g
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, fault.Wrap(fault.KindPayloadEncode, "WFL-PAY-004", "encode payload", err)
	}
	return b, nil
}

// NormalizeGraph returns the value Decode yields for graph after Encode:
// maps become map[string]any, slices []any, numbers json.Number, and a graph
// that encodes to null becomes nil.
func NormalizeGraph(graph any) (any, error) {
	if graph == nil {
		return nil, nil
	}
	g, err := canonicalGraph(graph)
	if err != nil || g == nil {
		return nil, err
	}
	return decodeGraph(g)
}

// canonicalGraph encodes graph, re-reads it and encodes the result again, so
// every value with the same JSON meaning has the same bytes. A nil result
// means the graph is null.
func canonicalGraph(graph any) ([]byte, error) {
	first, err := json.Marshal(graph)
	if err != nil {
		return nil, fault.Wrap(fault.KindPayloadEncode, "WFL-PAY-003", "dependency graph is not encodable", err)
	}
	// encoding/json replaces invalid UTF-8 silently; refuse it instead.
	if err := checkUTF8(reflect.ValueOf(graph)); err != nil {
		return nil, err
	}
	g, err := decodeGraph(first)
	if err != nil {
		return nil, fault.Wrap(fault.KindPayloadEncode, "WFL-PAY-003", "dependency graph is not encodable", err)
	}
	if g == nil {
		return nil, nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return nil, fault.Wrap(fault.KindPayloadEncode, "WFL-PAY-003", "dependency graph is not encodable", err)
	}
	return b, nil
}

// checkUTF8 walks the strings json.Marshal would emit. It runs after a
// successful Marshal, which has already refused cyclic values.
func checkUTF8(v reflect.Value) error {
	switch v.Kind() {
	case reflect.String:
		if !utf8.ValidString(v.String()) {
			return fault.New(fault.KindPayloadEncode, "WFL-PAY-006", fmt.Sprintf("dependency graph string %q is not valid UTF-8", v.String()))
		}
	case reflect.Interface, reflect.Pointer:
		if !v.IsNil() {
			return checkUTF8(v.Elem())
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if err := checkUTF8(iter.Key()); err != nil {
				return err
			}
			if err := checkUTF8(iter.Value()); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			// Byte slices encode as base64.
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := checkUTF8(v.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			f := t.Field(i)
			if (!f.IsExported() && !f.Anonymous) || f.Tag.Get("json") == "-" {
				continue
			}
			if err := checkUTF8(v.Field(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Decode parses bytes produced by Encode (or any equivalent JSON document).
func Decode(b []byte) (Request, error) {
	var w wire
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return nil, fault.Wrap(fault.KindPayloadDecode, "WFL-PAY-101", "malformed payload", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fault.New(fault.KindPayloadDecode, "WFL-PAY-102", "trailing data after payload")
	}
	if w.WorkflowID == "" {
		return nil, fault.New(fault.KindPayloadDecode, "WFL-PAY-103", "missing workflow_id")
	}

	switch w.Action {
	case ActionCreate:
		c := Create{WorkflowID: w.WorkflowID}
		if len(w.DependencyGraph) > 0 && !bytes.Equal(w.DependencyGraph, []byte("null")) {
			g, err := decodeGraph(w.DependencyGraph)
			if err != nil {
				return nil, err
			}
			c.Graph = g
		}
		return c, nil
	case ActionGet:
		if len(w.DependencyGraph) > 0 {
			return nil, fault.New(fault.KindPayloadDecode, "WFL-PAY-104", "dependency_graph is not allowed on get")
		}
		return Get{WorkflowID: w.WorkflowID}, nil
	default:
		return nil, fault.New(fault.KindPayloadDecode, "WFL-PAY-105", fmt.Sprintf("unknown action %q", w.Action))
	}
}

// DecodeGraph parses a standalone dependency graph document, such as the
// contents of a graph file, into the value shape Decode produces.
func DecodeGraph(b []byte) (any, error) {
	return decodeGraph(b)
}

// DecodeValue parses any single JSON document, such as a state value written
// by another client, into the same value shape as DecodeGraph.
func DecodeValue(b []byte) (any, error) {
	v, err := readJSON(b)
	if err != nil {
		return nil, fault.Wrap(fault.KindPayloadDecode, "WFL-PAY-108", "value is not a JSON document", err)
	}
	return v, nil
}

func decodeGraph(b []byte) (any, error) {
	g, err := readJSON(b)
	switch {
	case errors.Is(err, errTrailingData):
		return nil, fault.New(fault.KindPayloadDecode, "WFL-PAY-107", "trailing data after dependency graph")
	case err != nil:
		return nil, fault.Wrap(fault.KindPayloadDecode, "WFL-PAY-106", "malformed dependency graph", err)
	}
	return g, nil
}

var errTrailingData = errors.New("trailing data after document")

func readJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return v, nil
}

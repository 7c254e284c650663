package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/agentcard"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
)

// Handler executes one method against its decoded params and returns the
// value that becomes the response's result field.
type Handler func(params json.RawMessage) (any, error)

// Dispatcher validates envelopes and routes methods through a fixed table.
// Handler failures never escape unshaped: whatever a handler returns or
// panics with comes back as a well-formed error response.
type Dispatcher struct {
	store    *msgstore.Store
	registry *agentcard.Registry
	methods  map[string]Handler
	out      io.Writer
}

// NewDispatcher wires the method table over the given store and registry.
// Diagnostics (panics recovered at the boundary) go to out.
func NewDispatcher(store *msgstore.Store, registry *agentcard.Registry, out io.Writer) *Dispatcher {
	d := &Dispatcher{store: store, registry: registry, out: out}
	d.methods = map[string]Handler{
		MethodSendMessage:        d.sendMessage,
		MethodGetMessages:        d.getMessages,
		MethodAcknowledgeMessage: d.acknowledgeMessage,
		MethodResolveMessage:     d.resolveMessage,
		MethodGetAgentCard:       d.getAgentCard,
		MethodListAgentCards:     d.listAgentCards,
	}
	return d
}

// Methods returns the method names in the table, sorted. The discovery
// endpoint uses this; the set is fixed at construction.
func (d *Dispatcher) Methods() []string {
	names := make([]string, 0, len(d.methods))
	for name := range d.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DispatchRaw parses one request body and dispatches it. A body that does
// not decode yields a ParseError response addressed to "unknown".
func (d *Dispatcher) DispatchRaw(body []byte) Response {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return errorResponse("unknown", &Error{
			Code:    CodeParseError,
			Message: "Parse error",
			Data:    err.Error(),
		})
	}
	return d.Dispatch(&req)
}

// Dispatch validates the envelope and runs the routed handler.
func (d *Dispatcher) Dispatch(req *Request) Response {
	id := req.ID
	if id == "" {
		id = "unknown"
	}

	if req.JSONRPC != Version {
		return errorResponse(id, invalidRequest(`Invalid request: jsonrpc must be "2.0"`))
	}
	if req.Method == "" {
		return errorResponse(id, invalidRequest("Invalid request: method is required"))
	}
	if req.ID == "" {
		return errorResponse(id, invalidRequest("Invalid request: id is required"))
	}

	handler, ok := d.methods[req.Method]
	if !ok {
		return errorResponse(id, &Error{
			Code:    CodeMethodNotFound,
			Message: "Method not found: " + req.Method,
		})
	}

	params := req.Params
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}

	result, err := d.call(req.Method, handler, params)
	if err != nil {
		return errorResponse(id, shapeError(err))
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return errorResponse(id, &Error{
			Code:    CodeInternalError,
			Message: "Internal error",
			Data:    err.Error(),
		})
	}
	return Response{JSONRPC: Version, ID: id, Result: raw}
}

// call runs a handler with a recovery fence so a panic becomes an internal
// error response instead of tearing down the request loop.
func (d *Dispatcher) call(method string, h Handler, params json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(d.out, "rpc: panic in %s: %v\n", method, r)
			result = nil
			err = &Error{Code: CodeInternalError, Message: "Internal error", Data: fmt.Sprintf("%v", r)}
		}
	}()
	return h(params)
}

// shapeError maps handler failures onto wire codes. A ready-made *Error
// passes through. Not-found and lifecycle conflicts surface as
// InvalidParams, which is where callers of this protocol expect them.
// Everything else is an internal error with the cause attached as data.
func shapeError(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	if errors.Is(err, msgstore.ErrNotFound) || errors.Is(err, agentcard.ErrNotFound) ||
		errors.Is(err, msgstore.ErrResolved) {
		return invalidParams(err.Error())
	}
	return &Error{Code: CodeInternalError, Message: "Internal error", Data: err.Error()}
}

func errorResponse(id string, e *Error) Response {
	return Response{JSONRPC: Version, ID: id, Error: e}
}

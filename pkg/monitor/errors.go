package monitor

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nodewatch/solana-monitor/pkg/rpc"
)

// ErrorKind is the closed set of failure categories an operation can report.
// Callers branch on the kind, never on error strings.
type ErrorKind string

const (
	// KindTransport covers connection and HTTP-level failures.
	KindTransport ErrorKind = "transport"
	// KindDecode covers malformed or unexpected response shapes.
	KindDecode ErrorKind = "decode"
	// KindParse covers unparseable domain identifiers in operation inputs.
	KindParse ErrorKind = "parse"
	// KindNotFound covers data the node cannot serve, such as a skipped slot.
	KindNotFound ErrorKind = "not_found"
)

// OpError is the error type returned by every monitor operation. It identifies
// the operation, the endpoint and the failure category, and wraps the cause.
type OpError struct {
	Op   string
	URL  string
	Kind ErrorKind
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.URL, e.Kind, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// classifyRPCError maps an underlying client failure onto an error category.
func classifyRPCError(err error) ErrorKind {
	var rpcErr *rpc.Error
	if errors.As(err, &rpcErr) {
		if rpc.SlotNotFoundCode(rpcErr.Code) {
			return KindNotFound
		}
		return KindTransport
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return KindDecode
	}
	return KindTransport
}

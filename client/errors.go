package client

import (
	"errors"
	"fmt"
)

// ErrClosed is the cause of every call issued after Close or CloseAsync.
var ErrClosed = errors.New("client closed")

// TransportError is a failure before any response exists: dial, DNS, timeout,
// or a body that could not be read.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError carries a non-success status and the raw body as returned.
type ProtocolError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

// DecodeError means the body did not match the schema of the call's decode target.
type DecodeError struct {
	Op     string
	Target DecodeTarget
	Body   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode %s body: %v", e.Op, e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError means the request body could not be serialized; no request was sent.
type EncodeError struct {
	Op  string
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s: encode request body: %v", e.Op, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Kind returns a low-cardinality label for err, used in metrics and logs.
func Kind(err error) string {
	var (
		te *TransportError
		pe *ProtocolError
		de *DecodeError
		ee *EncodeError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &pe):
		return "protocol_error"
	case errors.As(err, &de):
		return "decode_error"
	case errors.As(err, &ee):
		return "encode_error"
	case errors.As(err, &te):
		return "transport_error"
	default:
		return "error"
	}
}

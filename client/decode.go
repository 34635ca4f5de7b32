package client

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
)

// DecodeTarget selects the decoder for a call's response body. It is bound by
// the operation that issues the call; the response Content-Type is ignored
// because the service does not declare it consistently.
type DecodeTarget int

const (
	DecodeJSON DecodeTarget = iota
	DecodeXML
)

func (t DecodeTarget) String() string {
	switch t {
	case DecodeJSON:
		return "json"
	case DecodeXML:
		return "xml"
	default:
		return fmt.Sprintf("DecodeTarget(%d)", int(t))
	}
}

func (t DecodeTarget) decode(body []byte, v any) error {
	switch t {
	case DecodeJSON:
		return json.Unmarshal(body, v)
	case DecodeXML:
		return xml.Unmarshal(body, v)
	default:
		return fmt.Errorf("unsupported decode target %s", t)
	}
}

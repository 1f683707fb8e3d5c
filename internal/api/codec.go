// Package api defines the settleup Connect services: request and response
// messages, procedure names, and handler/client constructors.
//
// Messages are plain Go structs carried as JSON. Amounts on the wire are
// decimal strings in major units ("30.50"); everything behind the API uses
// int64 minor units.
package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"connectrpc.com/connect"
)

// Codec marshals messages as JSON. It is registered under the "json" name,
// replacing connect's protobuf JSON codec.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
}

func trimBaseURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}

package facade

import (
	"encoding/json"

	"google.golang.org/protobuf/types/known/timestamppb"
)

// jsonCodec substitutes for the protoc-generated protobuf codec gRPC
// normally expects: no protoc invocation is available to this build, so
// every RPC exchanges a JSON-encoded Envelope instead (DESIGN.md
// justifies this substitution).
type jsonCodec struct{}

func (jsonCodec) Name() string { return "catalogd-json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Envelope is the single wire message every Facade RPC exchanges: an
// operation name plus its JSON-encoded params/result, applying an
// "opaque bytes in, opaque bytes out" framing uniformly across every
// operation instead of binding one RPC method per operation.
type Envelope struct {
	Operation string                 `json:"operation"`
	Payload   json.RawMessage        `json:"payload,omitempty"`
	Error     string                 `json:"error,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	IssuedAt  *timestamppb.Timestamp `json:"issued_at,omitempty"`
}

func encodePayload(v any) (json.RawMessage, error) {
	return json.Marshal(v)
}

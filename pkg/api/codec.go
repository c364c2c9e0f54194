package api

import "encoding/json"

// Codec marshals messages as plain JSON. It is registered under the name
// "json", replacing Connect's protobuf JSON codec, so handlers and clients
// can exchange ordinary Go structs.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}

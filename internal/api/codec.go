package api

import "encoding/json"

// CodecName is the gRPC content-subtype used by JSONCodec.
const CodecName = "json"

// JSONCodec carries the request and response structs of this package over
// gRPC. It satisfies google.golang.org/grpc/encoding.Codec.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSONCodec) Name() string {
	return CodecName
}

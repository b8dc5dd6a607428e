package wire

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/mem"
)

// Message is implemented by every type in this package. The gRPC codec and
// the storage layers accept anything that satisfies it.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// CodecName identifies the codec in gRPC content subtype negotiation.
const CodecName = "matchwire"

// Codec adapts this package's messages to the grpc encoding interface, so
// the server and clients can exchange them without generated code. Both
// ends force it with grpc.ForceServerCodec / grpc.ForceCodec.
type Codec struct{}

var _ encoding.CodecV2 = Codec{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(v any) (mem.BufferSlice, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("wire: cannot marshal %T", v)
	}
	b, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	return mem.BufferSlice{mem.SliceBuffer(b)}, nil
}

func (Codec) Unmarshal(data mem.BufferSlice, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("wire: cannot unmarshal into %T", v)
	}
	return m.Unmarshal(data.Materialize())
}

func init() {
	encoding.RegisterCodecV2(Codec{})
}

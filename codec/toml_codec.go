package codec

import (
	"github.com/BurntSushi/toml"
)

// TOMLCodec lets specification documents be written by hand.
type TOMLCodec struct{}

func (c *TOMLCodec) Encode(v any) ([]byte, error) {
	return toml.Marshal(v)
}

func (c *TOMLCodec) Decode(data []byte, v any) error {
	return toml.Unmarshal(data, v)
}

func (c *TOMLCodec) Type() CodecType {
	return CodecTypeTOML
}

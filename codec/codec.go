// Package codec encodes the documents and payloads the debug client exchanges.
//
// Two kinds of work live here:
//   - Document codecs (JSON, TOML) read and write specification documents,
//     whether they come from a local file or from the etcd catalog.
//   - Payload helpers shape debug request bodies (the thrift CALL envelope)
//     and make response bodies readable (JSON pretty printing).
package codec

import (
	"fmt"
	"path/filepath"
	"strings"
)

type CodecType byte

const (
	CodecTypeJSON CodecType = 0
	CodecTypeTOML CodecType = 1
)

type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Type() CodecType // 0=JSON, 1=TOML
}

func GetCodec(codecType CodecType) Codec {
	if codecType == CodecTypeTOML {
		return &TOMLCodec{}
	}

	return &JSONCodec{}
}

// ForPath picks a codec from a document's file extension.
func ForPath(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return GetCodec(CodecTypeJSON), nil
	case ".toml":
		return GetCodec(CodecTypeTOML), nil
	}
	return nil, fmt.Errorf("codec: unsupported document extension %q", filepath.Ext(path))
}

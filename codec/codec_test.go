package codec

import (
	"docs-debug/specification"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testSpecification() *specification.Specification {
	return &specification.Specification{
		Services: []specification.Service{{
			Name: "HelloService",
			Kind: specification.KindGRPC,
			Methods: []specification.Method{{
				Name: "Hello",
				Endpoints: []specification.Endpoint{{
					PathMapping:        "/armeria.grpc.HelloService/Hello",
					AvailableMimeTypes: []string{"application/json; charset=utf-8; protocol=gRPC"},
				}},
			}},
		}},
	}
}

func TestDocumentCodecs(t *testing.T) {
	for _, ct := range []CodecType{CodecTypeJSON, CodecTypeTOML} {
		cdc := GetCodec(ct)
		if cdc.Type() != ct {
			t.Fatalf("GetCodec(%d).Type() = %d", ct, cdc.Type())
		}

		original := testSpecification()
		data, err := cdc.Encode(original)
		if err != nil {
			t.Fatalf("codec %d encode: %v", ct, err)
		}

		var decoded specification.Specification
		if err := cdc.Decode(data, &decoded); err != nil {
			t.Fatalf("codec %d decode: %v", ct, err)
		}
		if diff := cmp.Diff(original, &decoded); diff != "" {
			t.Errorf("codec %d mismatch (-want +got):\n%s", ct, diff)
		}
	}
}

func TestForPath(t *testing.T) {
	if c, err := ForPath("docs/spec.JSON"); err != nil || c.Type() != CodecTypeJSON {
		t.Fatalf("expect JSON codec, got %v, %v", c, err)
	}
	if c, err := ForPath("spec.toml"); err != nil || c.Type() != CodecTypeTOML {
		t.Fatalf("expect TOML codec, got %v, %v", c, err)
	}
	if _, err := ForPath("spec.yaml"); err == nil {
		t.Fatal("expect error for yaml document")
	}
}

func TestThriftCall(t *testing.T) {
	got := ThriftCall("svc:foo", `{"x":1}`)
	want := `{"method": "svc:foo", "type": "CALL", "args": {"x":1}}`
	if got != want {
		t.Fatalf("ThriftCall = %s, want %s", got, want)
	}
}

func TestPrettyJSON(t *testing.T) {
	if got, want := PrettyJSON(`{"a":1}`), "{\n  \"a\": 1\n}"; got != want {
		t.Errorf("PrettyJSON = %q, want %q", got, want)
	}
	if got := PrettyJSON("not json"); got != "not json" {
		t.Errorf("invalid JSON should pass through, got %q", got)
	}
}

package specification

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseServiceKind(t *testing.T) {
	cases := []struct {
		in   string
		want ServiceKind
	}{
		{"THRIFT", KindThrift},
		{"framed_rpc", KindThrift},
		{"GRPC", KindGRPC},
		{"UNFRAMED_RPC_HTTP", KindGRPC},
		{"HTTP", KindAnnotatedHTTP},
		{" annotated ", KindAnnotatedHTTP},
	}
	for _, tc := range cases {
		got, err := ParseServiceKind(tc.in)
		if err != nil {
			t.Fatalf("ParseServiceKind(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseServiceKind(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := ParseServiceKind("SOAP"); err == nil {
		t.Fatal("expect error for unknown kind")
	}
}

func TestDecodeSpecification(t *testing.T) {
	doc := []byte(`{
		"services": [{
			"name": "HelloService",
			"kind": "THRIFT",
			"methods": [{
				"name": "hello",
				"endpoints": [
					{"pathMapping": "exact:/thrift", "availableMimeTypes": ["application/x-thrift; protocol=TJSON"]},
					{"pathMapping": "exact:/thrift/v2", "fragment": "v2", "availableMimeTypes": ["application/x-thrift; protocol=TJSON", "application/x-thrift; protocol=TBINARY"]}
				]
			}]
		}]
	}`)

	var spec Specification
	if err := json.Unmarshal(doc, &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}

	svc, ok := spec.Service("HelloService")
	if !ok {
		t.Fatal("expect HelloService")
	}
	if svc.Kind != KindThrift {
		t.Fatalf("expect THRIFT kind, got %v", svc.Kind)
	}

	method, ok := svc.Method("hello")
	if !ok {
		t.Fatal("expect method hello")
	}
	if got := method.Endpoints[0].Path(); got != "/thrift" {
		t.Errorf("Path() = %q, want /thrift", got)
	}

	want := []string{"application/x-thrift; protocol=TJSON", "application/x-thrift; protocol=TBINARY"}
	if diff := cmp.Diff(want, method.MimeTypes()); diff != "" {
		t.Errorf("MimeTypes() mismatch (-want +got):\n%s", diff)
	}

	if _, ok := svc.Method("goodbye"); ok {
		t.Error("expect no method goodbye")
	}
}

func TestEndpointAccepts(t *testing.T) {
	ep := Endpoint{PathMapping: "/foo", AvailableMimeTypes: []string{"application/json; charset=utf-8"}}
	if !ep.Accepts("application/json; charset=utf-8") {
		t.Error("expect endpoint to accept json")
	}
	if ep.Accepts("application/json") {
		t.Error("mime types are matched exactly")
	}
	if ep.Path() != "/foo" {
		t.Errorf("Path() without marker should be unchanged, got %q", ep.Path())
	}
}

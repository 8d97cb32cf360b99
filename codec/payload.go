package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// ThriftCall wraps args in the TJSON-over-HTTP call envelope.
// args is embedded as a raw JSON fragment, never re-quoted.
func ThriftCall(method, args string) string {
	name, _ := json.Marshal(method)
	return fmt.Sprintf(`{"method": %s, "type": "CALL", "args": %s}`, name, args)
}

// PrettyJSON indents text with two spaces. Text that is not valid JSON is
// returned untouched.
func PrettyJSON(text string) string {
	if !gjson.Valid(text) {
		return text
	}
	return strings.TrimRight(string(pretty.Pretty([]byte(text))), "\n")
}

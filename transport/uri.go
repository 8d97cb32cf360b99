package transport

import (
	"docs-debug/specification"
	"strings"
)

// encodeURI percent-encodes s the way browsers' encodeURI does: characters
// that carry URI structure (;,/?:@&=+$#) and the unreserved marks
// (-_.!~*'()) are kept, everything else is UTF-8 percent-encoded.
func encodeURI(s string) string {
	const hex = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if keepInURI(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hex[c>>4])
		sb.WriteByte(hex[c&0x0f])
	}
	return sb.String()
}

func keepInURI(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte(";,/?:@&=+$#-_.!~*'()", c) >= 0
}

// requestPath computes the annotated HTTP target before encoding.
// An explicit override wins verbatim; otherwise the exact marker is stripped
// and a query string longer than one character is appended.
func requestPath(endpoint *specification.Endpoint, override, queries string) string {
	if override != "" {
		return override
	}
	path := endpoint.Path()
	if len(queries) > 1 {
		if strings.HasPrefix(queries, "?") {
			path += queries
		} else {
			path += "?" + queries
		}
	}
	return path
}

// RequestURI is the encoded target an annotated HTTP send of endpoint uses.
func RequestURI(endpoint *specification.Endpoint, override, queries string) string {
	return encodeURI(requestPath(endpoint, override, queries))
}

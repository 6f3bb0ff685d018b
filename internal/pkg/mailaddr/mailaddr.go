// Package mailaddr extracts the bare recipient address from webhook "to"
// headers. Mail providers deliver either a bare address or an RFC 2822
// decorated form like `Shop Name <shop@inbound.example>`.
package mailaddr

import "strings"

// ExtractAddress returns the address part of the given header value,
// trimmed and lowercased so it can be compared against stored inbound
// addresses. An empty input yields an empty string.
func ExtractAddress(header string) string {
	addr := strings.TrimSpace(header)
	if start := strings.LastIndex(addr, "<"); start >= 0 {
		if end := strings.Index(addr[start:], ">"); end > 0 {
			addr = addr[start+1 : start+end]
		}
	}
	return strings.ToLower(strings.TrimSpace(addr))
}

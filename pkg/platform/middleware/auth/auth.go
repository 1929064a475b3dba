// Package auth reads bearer credentials off incoming requests.
package auth

import (
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// BearerToken returns the credential presented in the Authorization header.
//
//   - no header, or an empty one: "" (nothing presented)
//   - "Bearer <token>": <token>
//   - anything else, including "Bearer" with nothing after it: the raw
//     header value, which then fails verification
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if token, ok := strings.CutPrefix(header, bearerPrefix); ok && token != "" {
		return token
	}
	return header
}

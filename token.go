package kvfront

import (
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// tokenPathPrefixes lists the routes that carry a token as their next path segment.
var tokenPathPrefixes = []string{
	"/token/",
	"/measure/put/",
	"/measure/get/",
}

// BearerToken extracts a bearer token from the request.
//
// Sources are checked in order and the first non-blank candidate wins:
//  1. the "Authorization: Bearer <token>" header
//  2. the "token" query parameter
//  3. the segment following /token/, /measure/put/ or /measure/get/ in the path
//
// Candidates are trimmed; blank ones fall through to the next source.
// The token is not validated in any way.
func BearerToken(r *http.Request) (string, bool) {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, bearerPrefix) {
		if token := strings.TrimSpace(auth[len(bearerPrefix):]); token != "" {
			return token, true
		}
	}

	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token, true
	}

	return tokenFromPath(r.URL.Path)
}

func tokenFromPath(p string) (string, bool) {
	for _, prefix := range tokenPathPrefixes {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok {
			continue
		}
		segment, _, _ := strings.Cut(rest, "/")
		if token := strings.TrimSpace(segment); token != "" {
			return token, true
		}
		return "", false
	}
	return "", false
}

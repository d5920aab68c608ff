package identity

import (
	"net/http"
	"strings"
)

// Headers read by the header-based extractor. Suitable behind a trusted
// proxy that authenticates the user and forwards identity headers.
const (
	HeaderUserID = "X-User-Id"
	HeaderName   = "X-User-Name"
	HeaderGroups = "X-User-Groups" // comma-separated
)

// HeaderMiddleware attaches a Caller extracted from request headers. Requests
// without an X-User-Id pass through with no caller set.
func HeaderMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(HeaderUserID)
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		caller := Caller{
			UserID: userID,
			Name:   r.Header.Get(HeaderName),
			Groups: splitGroups(r.Header.Get(HeaderGroups)),
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

func splitGroups(raw string) []string {
	if raw == "" {
		return nil
	}
	var groups []string
	for _, g := range strings.Split(raw, ",") {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}
	return groups
}

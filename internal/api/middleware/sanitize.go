package middleware

import (
	"net/http"
	"strings"

	"github.com/nginxforge/nginxforge/internal/util"
)

const maxLoggedValueLen = 200

var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"cookie":              {},
	"set-cookie":          {},
	"proxy-authorization": {},
	"x-api-key":           {},
	"x-auth-token":        {},
}

// SanitizeHeaders returns a copy of the headers safe for logging. Sensitive
// headers are redacted, everything else is cleaned and truncated.
func SanitizeHeaders(h http.Header) map[string][]string {
	if h == nil {
		return nil
	}
	out := make(map[string][]string, len(h))
	for k, vals := range h {
		if _, ok := sensitiveHeaders[strings.ToLower(k)]; ok {
			out[k] = []string{"<redacted>"}
			continue
		}
		cleaned := make([]string, 0, len(vals))
		for _, v := range vals {
			cleaned = append(cleaned, truncate(util.SanitizeForLog(v)))
		}
		out[k] = cleaned
	}
	return out
}

// SanitizePath prepares a request path for safe logging. Query parameters
// are dropped.
func SanitizePath(p string) string {
	if i := strings.Index(p, "?"); i != -1 {
		p = p[:i]
	}
	return truncate(util.SanitizeForLog(p))
}

func truncate(s string) string {
	if len(s) > maxLoggedValueLen {
		return s[:maxLoggedValueLen]
	}
	return s
}

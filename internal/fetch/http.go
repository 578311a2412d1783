package fetch

import "net/http"

// KindForStatus maps an HTTP response status to the gateway error taxonomy.
// Providers share this so a 429 degrades the same way regardless of source.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	default:
		return KindNetwork
	}
}

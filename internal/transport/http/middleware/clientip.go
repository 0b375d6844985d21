package middleware

import (
	"net"
	"net/http"
)

// ClientIP returns the host part of RemoteAddr. Forwarding headers are not
// read here; when the service runs behind a trusted proxy, chi's RealIP
// middleware rewrites RemoteAddr from them first.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

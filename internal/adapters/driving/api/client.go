package api

import (
	"net"
	"net/http"
)

// clientIdentity is the host part of RemoteAddr. Forwarding headers are
// honoured only through middleware.RealIP, mounted for trusted proxies.
func clientIdentity(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

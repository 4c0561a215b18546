package mw

import (
	"net"
	"net/http"

	"github.com/perchdesk/perch/internal/logger"
	"github.com/perchdesk/perch/internal/utils"
)

// LoopbackOnly rejects requests whose peer is not a loopback address. The
// settings surface carries trust decisions for the whole desktop shell,
// so only processes on this machine may talk to it. enforce=false is for
// tests that dial through httptest with synthetic remote addresses.
func LoopbackOnly(enforce bool, log logger.Logger) func(http.Handler) http.Handler {
	if !enforce {
		log.Debug("LoopbackOnly: disabled, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := utils.ParseHostNoPort(r.RemoteAddr)
			ip := net.ParseIP(host)
			if ip == nil || !ip.IsLoopback() {
				log.Warnf("LoopbackOnly: peer %s REJECTED", r.RemoteAddr)
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

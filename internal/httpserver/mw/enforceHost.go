package mw

import (
	"net/http"
	"strings"

	"github.com/perchdesk/perch/internal/logger"
	"github.com/perchdesk/perch/internal/utils"
)

// EnforceHost allows requests only if r.Host matches one of the allowed hosts.
// The port is ignored and wildcard patterns like "*.example.com" are supported.
// If allowedHosts is empty, it acts as a passthrough.
//
// On a loopback server this is the DNS-rebinding defense: a hostile page
// resolving its own name to 127.0.0.1 still sends its own Host header.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	if len(allowedHosts) == 0 {
		log.Debug("EnforceHost: empty allowedHosts, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debugf("EnforceHost: initialized with hosts=%v", allowedHosts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := utils.ParseHostNoPort(r.Host)

			// Check exact matches and wildcard patterns
			for _, pattern := range allowedHosts {
				if matchHost(host, pattern) {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warnf("EnforceHost: Host %s REJECTED", r.Host)
			w.WriteHeader(http.StatusForbidden)
		})
	}
}

// matchHost checks if host matches pattern (supports wildcard *.example.com)
func matchHost(host, pattern string) bool {
	// Exact match
	if strings.EqualFold(host, pattern) {
		return true
	}

	// Wildcard match: *.example.com matches sub.example.com
	if strings.HasPrefix(pattern, "*.") {
		suffix := pattern[1:] // Remove * to get .example.com
		return strings.HasSuffix(strings.ToLower(host), strings.ToLower(suffix))
	}

	return false
}

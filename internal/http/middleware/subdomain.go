package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

const subdomainKey contextKey = "firm_subdomain"

// Subdomain extracts the firm subdomain from the request host. Firms are
// reached as <subdomain>.lexfirm.example; bare hosts, IPs and localhost carry
// no subdomain and pass through unchanged.
func Subdomain(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub := extractSubdomain(r.Host)
		if sub != "" {
			ctx := context.WithValue(r.Context(), subdomainKey, sub)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// GetSubdomain retrieves the firm subdomain from the context.
func GetSubdomain(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subdomainKey).(string)
	return sub, ok
}

func extractSubdomain(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" || host == "localhost" || net.ParseIP(host) != nil {
		return ""
	}

	labels := strings.Split(host, ".")
	// Need at least sub.domain.tld to have a subdomain at all.
	if len(labels) < 3 {
		return ""
	}
	if labels[0] == "www" || labels[0] == "api" {
		return ""
	}
	return labels[0]
}

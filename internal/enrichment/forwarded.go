package enrichment

import (
	"context"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"
)

type forwardedForKey struct{}

// WithForwardedFor attaches the end user's address; the enrichment service
// derives its location hint from X-Forwarded-For.
func WithForwardedFor(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, forwardedForKey{}, ip)
}

func ForwardedFor(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(forwardedForKey{}).(string)
	return ip
}

// NewCookieJar returns a jar scoped by the public suffix list, one per browser
// session.
func NewCookieJar() (*cookiejar.Jar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

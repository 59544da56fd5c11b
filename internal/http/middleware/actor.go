// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the anonymous actor identity. The service has no
// accounts: the client network address is the identity, taken from the
// first X-Forwarded-For entry, then X-Real-IP, then the literal "unknown".
// Both headers are set by the fronting proxy; the socket address is never
// used because behind a proxy it names the proxy, not the actor.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/unsent-letters/internal/domain"
)

const ctxKeyActorIP = "actor.ip"

// ActorIP returns the actor address for c, caching it on the context.
func ActorIP(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyActorIP); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	ip := actorIPFromHeaders(c.GetHeader("X-Forwarded-For"), c.GetHeader("X-Real-IP"))
	c.Set(ctxKeyActorIP, ip)
	return ip
}

func actorIPFromHeaders(forwardedFor, realIP string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP = strings.TrimSpace(realIP); realIP != "" {
		return realIP
	}
	return domain.UnknownActor
}

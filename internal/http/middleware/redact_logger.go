// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the access log. Letters and comments are anonymous, so the
// log must not undo that: bodies are never logged, credentials sent by the
// web client (Authorization, apikey, cookies) are masked, and anything that
// looks like an email address or phone number in the query string or a
// header is replaced. The actor address and the public letter or capsule id
// are logged as-is; they are what operators need to act on abuse.
//
//	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
//	    MaskHeaders: []string{"X-Api-Key"},
//	}))
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const redacted = "[REDACTED]"

// RedactOptions adds header names (case-insensitive) to the built-in mask
// list of Authorization, Cookie, Set-Cookie and apikey.
type RedactOptions struct {
	MaskHeaders []string
}

var (
	// UUIDs go first so the phone pattern never eats their digit groups.
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

type scrubber struct {
	masked map[string]struct{}
}

func newScrubber(opts RedactOptions) scrubber {
	s := scrubber{masked: map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
		"apikey":        {},
	}}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			s.masked[h] = struct{}{}
		}
	}
	return s
}

func (scrubber) text(v string) string {
	if v == "" {
		return v
	}
	v = uuidRE.ReplaceAllString(v, "[REDACTED:id]")
	v = emailRE.ReplaceAllString(v, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(v, "[REDACTED:phone]")
}

func (s scrubber) headers(h map[string][]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, vv := range h {
		if _, ok := s.masked[strings.ToLower(k)]; ok {
			d.Str(k, redacted)
			continue
		}
		d.Str(k, s.text(strings.Join(vv, ", ")))
	}
	return d
}

// RedactingLogger attaches the request-scoped logger (request_id, actor_ip)
// read by LoggerFrom and zerolog.Ctx, then writes one "http_request" line per
// request: info below 400, warn for 4xx, error for 5xx or recorded gin errors.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	s := newScrubber(opts)

	return func(c *gin.Context) {
		start := time.Now()
		lg := attachLogger(c)
		route := routeLabel(c)
		path := c.FullPath()
		if path == "" {
			path = s.text(c.Request.URL.Path)
		}
		query := truncate(s.text(c.Request.URL.RawQuery), maxQueryLogLength)
		hdrs := s.headers(c.Request.Header)

		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= 500 || len(c.Errors) > 0:
			ev = lg.Error()
		case status >= 400:
			ev = lg.Warn()
		default:
			ev = lg.Info()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		if id := c.Param("id"); id != "" {
			ev = ev.Str("resource_id", id)
		}

		ev.
			Str("surface", surfaceOf(route)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Dict("headers", hdrs).
			Msg("http_request")
	}
}

// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Two surfaces are mounted:
//   - /interaction-guard at the root, with its own permissive CORS contract
//   - the versioned letters and capsules API under cfg.APIBasePath
//     (default /api/v1)
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/unsent-letters/docs"
	"github.com/tbourn/unsent-letters/internal/config"
	"github.com/tbourn/unsent-letters/internal/http/handlers"
	"github.com/tbourn/unsent-letters/internal/http/middleware"
	"github.com/tbourn/unsent-letters/internal/services"
)

// GuardPath is where the interaction guard is mounted.
const GuardPath = "/interaction-guard"

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. cache may be nil, in which case engagement is always read from db.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with header masking
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per actor IP, bypass on replay; not applied to the guard,
//     whose 429 is reserved for guard denials)
//  9. CORS (skipped for the guard, which sets its own), security headers, gzip
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cache services.EngagementCache, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	letterSvc := &services.LetterService{
		DB:             db,
		MaxRunes:       cfg.Letters.MaxLetterRunes,
		FeedMax:        cfg.Letters.FeedMax,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}
	commentSvc := &services.CommentService{
		DB:       db,
		Cache:    cache,
		MaxRunes: cfg.Letters.MaxCommentRunes,
	}
	engagementSvc := &services.EngagementService{DB: db, Cache: cache}
	guardSvc := services.NewGuardService(db, cache, cfg.Letters.AllowedEmojis)
	capsuleSvc := &services.CapsuleService{
		DB:       db,
		MaxRunes: cfg.Capsules.MaxContentRunes,
		MinLead:  cfg.Capsules.MinLead,
		FeedMax:  cfg.Capsules.FeedMax,
	}

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	// The guard answers with its own CORS headers on every response,
	// including panic responses produced further down.
	r.Use(onPath(GuardPath, handlers.GuardCORS()))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiBase := cfg.APIBasePath
	lettersRoute := joinPath(apiBase, "/letters")
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, actorIP, route, key string, now time.Time) (bool, error) {
			if route != lettersRoute {
				return false, nil
			}
			return letterSvc.HasReplay(ctx, actorIP, key, now)
		},
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByActorIP())
	r.Use(skipPath(GuardPath, rl.Handler()))

	for _, mw := range apiCORS(cfg.CORS) {
		r.Use(skipPath(GuardPath, mw))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = apiBase
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(guardSvc, letterSvc, commentSvc, engagementSvc, capsuleSvc)

	guard := r.Group(GuardPath)
	{
		guard.POST("", h.InteractionGuard)
		guard.OPTIONS("", h.InteractionGuardPreflight)
	}

	api := groupWithPrefix(r, apiBase)
	{
		api.POST("/letters", h.CreateLetter)
		api.GET("/letters", h.ListLetters)
		api.GET("/letters/:id", h.GetLetter)

		api.POST("/letters/:id/comments", h.CreateComment)
		api.GET("/letters/:id/comments", h.ListComments)

		api.GET("/letters/:id/engagement", h.GetEngagement)

		api.POST("/capsules", h.CreateCapsule)
		api.GET("/capsules", h.ListCapsules)
		api.GET("/capsules/:id", h.GetCapsule)
	}
}

// apiCORS builds the CORS posture for the letters API. With no allowlist
// every origin is accepted; otherwise allowed origins are echoed back.
func apiCORS(cc config.CORSConfig) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			"Apikey", "X-Client-Info", middleware.HeaderIdempotencyKey,
			"If-None-Match",
		},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag", "Idempotency-Replayed"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(cc.AllowedOrigins) == 0 {
		base.AllowAllOrigins = true
		// Force ACAO: * even for requests without an Origin header.
		force := func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		}
		return []gin.HandlerFunc{force, cors.New(base)}
	}

	allowed := make(map[string]struct{}, len(cc.AllowedOrigins))
	for _, o := range cc.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	echo := func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	}
	base.AllowOrigins = cc.AllowedOrigins
	return []gin.HandlerFunc{echo, cors.New(base)}
}

// onPath runs mw only for path.
func onPath(path string, mw gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.FullPath() != path {
			c.Next()
			return
		}
		mw(c)
	}
}

// skipPath runs mw for every route except path.
func skipPath(path string, mw gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.FullPath() == path {
			c.Next()
			return
		}
		mw(c)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

// joinPath appends sub to a normalized base path.
func joinPath(base, sub string) string {
	if base == "" || base == "/" {
		return sub
	}
	return base + sub
}

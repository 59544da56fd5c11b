package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/unsent-letters/internal/domain"
	"github.com/tbourn/unsent-letters/internal/http/middleware"
	"github.com/tbourn/unsent-letters/internal/services"
)

// ---------- stub services ----------

type stubGuard struct {
	check func(context.Context, services.GuardRequest) (services.Decision, error)
	last  services.GuardRequest
}

func (s *stubGuard) Check(ctx context.Context, req services.GuardRequest) (services.Decision, error) {
	s.last = req
	if s.check != nil {
		return s.check(ctx, req)
	}
	return services.Decision{}, nil
}

type stubLetters struct {
	create    func(context.Context, services.CreateLetterInput) (*domain.Letter, bool, error)
	get       func(context.Context, string) (*domain.Letter, error)
	listPage  func(context.Context, string, int, int) ([]domain.Letter, int64, error)
	feedStats func(context.Context, string) (int64, *time.Time, error)
}

func (s stubLetters) Create(ctx context.Context, in services.CreateLetterInput) (*domain.Letter, bool, error) {
	if s.create != nil {
		return s.create(ctx, in)
	}
	return &domain.Letter{ID: "L1", Text: in.Text}, false, nil
}

func (s stubLetters) Get(ctx context.Context, id string) (*domain.Letter, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &domain.Letter{ID: id, Text: "hi"}, nil
}

func (s stubLetters) ListPage(ctx context.Context, tag string, page, pageSize int) ([]domain.Letter, int64, error) {
	if s.listPage != nil {
		return s.listPage(ctx, tag, page, pageSize)
	}
	return nil, 0, nil
}

func (s stubLetters) FeedStats(ctx context.Context, tag string) (int64, *time.Time, error) {
	if s.feedStats != nil {
		return s.feedStats(ctx, tag)
	}
	return 0, nil, nil
}

type stubComments struct {
	add      func(context.Context, string, string, string) (*domain.Comment, error)
	listPage func(context.Context, string, int, int) ([]domain.Comment, int64, error)
	stats    func(context.Context, string) (int64, *time.Time, error)
}

func (s stubComments) Add(ctx context.Context, actorIP, letterID, text string) (*domain.Comment, error) {
	if s.add != nil {
		return s.add(ctx, actorIP, letterID, text)
	}
	return &domain.Comment{ID: "C1", LetterID: letterID, Comment: text}, nil
}

func (s stubComments) ListPage(ctx context.Context, letterID string, page, pageSize int) ([]domain.Comment, int64, error) {
	if s.listPage != nil {
		return s.listPage(ctx, letterID, page, pageSize)
	}
	return nil, 0, nil
}

func (s stubComments) Stats(ctx context.Context, letterID string) (int64, *time.Time, error) {
	if s.stats != nil {
		return s.stats(ctx, letterID)
	}
	return 0, nil, nil
}

type stubEngagement struct {
	summary func(context.Context, string) (*domain.Engagement, error)
}

func (s stubEngagement) Summary(ctx context.Context, letterID string) (*domain.Engagement, error) {
	if s.summary != nil {
		return s.summary(ctx, letterID)
	}
	return &domain.Engagement{LetterID: letterID, Reactions: map[string]int64{}}, nil
}

type stubCapsules struct {
	create    func(context.Context, services.CreateCapsuleInput) (*domain.MemoryCapsule, error)
	open      func(context.Context, string) (*domain.MemoryCapsule, bool, error)
	listPage  func(context.Context, int, int) ([]domain.MemoryCapsule, int64, error)
	feedStats func(context.Context) (int64, *time.Time, error)
}

func (s stubCapsules) Create(ctx context.Context, in services.CreateCapsuleInput) (*domain.MemoryCapsule, error) {
	if s.create != nil {
		return s.create(ctx, in)
	}
	return &domain.MemoryCapsule{ID: "K1", Content: in.Content, UnlockDate: in.UnlockDate}, nil
}

func (s stubCapsules) Open(ctx context.Context, id string) (*domain.MemoryCapsule, bool, error) {
	if s.open != nil {
		return s.open(ctx, id)
	}
	return nil, false, services.ErrCapsuleNotFound
}

func (s stubCapsules) ListPublicPage(ctx context.Context, page, pageSize int) ([]domain.MemoryCapsule, int64, error) {
	if s.listPage != nil {
		return s.listPage(ctx, page, pageSize)
	}
	return nil, 0, nil
}

func (s stubCapsules) FeedStats(ctx context.Context) (int64, *time.Time, error) {
	if s.feedStats != nil {
		return s.feedStats(ctx)
	}
	return 0, nil, nil
}

// ---------- router + request helpers ----------

// newTestRouter mounts every handler the way the real router does, minus
// rate limiting and observability.
func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))

	g := r.Group("/interaction-guard", GuardCORS())
	g.POST("", h.InteractionGuard)
	g.OPTIONS("", h.InteractionGuardPreflight)

	api := r.Group("/api/v1")
	api.POST("/letters", h.CreateLetter)
	api.GET("/letters", h.ListLetters)
	api.GET("/letters/:id", h.GetLetter)
	api.POST("/letters/:id/comments", h.CreateComment)
	api.GET("/letters/:id/comments", h.ListComments)
	api.GET("/letters/:id/engagement", h.GetEngagement)
	api.POST("/capsules", h.CreateCapsule)
	api.GET("/capsules", h.ListCapsules)
	api.GET("/capsules/:id", h.GetCapsule)
	return r
}

func newHandlers(g GuardService, l LetterService, c CommentService, e EngagementService) *Handlers {
	if g == nil {
		g = &stubGuard{}
	}
	if l == nil {
		l = stubLetters{}
	}
	if c == nil {
		c = stubComments{}
	}
	if e == nil {
		e = stubEngagement{}
	}
	return New(g, l, c, e, stubCapsules{})
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

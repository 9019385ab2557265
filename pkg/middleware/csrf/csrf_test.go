package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func serve(cfg Config, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(Middleware(cfg))
	h := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/*", h)
	e.POST("/*", h)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.SkipPaths = []string{"/api/auth/login"}
	cfg.SkipPrefixes = []string{"/api/webhooks/"}

	tests := []struct {
		name     string
		build    func() *http.Request
		wantCode int
	}{
		{
			name:     "get issues token",
			build:    func() *http.Request { return httptest.NewRequest(http.MethodGet, "http://example.com/api/products", nil) },
			wantCode: http.StatusNoContent,
		},
		{
			name: "post without token",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "http://example.com/api/cart", nil)
				r.Header.Set("Origin", "http://example.com")
				return r
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "post with matching token",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "http://example.com/api/cart", nil)
				r.Header.Set("Origin", "http://example.com")
				r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
				r.Header.Set("X-CSRF-Token", "tok")
				return r
			},
			wantCode: http.StatusNoContent,
		},
		{
			name: "post cross origin",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "http://example.com/api/cart", nil)
				r.Header.Set("Origin", "http://evil.test")
				r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
				r.Header.Set("X-CSRF-Token", "tok")
				return r
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "skip exact path",
			build:    func() *http.Request { return httptest.NewRequest(http.MethodPost, "http://example.com/api/auth/login", nil) },
			wantCode: http.StatusNoContent,
		},
		{
			name:     "skip prefix",
			build:    func() *http.Request { return httptest.NewRequest(http.MethodPost, "http://example.com/api/webhooks/stripe", nil) },
			wantCode: http.StatusNoContent,
		},
		{
			name: "skip bearer",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "http://example.com/api/checkout/create-session", nil)
				r.Header.Set(echo.HeaderAuthorization, "Bearer abc")
				return r
			},
			wantCode: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serve(cfg, tt.build())
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestMiddleware_AllowedOrigins(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.AllowedOrigins = []string{"https://shop.example.com/"}

	post := func(origin, referer string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "http://api.example.com/api/cart/items", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		if referer != "" {
			r.Header.Set("Referer", referer)
		}
		r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
		r.Header.Set("X-CSRF-Token", "tok")
		return r
	}

	tests := []struct {
		name     string
		req      *http.Request
		wantCode int
	}{
		{name: "allow-listed origin", req: post("https://shop.example.com", ""), wantCode: http.StatusNoContent},
		{name: "allow-listed referer", req: post("", "https://SHOP.example.com/checkout"), wantCode: http.StatusNoContent},
		{name: "own origin still passes", req: post("http://api.example.com", ""), wantCode: http.StatusNoContent},
		{name: "scheme must match", req: post("http://shop.example.com", ""), wantCode: http.StatusForbidden},
		{name: "other origin", req: post("https://evil.test", ""), wantCode: http.StatusForbidden},
		{name: "no origin", req: post("", ""), wantCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantCode, serve(cfg, tt.req).Code)
		})
	}
}

package httpserver

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/kicks_premium/services/cart/internal/service"
)

const (
	cartCookieTTL = 30 * 24 * time.Hour
	// Browsers drop cookies whose name=value pair exceeds this.
	maxCookieBytes = 4096
)

// CookieStorage keeps cart state in a base64url cookie of the same name as
// the storage key. The cookie is client owned and never trusted for prices.
type CookieStorage struct {
	c echo.Context
}

func NewCookieStorage(c echo.Context) *CookieStorage {
	return &CookieStorage{c: c}
}

func (s *CookieStorage) Load(key string) ([]byte, error) {
	ck, err := s.c.Cookie(key)
	if err != nil || ck.Value == "" {
		return nil, nil
	}
	return base64.RawURLEncoding.DecodeString(ck.Value)
}

func (s *CookieStorage) Save(key string, data []byte) error {
	value := base64.RawURLEncoding.EncodeToString(data)
	if n := len(key) + 1 + len(value); n > maxCookieBytes {
		return fmt.Errorf("%w: cookie would be %d bytes", service.ErrTooLarge, n)
	}
	s.c.SetCookie(&http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(cartCookieTTL),
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

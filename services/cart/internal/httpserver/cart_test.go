package httpserver

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/kicks_premium/services/cart/internal/models"
	"github.com/Skotchmaster/kicks_premium/services/cart/internal/service"
)

type cartResponse struct {
	Items  []models.CartItem `json:"items"`
	IsOpen bool              `json:"isOpen"`
	Total  int64             `json:"total"`
	Count  int               `json:"count"`
}

func newTestServer() *echo.Echo {
	e := echo.New()
	Register(e, &Deps{CartHandler: &CartHTTP{}})
	return e
}

// client replays the cart cookie between requests like a browser would.
type client struct {
	e      *echo.Echo
	cookie *http.Cookie
}

func (cl *client) do(t *testing.T, method, path, body string) (int, cartResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}
	rec := httptest.NewRecorder()
	cl.e.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == service.StorageKey {
			cl.cookie = &http.Cookie{Name: ck.Name, Value: ck.Value}
		}
	}

	var resp cartResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func TestCartHTTP_Flow(t *testing.T) {
	t.Parallel()
	cl := &client{e: newTestServer()}

	code, resp := cl.do(t, http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.Items)

	code, resp = cl.do(t, http.MethodPost, "/api/cart/items", `{"product_id":"p1","name":"Air Jordan 1","price":5000,"size":"42","quantity":2}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(10000), resp.Total)

	code, resp = cl.do(t, http.MethodPost, "/api/cart/items", `{"product_id":"p1","name":"Air Jordan 1","price":5000,"size":"42","quantity":1}`)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 3, resp.Count)

	code, resp = cl.do(t, http.MethodPatch, "/api/cart/items", `{"product_id":"p1","size":"42","quantity":1}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, resp.Count)

	code, resp = cl.do(t, http.MethodPost, "/api/cart/toggle", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.IsOpen)

	code, resp = cl.do(t, http.MethodDelete, "/api/cart/items?product_id=p1&size=42", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.Items)
	assert.True(t, resp.IsOpen)

	code, resp = cl.do(t, http.MethodDelete, "/api/cart", "")
	require.Equal(t, http.StatusOK, code)
	assert.False(t, resp.IsOpen)
}

func TestCartHTTP_CookieIsBase64JSON(t *testing.T) {
	t.Parallel()
	cl := &client{e: newTestServer()}

	code, _ := cl.do(t, http.MethodPost, "/api/cart/items", `{"product_id":"p9","price":100,"size":"40"}`)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, cl.cookie)

	raw, err := base64.RawURLEncoding.DecodeString(cl.cookie.Value)
	require.NoError(t, err)
	var st models.State
	require.NoError(t, json.Unmarshal(raw, &st))
	require.Len(t, st.Items, 1)
	assert.Equal(t, 1, st.Items[0].Quantity)
}

func TestCartHTTP_BadInput(t *testing.T) {
	t.Parallel()
	cl := &client{e: newTestServer()}

	code, _ := cl.do(t, http.MethodPost, "/api/cart/items", `{"name":"no id"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = cl.do(t, http.MethodDelete, "/api/cart/items", "")
	assert.Equal(t, http.StatusBadRequest, code)

	cl.cookie = &http.Cookie{Name: service.StorageKey, Value: "!!!not-base64"}
	code, resp := cl.do(t, http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.Items)
}

func TestCartHTTP_FullCartIsRejectedAndKept(t *testing.T) {
	t.Parallel()
	cl := &client{e: newTestServer()}

	saved := 0
	for i := 0; i < 40; i++ {
		body := fmt.Sprintf(`{"product_id":%q,"name":"Air Jordan 1 Retro High OG Chicago","brand":"Nike","price":18000,"image":"https://res.cloudinary.com/kicks/image/upload/v1700000000/products/aj1-%02d.jpg","size":"42","quantity":1}`, uuid.NewString(), i)
		code, _ := cl.do(t, http.MethodPost, "/api/cart/items", body)
		if code == http.StatusRequestEntityTooLarge {
			break
		}
		require.Equal(t, http.StatusOK, code)
		saved++
	}
	require.Less(t, saved, 40, "cart never reported the cookie limit")
	require.Positive(t, saved)
	assert.LessOrEqual(t, len(service.StorageKey)+1+len(cl.cookie.Value), maxCookieBytes)

	code, resp := cl.do(t, http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp.Items, saved)
}

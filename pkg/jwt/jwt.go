package jwt

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

func CreateCookie(name string, value string, path string, expTime time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie(name, path string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionCookies returns the access and refresh cookie pair.
func SessionCookies(access string, accessExp time.Time, refresh string, refreshExp time.Time) []*http.Cookie {
	return []*http.Cookie{
		CreateCookie(AccessCookie, access, "/", accessExp),
		CreateCookie(RefreshCookie, refresh, "/", refreshExp),
	}
}

func ClearSessionCookies() []*http.Cookie {
	return []*http.Cookie{
		DeleteCookie(AccessCookie, "/"),
		DeleteCookie(RefreshCookie, "/"),
	}
}

func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func NewJTI() string { return uuid.NewString() }

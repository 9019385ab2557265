package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// ExceptPaths runs mw for every request except those whose path equals one
// of paths or sits below it.
func ExceptPaths(mw echo.MiddlewareFunc, paths ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		guarded := mw(next)
		return func(c echo.Context) error {
			p := c.Request().URL.Path
			for _, open := range paths {
				if p == open || strings.HasPrefix(p, open+"/") || strings.HasPrefix(p, open+".") {
					return next(c)
				}
			}
			return guarded(c)
		}
	}
}

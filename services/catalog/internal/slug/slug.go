// Package slug derives URL slugs and SKUs from product data.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const Fallback = "product"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Make lowercases s, strips diacritics and joins the remaining
// alphanumeric runs with single hyphens.
func Make(s string) string {
	out := strings.Trim(nonAlnum.ReplaceAllString(fold(s), "-"), "-")
	if out == "" {
		return Fallback
	}
	return out
}

// WithSuffix makes a colliding slug unique with the creation timestamp.
func WithSuffix(base string, now time.Time) string {
	return base + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}

// SKU builds BRAND-SLUGPREFIX-TIMESTAMP, e.g. NIK-AIRJORDA-LOYEU2VF.
func SKU(brand, productSlug string, now time.Time) string {
	b := truncate(nonAlnum.ReplaceAllString(fold(brand), ""), 3)
	if b == "" {
		b = "kp"
	}
	p := truncate(strings.ReplaceAll(productSlug, "-", ""), 8)
	if p == "" {
		p = Fallback
	}
	return strings.ToUpper(b + "-" + p + "-" + strconv.FormatInt(now.UnixMilli(), 36))
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Package snapshot stores the purchased cart lines in Stripe metadata.
//
// Stripe caps metadata values at 500 characters and a params object at 50
// keys. A snapshot that fits goes under cart_items; a longer one is split
// on rune boundaries into cart_items_0..n-1 with cart_items_chunks=n.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Skotchmaster/kicks_premium/services/payment/internal/models"
)

const (
	KeyItems  = "cart_items"
	KeyChunks = "cart_items_chunks"

	MaxValueLen = 500
	// MaxChunks leaves room for the other metadata keys set at checkout.
	MaxChunks = 40
)

var ErrTooLarge = errors.New("cart snapshot exceeds metadata limits")

func Encode(items []models.LineItem) (string, error) {
	if items == nil {
		items = []models.LineItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Put writes the snapshot for items into md.
func Put(md map[string]string, items []models.LineItem) error {
	raw, err := Encode(items)
	if err != nil {
		return err
	}
	if utf8.RuneCountInString(raw) <= MaxValueLen {
		md[KeyItems] = raw
		return nil
	}

	chunks := split(raw, MaxValueLen)
	if len(chunks) > MaxChunks {
		return fmt.Errorf("%w: %d chunks", ErrTooLarge, len(chunks))
	}
	for i, c := range chunks {
		md[chunkKey(i)] = c
	}
	md[KeyChunks] = strconv.Itoa(len(chunks))
	return nil
}

// Decode reads the snapshot back from md. Missing metadata yields no items.
func Decode(md map[string]string) ([]models.LineItem, error) {
	raw, err := join(md)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var items []models.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return items, nil
}

func join(md map[string]string) (string, error) {
	v, ok := md[KeyChunks]
	if !ok {
		return md[KeyItems], nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > MaxChunks {
		return "", fmt.Errorf("invalid %s %q", KeyChunks, v)
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		part, ok := md[chunkKey(i)]
		if !ok {
			return "", fmt.Errorf("missing %s", chunkKey(i))
		}
		sb.WriteString(part)
	}
	return sb.String(), nil
}

func split(s string, size int) []string {
	var out []string
	for len(s) > 0 {
		end, count := 0, 0
		for end < len(s) && count < size {
			_, w := utf8.DecodeRuneInString(s[end:])
			end += w
			count++
		}
		out = append(out, s[:end])
		s = s[end:]
	}
	return out
}

func chunkKey(i int) string {
	return KeyItems + "_" + strconv.Itoa(i)
}

package snapshot

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/kicks_premium/services/payment/internal/models"
)

func lines(n int, name string) []models.LineItem {
	out := make([]models.LineItem, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.LineItem{
			ID:    fmt.Sprintf("00000000-0000-0000-0000-%012d", i),
			Name:  name,
			Brand: "Nike",
			Price: 18999,
			Qty:   1,
			Size:  "42",
			Img:   "https://cdn.example.com/p.jpg",
		})
	}
	return out
}

func TestPut_SmallSnapshotUsesSingleKey(t *testing.T) {
	t.Parallel()

	md := map[string]string{}
	require.NoError(t, Put(md, lines(1, "Air Max 90")))

	assert.Contains(t, md, KeyItems)
	assert.NotContains(t, md, KeyChunks)

	got, err := Decode(md)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Air Max 90", got[0].Name)
	assert.Equal(t, int64(18999), got[0].Price)
}

func TestPut_LargeSnapshotIsChunked(t *testing.T) {
	t.Parallel()

	items := lines(8, "Air Jordan 1 Retro High OG — Chicago Lost & Found ñ")
	md := map[string]string{}
	require.NoError(t, Put(md, items))

	assert.NotContains(t, md, KeyItems)
	require.Contains(t, md, KeyChunks)
	for k, v := range md {
		if strings.HasPrefix(k, KeyItems+"_") && k != KeyChunks {
			assert.LessOrEqual(t, utf8.RuneCountInString(v), MaxValueLen, k)
			assert.True(t, utf8.ValidString(v), k)
		}
	}

	got, err := Decode(md)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestPut_TooLarge(t *testing.T) {
	t.Parallel()

	err := Put(map[string]string{}, lines(200, strings.Repeat("x", 60)))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		md      map[string]string
		want    int
		wantErr bool
	}{
		{name: "no metadata", md: nil, want: 0},
		{name: "empty list", md: map[string]string{KeyItems: "[]"}, want: 0},
		{name: "single", md: map[string]string{KeyItems: `[{"id":"p1","qty":2,"price":5000,"size":"42"}]`}, want: 1},
		{name: "chunked", md: map[string]string{KeyChunks: "2", "cart_items_0": `[{"id":"p1","qty":2,`, "cart_items_1": `"price":5000}]`}, want: 1},
		{name: "missing chunk", md: map[string]string{KeyChunks: "2", "cart_items_0": `[`}, wantErr: true},
		{name: "bad chunk count", md: map[string]string{KeyChunks: "x"}, wantErr: true},
		{name: "malformed json", md: map[string]string{KeyItems: `[{`}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Decode(tt.md)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

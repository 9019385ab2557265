package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeStock_ValueScan(t *testing.T) {
	t.Parallel()

	in := SizeStock{"42": 3, "43": 0}
	v, err := in.Value()
	require.NoError(t, err)

	var out SizeStock
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)

	var fromBytes SizeStock
	require.NoError(t, fromBytes.Scan([]byte(`{"40":1}`)))
	assert.Equal(t, SizeStock{"40": 1}, fromBytes)

	var fromNil SizeStock
	require.NoError(t, fromNil.Scan(nil))
	assert.Nil(t, fromNil)

	assert.Error(t, out.Scan(42))
}

func TestSizeStock_CloneAndTotal(t *testing.T) {
	t.Parallel()

	s := SizeStock{"41": 2, "42": 5}
	c := s.Clone()
	c["41"] = 0

	assert.Equal(t, 2, s["41"])
	assert.Equal(t, 7, s.Total())
	assert.Nil(t, SizeStock(nil).Clone())
}

func TestStringList_NilIsEmptyArray(t *testing.T) {
	t.Parallel()

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var l StringList
	require.NoError(t, l.Scan(`["a.jpg","b.jpg"]`))
	assert.Equal(t, StringList{"a.jpg", "b.jpg"}, l)
}

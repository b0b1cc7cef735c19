package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/spanparse/span"
)

func matchLiteral(lit string) Match[string] {
	return func(c *Cursor) (string, error) {
		if _, err := c.ExpectLiteral([]byte(lit)); err != nil {
			return "", err
		}
		return lit, nil
	}
}

func TestSpannedCoversConsumedRange(t *testing.T) {
	c := NewCursor([]byte("abcdef"))
	_, _, err := c.Take(2)
	require.NoError(t, err)

	v, err := Spanned(c, matchLiteral("cde"))
	require.NoError(t, err)
	assert.Equal(t, "cde", v.Value)
	assert.Equal(t, span.Span{Start: 2, End: 5}, v.Span)
}

func TestSpannedRestoresOnFailure(t *testing.T) {
	c := NewCursor([]byte("abcdef"))

	// The inner match advances past "ab" before failing; Spanned must
	// rewind the whole thing.
	_, err := Spanned(c, func(c *Cursor) (string, error) {
		if _, _, err := c.Take(2); err != nil {
			return "", err
		}
		_, err := c.ExpectLiteral([]byte("xyz"))
		return "", err
	})
	require.Error(t, err)
	assert.Equal(t, 0, c.Offset())
}

func TestSequence(t *testing.T) {
	c := NewCursor([]byte("GET /"))

	var method string
	s, err := Sequence(c,
		func(c *Cursor) error {
			v, err := matchLiteral("GET")(c)
			method = v
			return err
		},
		func(c *Cursor) error {
			_, err := c.ExpectLiteral([]byte(" "))
			return err
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "GET", method)
	assert.Equal(t, span.Span{Start: 0, End: 4}, s)
}

func TestSequenceRestoresOnFailure(t *testing.T) {
	c := NewCursor([]byte("GET/"))

	_, err := Sequence(c,
		func(c *Cursor) error {
			_, err := c.ExpectLiteral([]byte("GET"))
			return err
		},
		func(c *Cursor) error {
			_, err := c.ExpectLiteral([]byte(" "))
			return err
		},
	)
	require.Error(t, err)
	assert.Equal(t, 0, c.Offset(), "aggregate failure must consume nothing")
}

func TestOptional(t *testing.T) {
	c := NewCursor([]byte("abc"))

	v, ok := Optional(c, matchLiteral("ab"))
	require.True(t, ok)
	assert.Equal(t, span.Span{Start: 0, End: 2}, v.Span)

	_, ok = Optional(c, matchLiteral("zz"))
	assert.False(t, ok)
	assert.Equal(t, 2, c.Offset(), "missed optional must consume nothing")
}

func TestRepeat(t *testing.T) {
	c := NewCursor([]byte("ababab!"))

	items, err := Repeat(c, matchLiteral("ab"), 1, -1)
	require.NoError(t, err)
	assert.Len(t, items.Value, 3)
	assert.Equal(t, span.Span{Start: 0, End: 6}, items.Span)
	assert.Equal(t, span.Span{Start: 2, End: 4}, items.Value[1].Span)
}

func TestRepeatMax(t *testing.T) {
	c := NewCursor([]byte("aaaa"))

	items, err := Repeat(c, matchLiteral("a"), 0, 2)
	require.NoError(t, err)
	assert.Len(t, items.Value, 2)
	assert.Equal(t, 2, c.Offset())
}

func TestRepeatTooFew(t *testing.T) {
	c := NewCursor([]byte("ab"))

	_, err := Repeat(c, matchLiteral("ab"), 2, -1)
	require.True(t, IsKind(err, TooFewRepetitions))
	assert.Equal(t, 0, c.Offset())
}

func TestRepeatZeroAllowed(t *testing.T) {
	c := NewCursor([]byte("xyz"))

	items, err := Repeat(c, matchLiteral("ab"), 0, -1)
	require.NoError(t, err)
	assert.Empty(t, items.Value)
	assert.True(t, items.Span.IsEmpty())
	assert.Equal(t, 0, items.Span.Start)
}

func TestAlternationFirstMatchWins(t *testing.T) {
	c := NewCursor([]byte("abc"))

	v, err := Alternation(c, matchLiteral("zz"), matchLiteral("ab"), matchLiteral("abc"))
	require.NoError(t, err)
	assert.Equal(t, "ab", v.Value)
	assert.Equal(t, 2, c.Offset())
}

func TestAlternationFurthestError(t *testing.T) {
	c := NewCursor([]byte("abX"))

	deep := func(c *Cursor) (string, error) {
		if _, err := c.ExpectLiteral([]byte("ab")); err != nil {
			return "", err
		}
		_, err := c.ExpectLiteral([]byte("c"))
		return "", err
	}

	_, err := Alternation(c, matchLiteral("zz"), deep, matchLiteral("q"))
	require.Error(t, err)
	assert.Equal(t, 2, ErrorOffset(err), "deepest branch failure wins")
	assert.Equal(t, 0, c.Offset())
}

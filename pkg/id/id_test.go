package id

import (
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSorted(t *testing.T) {
	t.Parallel()

	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		assert.Less(t, prev, next)
		prev = next
	}

	_, err := ulid.Parse(prev)
	require.NoError(t, err)
}

func TestNewClientOrderID(t *testing.T) {
	t.Parallel()

	a := NewClientOrderID()
	b := NewClientOrderID()
	assert.True(t, strings.HasPrefix(a, "0x"))
	assert.Len(t, a, 34)
	assert.NotEqual(t, a, b)
}

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierPool(t *testing.T) {
	t.Parallel()

	p := NewIdentifierPool(0, 2)
	a, err := p.Acquire("a")
	require.NoError(t, err)
	b, err := p.Acquire("b")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), a)
	assert.Equal(t, uint32(1), b)
	assert.Equal(t, 2, p.InUse())

	_, err = p.Acquire("c")
	assert.ErrorIs(t, err, ErrIdentifierExhausted)

	require.NoError(t, p.Release(a))
	assert.Nil(t, p.Owner(a))
	assert.Error(t, p.Release(a))
	assert.Error(t, p.Release(7))

	c, err := p.Acquire("c")
	require.NoError(t, err)
	assert.Equal(t, a, c, "released slots are reused")
	assert.Equal(t, "c", p.Owner(c))
}

func TestSyncMetrics(t *testing.T) {
	t.Parallel()

	m := NewSyncMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(2e6, 3, 1) // 2ms
	}
	assert.InDelta(t, 2.0, m.PassTime(), 1e-9)

	passes, synced, failed := m.Totals()
	assert.Equal(t, uint64(AVG_COUNT), passes)
	assert.Equal(t, uint64(3*int(AVG_COUNT)), synced)
	assert.Equal(t, uint64(AVG_COUNT), failed)
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	l, err := ParseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DebugLevel, l)

	_, err = ParseLogLevel("loud")
	assert.Error(t, err)
}

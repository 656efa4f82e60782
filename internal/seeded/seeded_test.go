package seeded

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownStream(t *testing.T) {
	// Reference value published with the seedrandom library.
	r := New("hello.")
	assert.Equal(t, 0.9282578795792454, r.Float64())
	assert.Equal(t, 0.3752569768646784, r.Float64())
}

func TestSameSeedSameStream(t *testing.T) {
	a := New("weapons2025315")
	b := New("weapons2025315")
	for i := 0; i < 50; i++ {
		require.Equal(t, a.Float64(), b.Float64(), "draw %d", i)
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	assert.NotEqual(t, New("2025315").Float64(), New("2025316").Float64())
}

func TestFloatRange(t *testing.T) {
	r := New("range")
	for i := 0; i < 1000; i++ {
		f := r.Float64()
		require.GreaterOrEqual(t, f, 0.0)
		require.Less(t, f, 1.0)
	}
}

func TestSelectIsPure(t *testing.T) {
	first, err := Select("secret2025101", 317)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Select("secret2025101", 317)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 317)
}

func TestSelectEmpty(t *testing.T) {
	_, err := Select("anything", 0)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestEmptySeedIsUsable(t *testing.T) {
	idx, err := Select("", 10)
	require.NoError(t, err)
	assert.Less(t, idx, 10)
}

func TestLongSeedWrapsKey(t *testing.T) {
	long := make([]byte, 600)
	for i := range long {
		long[i] = byte('a' + i%26)
	}
	assert.Len(t, mixKey(string(long)), width)
	assert.Equal(t, New(string(long)).Float64(), New(string(long)).Float64())
}

func TestSelectSpreadsAcrossDays(t *testing.T) {
	seen := map[int]bool{}
	for day := 1; day <= 28; day++ {
		idx, err := Select("20252"+strconv.Itoa(day), 50)
		require.NoError(t, err)
		seen[idx] = true
	}
	assert.Greater(t, len(seen), 10)
}

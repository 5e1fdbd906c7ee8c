package registry

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringIDsBijection(t *testing.T) {
	m := NewStringIDs(0)

	rng := rand.New(rand.NewSource(1))
	inserted := make(map[string]int32)
	for i := 0; i < 1000; i++ {
		s := fmt.Sprintf("title_%d", rng.Intn(400))
		id := m.GetOrAdd(s)
		if prev, seen := inserted[s]; seen {
			assert.Equal(t, prev, id, "id must be stable for %s", s)
		}
		inserted[s] = id
	}

	// idToString(stringToId(s)) == s for every inserted string.
	for s, id := range inserted {
		gotID, ok := m.ID(s)
		require.True(t, ok)
		assert.Equal(t, id, gotID)
		gotS, ok := m.String(id)
		require.True(t, ok)
		assert.Equal(t, s, gotS)
	}

	// Ids are dense in [0, N).
	n := int32(m.Size())
	seen := make(map[int32]bool)
	for _, id := range inserted {
		assert.GreaterOrEqual(t, id, int32(0))
		assert.Less(t, id, n)
		seen[id] = true
	}
	assert.Len(t, seen, int(n))
}

func TestStringIDsFirstID(t *testing.T) {
	m := NewStringIDs(1)
	assert.Equal(t, int32(1), m.GetOrAdd("first"))
	assert.Equal(t, int32(2), m.GetOrAdd("second"))
	assert.Equal(t, int32(2), m.MaxID())

	_, ok := m.String(0)
	assert.False(t, ok)
}

func TestStringIDsSaveLoad(t *testing.T) {
	m := NewStringIDs(0)
	for i := 0; i < 50; i++ {
		m.GetOrAdd(fmt.Sprintf("title_%d", i))
	}
	path := filepath.Join(t.TempDir(), "ids.bin")
	require.NoError(t, m.Save(path))

	loaded, err := LoadStringIDs(path, 0)
	require.NoError(t, err)
	require.Equal(t, m.Size(), loaded.Size())
	for i := 0; i < 50; i++ {
		s := fmt.Sprintf("title_%d", i)
		want, _ := m.ID(s)
		got, ok := loaded.ID(s)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	// The persisted mapping is stable: new strings extend the range.
	next := loaded.GetOrAdd("brand_new")
	assert.Equal(t, int32(50), next)
}

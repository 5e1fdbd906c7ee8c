// Package registry holds the long-lived id registries and the joined
// per-article record set. Registries are built once, persisted, and shared
// with builders by read-only reference afterwards.
package registry

import (
	"fmt"
	"sync"

	"github.com/krauseamir/wikigir/pkg/binio"
)

// StringIDs is a bijection between strings and a contiguous int32 range
// starting at firstID. Once persisted the mapping is stable across runs;
// new strings extend the range.
type StringIDs struct {
	mu      sync.RWMutex
	ids     map[string]int32
	strings []string
	firstID int32
}

// NewStringIDs creates an empty registry whose ids start at firstID
// (0 for titles and categories, 1 for dictionary terms).
func NewStringIDs(firstID int32) *StringIDs {
	return &StringIDs{
		ids:     make(map[string]int32),
		firstID: firstID,
	}
}

// GetOrAdd returns the id for s, assigning the next free one if unseen.
func (m *StringIDs) GetOrAdd(s string) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.ids[s]; ok {
		return id
	}
	id := m.firstID + int32(len(m.strings))
	m.ids[s] = id
	m.strings = append(m.strings, s)
	return id
}

// ID returns the id for s, if assigned.
func (m *StringIDs) ID(s string) (int32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.ids[s]
	return id, ok
}

// String returns the string for id, if assigned.
func (m *StringIDs) String(id int32) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := id - m.firstID
	if idx < 0 || idx >= int32(len(m.strings)) {
		return "", false
	}
	return m.strings[idx], true
}

// Size returns the number of mapped strings.
func (m *StringIDs) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.strings)
}

// MaxID returns the largest assigned id, or firstID-1 when empty.
func (m *StringIDs) MaxID() int32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.firstID + int32(len(m.strings)) - 1
}

// Save writes the mapping in the on-disk registry layout: a count, then
// count (string, id) pairs in id order.
func (m *StringIDs) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return binio.SaveFile(path, func(w *binio.Writer) error {
		w.WriteInt(len(m.strings))
		for i, s := range m.strings {
			w.WriteString(s)
			w.WriteInt32(m.firstID + int32(i))
		}
		return w.Err()
	})
}

// LoadStringIDs reads a registry persisted by Save. The pairs may appear
// in any order; ids must form a contiguous range starting at firstID.
func LoadStringIDs(path string, firstID int32) (*StringIDs, error) {
	m := NewStringIDs(firstID)
	err := binio.LoadFile(path, func(r *binio.Reader) error {
		n := r.ReadInt()
		if r.Err() != nil {
			return r.Err()
		}
		m.strings = make([]string, n)
		for i := 0; i < n; i++ {
			s := r.ReadString()
			id := r.ReadInt32()
			if err := r.Err(); err != nil {
				return err
			}
			idx := id - firstID
			if idx < 0 || idx >= int32(n) {
				return fmt.Errorf("registry %s: id %d outside [%d,%d)", path, id, firstID, firstID+int32(n))
			}
			m.strings[idx] = s
			m.ids[s] = id
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

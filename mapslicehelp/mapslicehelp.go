package mapslicehelp

import (
	"github.com/umpc/go-sortedmap"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// OrderedMapKeys returns the keys in insertion order.
func OrderedMapKeys[K comparable, V any](m *orderedmap.OrderedMap[K, V]) []K {
	l := make([]K, m.Len())
	i := 0
	for p := m.Oldest(); p != nil; p = p.Next() {
		l[i] = p.Key
		i++
	}
	return l
}

// RemoveSequences removes the given [from, to) index sequences from s.
// The sorted map values are the sequences, sorted ascending, non-overlapping.
func RemoveSequences[V any](s []V, sequencesToRemove *sortedmap.SortedMap) (newS []V) {
	mmap := sequencesToRemove.Map()
	keepFrom := 0
	for _, key := range sequencesToRemove.Keys() {
		sequenceToRemove := mmap[key].([2]int)
		keepTo := sequenceToRemove[0]
		newS = append(newS, s[keepFrom:keepTo]...)
		keepFrom = sequenceToRemove[1]
	}
	newS = append(newS, s[keepFrom:]...)
	return newS
}

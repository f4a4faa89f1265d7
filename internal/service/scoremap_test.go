package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScoreMap_AccumulatesAndDeletes(t *testing.T) {
	m := NewScoreMap()
	m.Add("a", 10, "trending")
	m.Add("b", 50, "following")
	m.Add("a", 20, "similar-content")
	m.Add("c", 30, "recent")

	a, ok := m.Get("a")
	require.True(t, ok)
	require.InDelta(t, 30, a.Score, 1e-9)
	require.Equal(t, "trending, similar-content", a.Reason)

	m.Delete("b")
	m.Delete("missing")
	require.False(t, m.Has("b"))
	require.Equal(t, []string{"a", "c"}, m.IDs())
	require.Equal(t, 2, m.Len())

	m.Add("b", 1, "recent")
	require.Equal(t, []string{"a", "c", "b"}, m.IDs())
}

func TestScoreMap_RankedIsStable(t *testing.T) {
	m := NewScoreMap()
	m.Add("first", 30, "recent")
	m.Add("top", 99, "trending")
	m.Add("second", 30, "recent")
	m.Add("third", 30, "recent")

	var ids []string
	for _, s := range m.Ranked() {
		ids = append(ids, s.VideoID)
	}
	require.Equal(t, []string{"top", "first", "second", "third"}, ids)
}

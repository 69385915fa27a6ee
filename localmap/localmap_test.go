package localmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	t.Run("zero map is empty", func(t *testing.T) {
		var m Map
		key := NewKey[string]("missing")

		v, ok := Get(&m, key)
		assert.False(t, ok)
		assert.Empty(t, v)
		assert.Zero(t, m.Len())
	})

	t.Run("set and get", func(t *testing.T) {
		var m Map
		key := NewKey[int]("count")

		Set(&m, key, 42)

		v, ok := Get(&m, key)
		require.True(t, ok)
		assert.Equal(t, 42, v)
		assert.Equal(t, 1, m.Len())
	})

	t.Run("set replaces", func(t *testing.T) {
		var m Map
		key := NewKey[string]("name")

		Set(&m, key, "first")
		Set(&m, key, "second")

		v, ok := Get(&m, key)
		require.True(t, ok)
		assert.Equal(t, "second", v)
		assert.Equal(t, 1, m.Len())
	})

	t.Run("keys with the same name do not collide", func(t *testing.T) {
		var m Map
		a := NewKey[string]("shared")
		b := NewKey[string]("shared")

		Set(&m, a, "for a")

		_, ok := Get(&m, b)
		assert.False(t, ok)

		Set(&m, b, "for b")

		va, _ := Get(&m, a)
		vb, _ := Get(&m, b)
		assert.Equal(t, "for a", va)
		assert.Equal(t, "for b", vb)
	})

	t.Run("delete", func(t *testing.T) {
		var m Map
		key := NewKey[bool]("flag")

		Set(&m, key, true)
		Delete(&m, key)

		_, ok := Get(&m, key)
		assert.False(t, ok)

		// Deleting from an empty map is a no-op.
		Delete(&m, key)
	})

	t.Run("get or init", func(t *testing.T) {
		var m Map
		key := NewKey[[]string]("items")

		calls := 0
		init := func() []string {
			calls++
			return []string{"seed"}
		}

		first := GetOrInit(&m, key, init)
		second := GetOrInit(&m, key, init)

		assert.Equal(t, []string{"seed"}, first)
		assert.Equal(t, []string{"seed"}, second)
		assert.Equal(t, 1, calls)
	})

	t.Run("distinct value types", func(t *testing.T) {
		var m Map

		type traceInfo struct{ id string }

		num := NewKey[int]("num")
		info := NewKey[*traceInfo]("info")

		Set(&m, num, 7)
		Set(&m, info, &traceInfo{id: "abc"})

		n, ok := Get(&m, num)
		require.True(t, ok)
		assert.Equal(t, 7, n)

		ti, ok := Get(&m, info)
		require.True(t, ok)
		assert.Equal(t, "abc", ti.id)
	})

	t.Run("key string", func(t *testing.T) {
		assert.Equal(t, "started-at", NewKey[int]("started-at").String())
	})
}

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingListener struct {
	id    string
	calls *[]string
}

func (c countingListener) HandleEvent(Event) error {
	*c.calls = append(*c.calls, c.id)
	return nil
}

func noop(Event) error { return nil }

func TestRegistry_AddAndListeners(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Add(ListenerFunc(noop), "x", PriorityNormal))
	require.NoError(t, r.Add(ListenerFunc(noop), "x", PriorityNormal))
	require.NoError(t, r.Add(ListenerFunc(noop), "x", PriorityLow))

	assert.Len(t, r.Listeners("x", PriorityNormal), 2)
	assert.Len(t, r.Listeners("x", PriorityLow), 1)
	assert.Empty(t, r.Listeners("x", PriorityHigh))
	assert.Empty(t, r.Listeners("missing", PriorityNormal))
	assert.Equal(t, 3, r.Count("x"))
	assert.Equal(t, 3, r.Total())
}

func TestRegistry_InvalidPriority(t *testing.T) {
	r := NewRegistry()

	for _, p := range []Priority{-1, 6, 100} {
		assert.ErrorIs(t, r.Add(ListenerFunc(noop), "x", p), ErrInvalidPriority)
		assert.ErrorIs(t, r.Remove(ListenerFunc(noop), "x", p), ErrInvalidPriority)
		assert.ErrorIs(t, r.Remove(ListenerFunc(noop), "unknown", p), ErrInvalidPriority)
	}
	assert.Zero(t, r.Total())
}

func TestRegistry_NilListener(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Add(nil, "x", PriorityNormal), ErrNilListener)
}

func TestRegistry_RemoveMissingIsNoop(t *testing.T) {
	r := NewRegistry()

	assert.NoError(t, r.Remove(ListenerFunc(noop), "never", PriorityNormal))

	require.NoError(t, r.Add(ListenerFunc(noop), "x", PriorityHigh))
	assert.NoError(t, r.Remove(ListenerFunc(noop), "x", PriorityLow))

	other := func(Event) error { return nil }
	assert.NoError(t, r.Remove(ListenerFunc(other), "x", PriorityHigh))
	assert.Equal(t, 1, r.Count("x"))
}

func TestRegistry_RemoveFirstOnly(t *testing.T) {
	r := NewRegistry()
	var calls []string
	a := countingListener{id: "a", calls: &calls}
	b := countingListener{id: "b", calls: &calls}

	require.NoError(t, r.Add(a, "x", PriorityNormal))
	require.NoError(t, r.Add(b, "x", PriorityNormal))
	require.NoError(t, r.Add(a, "x", PriorityNormal))

	require.NoError(t, r.Remove(a, "x", PriorityNormal))

	for _, l := range r.Listeners("x", PriorityNormal) {
		require.NoError(t, l.HandleEvent(nil))
	}
	assert.Equal(t, []string{"b", "a"}, calls)
}

func TestRegistry_RemoveFunc(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Add(ListenerFunc(noop), "x", PriorityNormal))
	require.NoError(t, r.Remove(ListenerFunc(noop), "x", PriorityNormal))

	assert.Zero(t, r.Count("x"))
	assert.Equal(t, []string{"x"}, r.Events(), "emptied buckets stay in place")
}

func TestRegistry_ListenersIsCopy(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(ListenerFunc(noop), "x", PriorityNormal))

	snapshot := r.Listeners("x", PriorityNormal)
	require.NoError(t, r.Add(ListenerFunc(noop), "x", PriorityNormal))
	require.NoError(t, r.Remove(ListenerFunc(noop), "x", PriorityNormal))

	assert.Len(t, snapshot, 1)
}

func TestRegistry_Events(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(ListenerFunc(noop), "b", PriorityNormal))
	require.NoError(t, r.Add(ListenerFunc(noop), "a", PriorityLow))

	assert.Equal(t, []string{"a", "b"}, r.Events())
}

type sliceListener struct{ ids []string }

func (s sliceListener) HandleEvent(Event) error { return nil }

// taggedListener is comparable by type but holds an arbitrary tag.
type taggedListener struct{ tag any }

func (taggedListener) HandleEvent(Event) error { return nil }

func TestSameListener(t *testing.T) {
	var calls []string
	a := countingListener{id: "a", calls: &calls}

	assert.True(t, sameListener(ListenerFunc(noop), ListenerFunc(noop)))
	assert.False(t, sameListener(ListenerFunc(noop), ListenerFunc(func(Event) error { return nil })))
	assert.True(t, sameListener(a, a))
	assert.False(t, sameListener(a, countingListener{id: "b", calls: &calls}))
	assert.False(t, sameListener(a, ListenerFunc(noop)))
	assert.False(t, sameListener(sliceListener{}, sliceListener{}), "non-comparable listeners never match")
	assert.True(t, sameListener(taggedListener{tag: "a"}, taggedListener{tag: "a"}))
	assert.False(t, sameListener(taggedListener{tag: []int{1}}, taggedListener{tag: []int{1}}), "uncomparable tags never match")
}

func TestRegistry_RemoveUncomparableTag(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(taggedListener{tag: []int{1}}, "x", PriorityNormal))

	assert.NotPanics(t, func() {
		require.NoError(t, r.Remove(taggedListener{tag: []int{1}}, "x", PriorityNormal))
	})
	assert.Equal(t, 1, r.Count("x"))
}

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSet(t *testing.T, names ...string) *Set {
	t.Helper()

	require.NotEmpty(t, names)

	set, err := NewSet(NewConfiguration(names[0], nil))
	require.NoError(t, err)

	for _, n := range names[1:] {
		require.NoError(t, set.Add(NewConfiguration(n, nil)))
	}

	return set
}

func TestNewSet(t *testing.T) {
	set := newTestSet(t, "Default")

	assert.Equal(t, 1, set.Len())
	assert.Equal(t, "Default", set.ActiveName())

	_, err := NewSet(nil)
	assert.Error(t, err)
}

func TestSet_AddActivatesAndRejectsDuplicates(t *testing.T) {
	set := newTestSet(t, "A", "B")

	assert.Equal(t, []string{"A", "B"}, set.Names())
	assert.Equal(t, "B", set.ActiveName())

	assert.Error(t, set.Add(NewConfiguration("A", nil)))
}

func TestSet_RemoveLastRejected(t *testing.T) {
	set := newTestSet(t, "Only")

	err := set.Remove("Only")
	assert.ErrorIs(t, err, ErrLastConfiguration)
	assert.Equal(t, 1, set.Len())
}

func TestSet_RemoveActiveHandsOff(t *testing.T) {
	set := newTestSet(t, "A", "B", "C")
	require.NoError(t, set.SetActive("B"))

	require.NoError(t, set.Remove("B"))

	assert.Equal(t, []string{"A", "C"}, set.Names())
	assert.Equal(t, "A", set.ActiveName())
}

func TestSet_RemoveInactiveKeepsActive(t *testing.T) {
	set := newTestSet(t, "A", "B", "C")
	require.NoError(t, set.SetActive("C"))

	require.NoError(t, set.Remove("A"))

	assert.Equal(t, "C", set.ActiveName())
	assert.Error(t, set.Remove("nope"))
}

func TestSet_Rename(t *testing.T) {
	set := newTestSet(t, "A", "B")

	require.NoError(t, set.Rename("B", "Production"))

	assert.Equal(t, []string{"A", "Production"}, set.Names())
	assert.Equal(t, "Production", set.ActiveName())

	got, ok := set.Get("Production")
	require.True(t, ok)
	assert.Equal(t, "Production", got.Name())

	_, ok = set.Get("B")
	assert.False(t, ok)
}

func TestSet_RenameErrors(t *testing.T) {
	set := newTestSet(t, "A", "B")

	assert.Error(t, set.Rename("missing", "X"))
	assert.Error(t, set.Rename("A", ""))
	assert.Error(t, set.Rename("A", "B"))
}

func TestSet_SetActive(t *testing.T) {
	set := newTestSet(t, "A", "B")

	require.NoError(t, set.SetActive("A"))
	assert.Equal(t, "A", set.ActiveName())
	assert.Equal(t, "A", set.Active().Name())

	assert.Error(t, set.SetActive("missing"))
}

func TestSet_AllInsertionOrder(t *testing.T) {
	set := newTestSet(t, "C", "A", "B")

	var got []string
	for _, cfg := range set.All() {
		got = append(got, cfg.Name())
	}

	assert.Equal(t, []string{"C", "A", "B"}, got)
}

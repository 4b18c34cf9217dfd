package knowledge

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neptou/go-travel-assistant/internal/types"
)

func testItem(id string, kind types.SourceKind, embedding []float32) types.KnowledgeItem {
	return types.KnowledgeItem{
		ID:         id,
		SourceKind: kind,
		Text:       id,
		Embedding:  embedding,
	}
}

func TestNewSnapshot(t *testing.T) {
	t.Run("valid items", func(t *testing.T) {
		snap, err := NewSnapshot([]types.KnowledgeItem{
			testItem("place:a", types.SourceKindPlace, []float32{1, 0, 0}),
			testItem("insight:b", types.SourceKindInsight, []float32{0, 1, 0}),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, snap.Len())
		assert.Equal(t, 3, snap.Dimension())
	})

	t.Run("empty input yields empty snapshot", func(t *testing.T) {
		snap, err := NewSnapshot(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, snap.Len())
		assert.Equal(t, 0, snap.Dimension())
	})

	t.Run("duplicate ID rejected", func(t *testing.T) {
		_, err := NewSnapshot([]types.KnowledgeItem{
			testItem("place:a", types.SourceKindPlace, []float32{1, 0}),
			testItem("place:a", types.SourceKindPlace, []float32{0, 1}),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("empty ID rejected", func(t *testing.T) {
		_, err := NewSnapshot([]types.KnowledgeItem{
			testItem("", types.SourceKindPlace, []float32{1, 0}),
		})
		require.Error(t, err)
	})

	t.Run("unknown source kind rejected", func(t *testing.T) {
		_, err := NewSnapshot([]types.KnowledgeItem{
			testItem("x:a", types.SourceKind("restaurant"), []float32{1, 0}),
		})
		require.Error(t, err)
	})

	t.Run("empty embedding rejected", func(t *testing.T) {
		_, err := NewSnapshot([]types.KnowledgeItem{
			testItem("place:a", types.SourceKindPlace, nil),
		})
		require.Error(t, err)
	})

	t.Run("mixed dimensions rejected", func(t *testing.T) {
		_, err := NewSnapshot([]types.KnowledgeItem{
			testItem("place:a", types.SourceKindPlace, []float32{1, 0, 0}),
			testItem("place:b", types.SourceKindPlace, []float32{1, 0}),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dimension")
	})
}

func TestValidateDimension(t *testing.T) {
	snap, err := NewSnapshot([]types.KnowledgeItem{
		testItem("place:a", types.SourceKindPlace, []float32{1, 0, 0}),
	})
	require.NoError(t, err)

	t.Run("matching dimension passes", func(t *testing.T) {
		assert.NoError(t, snap.ValidateDimension(3))
	})

	t.Run("mismatch is rejected", func(t *testing.T) {
		err := snap.ValidateDimension(768)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dimension")
	})

	t.Run("zero expectation is unconstrained", func(t *testing.T) {
		assert.NoError(t, snap.ValidateDimension(0))
	})

	t.Run("empty snapshot passes any expectation", func(t *testing.T) {
		empty, err := NewSnapshot(nil)
		require.NoError(t, err)
		assert.NoError(t, empty.ValidateDimension(768))
	})
}

func TestIndexSwap(t *testing.T) {
	t.Run("nil snapshot degrades to empty", func(t *testing.T) {
		idx := NewIndex(nil)
		assert.Equal(t, 0, idx.Snapshot().Len())
		idx.Swap(nil)
		assert.Equal(t, 0, idx.Snapshot().Len())
	})

	t.Run("swap publishes new generation", func(t *testing.T) {
		first, err := NewSnapshot([]types.KnowledgeItem{
			testItem("place:a", types.SourceKindPlace, []float32{1, 0}),
		})
		require.NoError(t, err)
		second, err := NewSnapshot([]types.KnowledgeItem{
			testItem("place:b", types.SourceKindPlace, []float32{0, 1}),
			testItem("place:c", types.SourceKindPlace, []float32{1, 1}),
		})
		require.NoError(t, err)

		idx := NewIndex(first)
		assert.Equal(t, 1, idx.Snapshot().Len())
		idx.Swap(second)
		assert.Equal(t, 2, idx.Snapshot().Len())
	})

	// Readers racing a swap must observe exactly one generation, never a mix.
	// Each generation has a uniform embedding value, so a mixed view would
	// show differing values within one snapshot.
	t.Run("concurrent readers never see mixed generations", func(t *testing.T) {
		makeGen := func(val float32) *Snapshot {
			items := make([]types.KnowledgeItem, 50)
			for i := range items {
				id := fmt.Sprintf("place:%d", i)
				items[i] = testItem(id, types.SourceKindPlace, []float32{val, val})
			}
			snap, err := NewSnapshot(items)
			require.NoError(t, err)
			return snap
		}

		idx := NewIndex(makeGen(1))
		done := make(chan struct{})
		var wg sync.WaitGroup

		for r := 0; r < 4; r++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-done:
						return
					default:
					}
					snap := idx.Snapshot()
					items := snap.Items()
					if len(items) == 0 {
						continue
					}
					want := items[0].Embedding[0]
					for _, item := range items {
						if item.Embedding[0] != want {
							t.Errorf("mixed generations observed: %v vs %v", want, item.Embedding[0])
							return
						}
					}
				}
			}()
		}

		for i := 2; i <= 20; i++ {
			idx.Swap(makeGen(float32(i)))
		}
		close(done)
		wg.Wait()
	})
}

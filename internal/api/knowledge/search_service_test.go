package knowledge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/neptou/go-travel-assistant/internal/types"
)

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) GenerateQueryEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	vec, _ := args.Get(0).([]float32)
	return vec, args.Error(1)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) LoadCorpus(ctx context.Context) ([]types.KnowledgeItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]types.KnowledgeItem)
	return items, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func indexedItem(id string, kind types.SourceKind, embedding []float32, meta types.ItemMetadata) types.KnowledgeItem {
	return types.KnowledgeItem{
		ID:         id,
		SourceKind: kind,
		Text:       id,
		Metadata:   meta,
		Embedding:  embedding,
	}
}

func newTestService(t *testing.T, items []types.KnowledgeItem, embedder Embedder) *ServiceImpl {
	t.Helper()
	snap, err := NewSnapshot(items)
	require.NoError(t, err)
	return NewServiceImpl(NewIndex(snap), new(MockRepository), embedder, testLogger())
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("empty query returns empty without embedding", func(t *testing.T) {
		embedder := new(MockEmbedder)
		svc := newTestService(t, []types.KnowledgeItem{
			indexedItem("place:a", types.SourceKindPlace, []float32{1, 0}, types.ItemMetadata{}),
		}, embedder)

		results, err := svc.Search(ctx, "   ", SearchOptions{TopK: 5})
		require.NoError(t, err)
		assert.Empty(t, results)
		embedder.AssertNotCalled(t, "GenerateQueryEmbedding", mock.Anything, mock.Anything)
	})

	t.Run("empty index returns empty without embedding", func(t *testing.T) {
		embedder := new(MockEmbedder)
		svc := newTestService(t, nil, embedder)

		results, err := svc.Search(ctx, "temples", SearchOptions{TopK: 5})
		require.NoError(t, err)
		assert.Empty(t, results)
		embedder.AssertNotCalled(t, "GenerateQueryEmbedding", mock.Anything, mock.Anything)
	})

	t.Run("embedding failure surfaces as error", func(t *testing.T) {
		embedder := new(MockEmbedder)
		embedder.On("GenerateQueryEmbedding", mock.Anything, "temples").
			Return(nil, errors.New("quota exceeded"))
		svc := newTestService(t, []types.KnowledgeItem{
			indexedItem("place:a", types.SourceKindPlace, []float32{1, 0}, types.ItemMetadata{}),
		}, embedder)

		_, err := svc.Search(ctx, "temples", SearchOptions{TopK: 5})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to embed query")
	})

	t.Run("ranks by similarity against the embedded query", func(t *testing.T) {
		embedder := new(MockEmbedder)
		embedder.On("GenerateQueryEmbedding", mock.Anything, "old temples").
			Return([]float32{1, 0}, nil)
		svc := newTestService(t, []types.KnowledgeItem{
			indexedItem("place:far", types.SourceKindPlace, []float32{0, 1}, types.ItemMetadata{}),
			indexedItem("place:near", types.SourceKindPlace, []float32{1, 0}, types.ItemMetadata{}),
			indexedItem("place:mid", types.SourceKindPlace, []float32{0.8, 0.6}, types.ItemMetadata{}),
		}, embedder)

		results, err := svc.Search(ctx, "old temples", SearchOptions{TopK: 10, MinScore: -1})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "place:near", results[0].ID)
		assert.Equal(t, "place:mid", results[1].ID)
		assert.Equal(t, "place:far", results[2].ID)
		embedder.AssertExpectations(t)
	})
}

func TestSearchVector(t *testing.T) {
	ctx := context.Background()

	t.Run("dimension mismatch", func(t *testing.T) {
		svc := newTestService(t, []types.KnowledgeItem{
			indexedItem("place:a", types.SourceKindPlace, []float32{1, 0, 0}, types.ItemMetadata{}),
		}, new(MockEmbedder))

		_, err := svc.SearchVector(ctx, []float32{1, 0}, SearchOptions{TopK: 5})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("empty query vector returns empty", func(t *testing.T) {
		svc := newTestService(t, []types.KnowledgeItem{
			indexedItem("place:a", types.SourceKindPlace, []float32{1, 0}, types.ItemMetadata{}),
		}, new(MockEmbedder))

		results, err := svc.SearchVector(ctx, nil, SearchOptions{TopK: 5})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("results ordered descending with ID tie-break", func(t *testing.T) {
		svc := newTestService(t, []types.KnowledgeItem{
			indexedItem("place:zebra", types.SourceKindPlace, []float32{1, 0}, types.ItemMetadata{}),
			indexedItem("place:apple", types.SourceKindPlace, []float32{1, 0}, types.ItemMetadata{}),
			indexedItem("place:mango", types.SourceKindPlace, []float32{0.5, 0.5}, types.ItemMetadata{}),
		}, new(MockEmbedder))

		results, err := svc.SearchVector(ctx, []float32{1, 0}, SearchOptions{TopK: 10, MinScore: -1})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "place:apple", results[0].ID)
		assert.Equal(t, "place:zebra", results[1].ID)
		assert.Equal(t, "place:mango", results[2].ID)
		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
		}
	})

	t.Run("topK caps results and clamps to 1", func(t *testing.T) {
		items := []types.KnowledgeItem{
			indexedItem("place:a", types.SourceKindPlace, []float32{1, 0}, types.ItemMetadata{}),
			indexedItem("place:b", types.SourceKindPlace, []float32{0.9, 0.1}, types.ItemMetadata{}),
			indexedItem("place:c", types.SourceKindPlace, []float32{0.8, 0.2}, types.ItemMetadata{}),
		}
		svc := newTestService(t, items, new(MockEmbedder))

		results, err := svc.SearchVector(ctx, []float32{1, 0}, SearchOptions{TopK: 2, MinScore: -1})
		require.NoError(t, err)
		assert.Len(t, results, 2)

		results, err = svc.SearchVector(ctx, []float32{1, 0}, SearchOptions{TopK: 0, MinScore: -1})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "place:a", results[0].ID)
	})

	t.Run("minScore filters low scores", func(t *testing.T) {
		svc := newTestService(t, []types.KnowledgeItem{
			indexedItem("place:near", types.SourceKindPlace, []float32{1, 0}, types.ItemMetadata{}),
			indexedItem("place:far", types.SourceKindPlace, []float32{0, 1}, types.ItemMetadata{}),
		}, new(MockEmbedder))

		results, err := svc.SearchVector(ctx, []float32{1, 0}, SearchOptions{TopK: 10, MinScore: 0.5})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "place:near", results[0].ID)
	})

	t.Run("source kind filter", func(t *testing.T) {
		svc := newTestService(t, []types.KnowledgeItem{
			indexedItem("place:a", types.SourceKindPlace, []float32{1, 0}, types.ItemMetadata{}),
			indexedItem("insight:b", types.SourceKindInsight, []float32{1, 0}, types.ItemMetadata{}),
			indexedItem("emergency_contact:c", types.SourceKindEmergencyContact, []float32{1, 0}, types.ItemMetadata{}),
		}, new(MockEmbedder))

		results, err := svc.SearchVector(ctx, []float32{1, 0}, SearchOptions{
			TopK:        10,
			MinScore:    -1,
			SourceKinds: []types.SourceKind{types.SourceKindInsight},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, types.SourceKindInsight, results[0].SourceKind)
	})
}

func TestEmergencyBoost(t *testing.T) {
	ctx := context.Background()

	emergencyMeta := types.ItemMetadata{
		Area: "Thamel",
		Tags: []string{"police", "emergency", "contact"},
	}

	t.Run("context-matched contact wins equal-score tie", func(t *testing.T) {
		svc := newTestService(t, []types.KnowledgeItem{
			indexedItem("aaa:garden", types.SourceKindPlace, []float32{1, 0}, types.ItemMetadata{}),
			indexedItem("emergency_contact:tourist-police", types.SourceKindEmergencyContact, []float32{1, 0}, emergencyMeta),
		}, new(MockEmbedder))

		results, err := svc.SearchVector(ctx, []float32{1, 0}, SearchOptions{
			TopK:     10,
			MinScore: -1,
			Query:    "police near thamel",
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		// Alphabetically the place sorts first; the context match overrides.
		assert.Equal(t, "emergency_contact:tourist-police", results[0].ID)
		assert.Equal(t, results[0].Score, results[1].Score)
	})

	t.Run("no context match keeps ranking order", func(t *testing.T) {
		svc := newTestService(t, []types.KnowledgeItem{
			indexedItem("aaa:garden", types.SourceKindPlace, []float32{1, 0}, types.ItemMetadata{}),
			indexedItem("emergency_contact:tourist-police", types.SourceKindEmergencyContact, []float32{1, 0}, emergencyMeta),
		}, new(MockEmbedder))

		results, err := svc.SearchVector(ctx, []float32{1, 0}, SearchOptions{
			TopK:     10,
			MinScore: -1,
			Query:    "quiet gardens",
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "aaa:garden", results[0].ID)
	})

	t.Run("never promoted past a strictly higher score", func(t *testing.T) {
		svc := newTestService(t, []types.KnowledgeItem{
			indexedItem("place:close", types.SourceKindPlace, []float32{1, 0}, types.ItemMetadata{}),
			indexedItem("emergency_contact:tourist-police", types.SourceKindEmergencyContact, []float32{0.9, 0.1}, emergencyMeta),
		}, new(MockEmbedder))

		results, err := svc.SearchVector(ctx, []float32{1, 0}, SearchOptions{
			TopK:     10,
			MinScore: -1,
			Query:    "police near thamel",
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "place:close", results[0].ID)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("scores are never inflated", func(t *testing.T) {
		svc := newTestService(t, []types.KnowledgeItem{
			indexedItem("emergency_contact:tourist-police", types.SourceKindEmergencyContact, []float32{0.6, 0.8}, emergencyMeta),
		}, new(MockEmbedder))

		results, err := svc.SearchVector(ctx, []float32{1, 0}, SearchOptions{
			TopK:     10,
			MinScore: -1,
			Query:    "police near thamel",
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.InDelta(t, 0.6, results[0].Score, 1e-6)
	})
}

func TestReload(t *testing.T) {
	ctx := context.Background()

	t.Run("swaps in the loaded corpus", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("LoadCorpus", mock.Anything).Return([]types.KnowledgeItem{
			indexedItem("place:a", types.SourceKindPlace, []float32{1, 0}, types.ItemMetadata{}),
			indexedItem("place:b", types.SourceKindPlace, []float32{0, 1}, types.ItemMetadata{}),
		}, nil)

		idx := NewIndex(nil)
		svc := NewServiceImpl(idx, repo, new(MockEmbedder), testLogger())

		require.NoError(t, svc.Reload(ctx))
		assert.Equal(t, 2, idx.Snapshot().Len())
		repo.AssertExpectations(t)
	})

	t.Run("load failure keeps the old generation", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("LoadCorpus", mock.Anything).Return(nil, errors.New("disk gone"))

		snap, err := NewSnapshot([]types.KnowledgeItem{
			indexedItem("place:a", types.SourceKindPlace, []float32{1, 0}, types.ItemMetadata{}),
		})
		require.NoError(t, err)
		idx := NewIndex(snap)
		svc := NewServiceImpl(idx, repo, new(MockEmbedder), testLogger())

		require.Error(t, svc.Reload(ctx))
		assert.Equal(t, 1, idx.Snapshot().Len())
	})

	t.Run("invalid corpus keeps the old generation", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("LoadCorpus", mock.Anything).Return([]types.KnowledgeItem{
			indexedItem("place:a", types.SourceKindPlace, []float32{1, 0}, types.ItemMetadata{}),
			indexedItem("place:a", types.SourceKindPlace, []float32{0, 1}, types.ItemMetadata{}),
		}, nil)

		idx := NewIndex(nil)
		svc := NewServiceImpl(idx, repo, new(MockEmbedder), testLogger())

		require.Error(t, svc.Reload(ctx))
		assert.Equal(t, 0, idx.Snapshot().Len())
	})
}

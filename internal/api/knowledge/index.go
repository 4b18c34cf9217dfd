package knowledge

import (
	"fmt"
	"sync/atomic"

	"github.com/neptou/go-travel-assistant/internal/types"
)

// Snapshot is one immutable generation of the embedding index. It is never
// mutated after construction, so concurrent searches can read it without
// locking.
type Snapshot struct {
	items     []types.KnowledgeItem
	dimension int
}

// NewSnapshot validates and freezes a set of knowledge items. Every item
// must carry a unique ID, a valid source kind and an embedding of the same
// dimension as all the others.
func NewSnapshot(items []types.KnowledgeItem) (*Snapshot, error) {
	snap := &Snapshot{items: make([]types.KnowledgeItem, 0, len(items))}
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("knowledge item %q has an empty ID", item.Text)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("duplicate knowledge item ID %q", item.ID)
		}
		if !item.SourceKind.Valid() {
			return nil, fmt.Errorf("knowledge item %q has unknown source kind %q", item.ID, item.SourceKind)
		}
		if len(item.Embedding) == 0 {
			return nil, fmt.Errorf("knowledge item %q has an empty embedding", item.ID)
		}
		if snap.dimension == 0 {
			snap.dimension = len(item.Embedding)
		} else if len(item.Embedding) != snap.dimension {
			return nil, fmt.Errorf("knowledge item %q has embedding dimension %d, index dimension is %d",
				item.ID, len(item.Embedding), snap.dimension)
		}
		seen[item.ID] = struct{}{}
		snap.items = append(snap.items, item)
	}
	return snap, nil
}

// Items returns the snapshot's items. Callers must not mutate the slice.
func (s *Snapshot) Items() []types.KnowledgeItem { return s.items }

// Dimension returns the embedding dimension shared by all items, 0 for an
// empty snapshot.
func (s *Snapshot) Dimension() int { return s.dimension }

// ValidateDimension checks the snapshot against the deployment's configured
// embedding dimension. Zero on either side means unconstrained: an empty
// corpus has no dimension and an unset config imposes none.
func (s *Snapshot) ValidateDimension(expected int) error {
	if expected == 0 || s.dimension == 0 {
		return nil
	}
	if s.dimension != expected {
		return fmt.Errorf("corpus embedding dimension %d does not match configured dimension %d", s.dimension, expected)
	}
	return nil
}

func (s *Snapshot) Len() int { return len(s.items) }

var emptySnapshot = &Snapshot{}

// Index holds the process-wide embedding index. It is populated once at
// startup and replaced wholesale on reload: Swap publishes a fully built
// snapshot with a single pointer update, so in-flight searches always see
// exactly one generation and never a partially updated index.
type Index struct {
	current atomic.Pointer[Snapshot]
}

// NewIndex creates an index serving the given snapshot. A nil snapshot
// yields an empty index, which is valid: searches against it return no
// results rather than an error.
func NewIndex(snap *Snapshot) *Index {
	idx := &Index{}
	if snap == nil {
		snap = emptySnapshot
	}
	idx.current.Store(snap)
	return idx
}

// Snapshot returns the current index generation.
func (i *Index) Snapshot() *Snapshot {
	return i.current.Load()
}

// Swap atomically replaces the current generation.
func (i *Index) Swap(snap *Snapshot) {
	if snap == nil {
		snap = emptySnapshot
	}
	i.current.Store(snap)
}

package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/neptou/go-travel-assistant/internal/types"
)

// Repository loads the precomputed embedding corpus. The embeddings
// themselves are produced offline (see scripts/generate_embeddings.go); this
// layer only deserialises them.
type Repository interface {
	LoadCorpus(ctx context.Context) ([]types.KnowledgeItem, error)
}

var _ Repository = (*FileRepository)(nil)

// FileRepository reads the corpus from JSON files on disk: one file with
// place and local-insight embeddings, one with emergency-contact embeddings.
// A missing file degrades to that portion of the corpus being empty; it is
// not an error, so the service can start ungrounded and be reloaded later.
type FileRepository struct {
	logger        *slog.Logger
	placesPath    string
	emergencyPath string
}

func NewFileRepository(placesPath, emergencyPath string, logger *slog.Logger) *FileRepository {
	return &FileRepository{
		logger:        logger,
		placesPath:    placesPath,
		emergencyPath: emergencyPath,
	}
}

// placeEntry mirrors the on-disk format of the tourism embeddings file.
type placeEntry struct {
	Name      string             `json:"name"`
	Embedding []float32          `json:"embedding"`
	Metadata  types.ItemMetadata `json:"metadata"`
}

// emergencyEntry mirrors the on-disk format of the emergency contacts file.
type emergencyEntry struct {
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Category       string    `json:"category"`
	Location       string    `json:"location"`
	Description    string    `json:"description"`
	Available247   bool      `json:"available_24_7"`
	Languages      []string  `json:"languages"`
	AdditionalInfo string    `json:"additional_info"`
	Embedding      []float32 `json:"embedding"`
}

// LoadCorpus reads both corpus files concurrently and merges them into one
// item set sharing the embedding space.
func (r *FileRepository) LoadCorpus(ctx context.Context) ([]types.KnowledgeItem, error) {
	var placeItems, emergencyItems []types.KnowledgeItem

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		placeItems, err = r.loadPlaces(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		emergencyItems, err = r.loadEmergencyContacts(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]types.KnowledgeItem, 0, len(placeItems)+len(emergencyItems))
	items = append(items, placeItems...)
	items = append(items, emergencyItems...)
	return items, nil
}

func (r *FileRepository) loadPlaces(ctx context.Context) ([]types.KnowledgeItem, error) {
	data, err := os.ReadFile(r.placesPath)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.WarnContext(ctx, "Place embeddings file not found, continuing with empty place corpus",
				slog.String("path", r.placesPath))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read place embeddings %s: %w", r.placesPath, err)
	}

	var entries []placeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse place embeddings %s: %w", r.placesPath, err)
	}

	items := make([]types.KnowledgeItem, 0, len(entries))
	for _, e := range entries {
		kind := types.SourceKindPlace
		if e.Metadata.Content != "" || e.Metadata.District != "" {
			kind = types.SourceKindInsight
		}
		items = append(items, types.KnowledgeItem{
			ID:         itemID(kind, e.Name),
			SourceKind: kind,
			Text:       e.Name,
			Metadata:   e.Metadata,
			Embedding:  e.Embedding,
		})
	}
	r.logger.DebugContext(ctx, "Loaded place corpus", slog.Int("entries", len(items)))
	return items, nil
}

func (r *FileRepository) loadEmergencyContacts(ctx context.Context) ([]types.KnowledgeItem, error) {
	data, err := os.ReadFile(r.emergencyPath)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.WarnContext(ctx, "Emergency contacts file not found, continuing without emergency corpus",
				slog.String("path", r.emergencyPath))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read emergency contacts %s: %w", r.emergencyPath, err)
	}

	var entries []emergencyEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse emergency contacts %s: %w", r.emergencyPath, err)
	}

	items := make([]types.KnowledgeItem, 0, len(entries))
	for _, e := range entries {
		text := e.Name
		if e.Description != "" {
			text = e.Name + " - " + e.Description
		}
		items = append(items, types.KnowledgeItem{
			ID:         itemID(types.SourceKindEmergencyContact, e.Name),
			SourceKind: types.SourceKindEmergencyContact,
			Text:       text,
			Metadata: types.ItemMetadata{
				Area:         e.Location,
				Category:     e.Category,
				Phone:        e.Phone,
				Available247: e.Available247,
				Languages:    e.Languages,
				Tags:         []string{e.Category, "emergency", "contact"},
			},
			Embedding: e.Embedding,
		})
	}
	r.logger.DebugContext(ctx, "Loaded emergency contact corpus", slog.Int("entries", len(items)))
	return items, nil
}

// itemID derives a stable identifier from the item's kind and name. The
// corpus files carry no IDs of their own; names are unique within a kind.
func itemID(kind types.SourceKind, name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return string(kind) + ":" + slug
}

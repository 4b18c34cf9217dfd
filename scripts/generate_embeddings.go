// Command generate_embeddings builds the embedding corpus files consumed by
// the knowledge index. It reads the structured place catalog and the raw
// emergency contact list, embeds a descriptive text for each entry and writes
// the results as JSON. Run it whenever the catalog or contact data changes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/neptou/go-travel-assistant/config"
	generativeAI "github.com/neptou/go-travel-assistant/internal/api/generative_ai"
	"github.com/neptou/go-travel-assistant/internal/types"
)

type placeOutput struct {
	Name      string             `json:"name"`
	Embedding []float32          `json:"embedding"`
	Metadata  types.ItemMetadata `json:"metadata"`
}

type emergencyContact struct {
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Category       string    `json:"category"`
	Location       string    `json:"location"`
	Description    string    `json:"description"`
	Available247   bool      `json:"available_24_7"`
	Languages      []string  `json:"languages"`
	AdditionalInfo string    `json:"additional_info"`
	Embedding      []float32 `json:"embedding,omitempty"`
}

func main() {
	var (
		catalogPath  = flag.String("catalog", "", "path to the place catalog JSON (defaults to config)")
		contactsPath = flag.String("contacts", "data/emergency_contacts.json", "path to the raw emergency contacts JSON")
		placesOut    = flag.String("places-out", "", "output path for place embeddings (defaults to config)")
		emergencyOut = flag.String("emergency-out", "", "output path for emergency contact embeddings (defaults to config)")
		skipContacts = flag.Bool("skip-contacts", false, "only regenerate place embeddings")
	)
	flag.Parse()

	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *catalogPath == "" {
		*catalogPath = cfg.Knowledge.CatalogFile
	}
	if *placesOut == "" {
		*placesOut = cfg.Knowledge.PlacesEmbeddingsFile
	}
	if *emergencyOut == "" {
		*emergencyOut = cfg.Knowledge.EmergencyEmbeddingsFile
	}

	aiClient, err := generativeAI.NewAIClient(ctx)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	embedder := generativeAI.NewEmbeddingService(aiClient, cfg.Knowledge.EmbeddingModel, logger)

	if err := generatePlaceEmbeddings(ctx, embedder, *catalogPath, *placesOut, logger); err != nil {
		log.Fatalf("Failed to generate place embeddings: %v", err)
	}
	if !*skipContacts {
		if err := generateContactEmbeddings(ctx, embedder, *contactsPath, *emergencyOut, logger); err != nil {
			log.Fatalf("Failed to generate emergency contact embeddings: %v", err)
		}
	}
	logger.Info("Embedding corpus generated")
}

func generatePlaceEmbeddings(ctx context.Context, embedder *generativeAI.EmbeddingService, in, out string, logger *slog.Logger) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("failed to read catalog %s: %w", in, err)
	}
	var places []types.Place
	if err := json.Unmarshal(data, &places); err != nil {
		return fmt.Errorf("failed to parse catalog %s: %w", in, err)
	}

	outputs := make([]placeOutput, 0, len(places))
	for i, p := range places {
		embedding, err := embedder.GenerateQueryEmbedding(ctx, placeText(p))
		if err != nil {
			return fmt.Errorf("failed to embed %q: %w", p.Name, err)
		}
		outputs = append(outputs, placeOutput{
			Name:      p.Name,
			Embedding: embedding,
			Metadata: types.ItemMetadata{
				Latitude:  p.Latitude,
				Longitude: p.Longitude,
				Category:  p.Category,
				Area:      p.Area,
				Tags:      p.Tags,
			},
		})
		logger.Info("Embedded place", slog.Int("index", i+1), slog.Int("total", len(places)), slog.String("name", p.Name))
	}
	return writeJSON(out, outputs)
}

func generateContactEmbeddings(ctx context.Context, embedder *generativeAI.EmbeddingService, in, out string, logger *slog.Logger) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("failed to read contacts %s: %w", in, err)
	}
	var contacts []emergencyContact
	if err := json.Unmarshal(data, &contacts); err != nil {
		return fmt.Errorf("failed to parse contacts %s: %w", in, err)
	}

	for i := range contacts {
		embedding, err := embedder.GenerateQueryEmbedding(ctx, contactText(contacts[i]))
		if err != nil {
			return fmt.Errorf("failed to embed %q: %w", contacts[i].Name, err)
		}
		contacts[i].Embedding = embedding
		logger.Info("Embedded contact", slog.Int("index", i+1), slog.Int("total", len(contacts)), slog.String("name", contacts[i].Name))
	}
	return writeJSON(out, contacts)
}

// placeText is the text whose embedding represents a catalog entry. Query
// embeddings are compared against it, so it packs in every searchable facet.
func placeText(p types.Place) string {
	parts := []string{p.Name}
	if p.Category != "" {
		parts = append(parts, p.Category)
	}
	if p.Area != "" {
		parts = append(parts, p.Area)
	}
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	if len(p.Tags) > 0 {
		parts = append(parts, strings.Join(p.Tags, " "))
	}
	return strings.Join(parts, ". ")
}

func contactText(c emergencyContact) string {
	parts := []string{c.Name, c.Category, c.Location, c.Description}
	if c.AdditionalInfo != "" {
		parts = append(parts, c.AdditionalInfo)
	}
	return strings.Join(parts, ". ")
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

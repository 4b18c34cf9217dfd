package generativeAI

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

// EmbeddingService generates embeddings in the same vector space as the
// precomputed knowledge corpus, so query vectors and corpus vectors are
// directly comparable.
type EmbeddingService struct {
	aiClient *AIClient
	model    string
	logger   *slog.Logger
}

func NewEmbeddingService(aiClient *AIClient, model string, logger *slog.Logger) *EmbeddingService {
	return &EmbeddingService{
		aiClient: aiClient,
		model:    model,
		logger:   logger,
	}
}

// GenerateQueryEmbedding embeds a single piece of text.
func (s *EmbeddingService) GenerateQueryEmbedding(ctx context.Context, text string) ([]float32, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateQueryEmbedding", trace.WithAttributes(
		attribute.Int("text.length", len(text)),
		attribute.String("model", s.model),
	))
	defer span.End()

	resp, err := s.aiClient.client.Models.EmbedContent(ctx, s.model, genai.Text(text), nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate embedding", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Embedding failed")
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		err := fmt.Errorf("embedding response contained no values")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Empty embedding")
		return nil, err
	}

	span.SetAttributes(attribute.Int("embedding.dimension", len(resp.Embeddings[0].Values)))
	span.SetStatus(codes.Ok, "Embedding generated")
	return resp.Embeddings[0].Values, nil
}

package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/neptou/go-travel-assistant/app/observability/metrics"
	"github.com/neptou/go-travel-assistant/internal/api/knowledge"
	"github.com/neptou/go-travel-assistant/internal/types"
)

const (
	contextTopK     = 10
	contextMinScore = 0.2
)

// Searcher is the slice of the knowledge service the assistant grounds its
// answers on.
type Searcher interface {
	Search(ctx context.Context, query string, opts knowledge.SearchOptions) ([]types.SearchResult, error)
}

// ContentGenerator produces a text completion for a prompt.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error)
}

var _ Service = (*ServiceImpl)(nil)

// Service answers free-form travel questions grounded on the knowledge base.
type Service interface {
	Chat(ctx context.Context, message string) (*types.ChatResponse, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	searcher  Searcher
	generator ContentGenerator
}

func NewServiceImpl(searcher Searcher, generator ContentGenerator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		searcher:  searcher,
		generator: generator,
	}
}

// Chat retrieves the knowledge items most relevant to the message, folds
// them into the prompt and returns the model's reply together with the
// sources it was grounded on. A retrieval failure degrades to an ungrounded
// answer rather than failing the whole request.
func (s *ServiceImpl) Chat(ctx context.Context, message string) (*types.ChatResponse, error) {
	ctx, span := otel.Tracer("AssistantService").Start(ctx, "Chat", trace.WithAttributes(
		attribute.Int("chat.message_length", len(message)),
	))
	defer span.End()

	message = strings.TrimSpace(message)
	if message == "" {
		err := fmt.Errorf("message must not be empty")
		span.SetStatus(codes.Error, "Empty message")
		return nil, err
	}

	sources, err := s.searcher.Search(ctx, message, knowledge.SearchOptions{
		TopK:     contextTopK,
		MinScore: contextMinScore,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Knowledge retrieval failed, answering without context",
			slog.Any("error", err))
		span.RecordError(err)
		sources = nil
	}

	answer, err := s.generator.GenerateContent(ctx, buildPrompt(message, sources), nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate chat response", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	metrics.Get().ChatRequestsTotal.Add(ctx, 1)
	span.SetAttributes(attribute.Int("chat.sources", len(sources)))
	span.SetStatus(codes.Ok, "Chat completed")
	return &types.ChatResponse{
		Response: answer,
		Sources:  sources,
	}, nil
}

package assistant

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/neptou/go-travel-assistant/internal/api"
	"github.com/neptou/go-travel-assistant/internal/types"
)

const maxMessageLength = 10000

type Handler struct {
	assistantService Service
	logger           *slog.Logger
}

func NewHandler(assistantService Service, logger *slog.Logger) *Handler {
	return &Handler{
		assistantService: assistantService,
		logger:           logger,
	}
}

// Chat answers a travel question grounded on the knowledge base.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AssistantHandler").Start(r.Context(), "Chat", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/chat"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Chat"))

	var req types.ChatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Message == "" || len(req.Message) > maxMessageLength {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Message must be between 1 and 10000 characters")
		return
	}

	resp, err := h.assistantService.Chat(ctx, req.Message)
	if err != nil {
		l.ErrorContext(ctx, "Chat request failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "An error occurred answering the message")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

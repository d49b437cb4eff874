package llm

import (
	"log/slog"

	"github.com/xiaot623/gogo/chatapi/internal/config"
)

// NewLLMClient creates a generation client from configuration.
// In MOCK mode it returns a MockClient. Otherwise the Azure settings are
// validated first and a *domain.ConfigurationError is returned when any are
// missing or malformed.
func NewLLMClient(cfg *config.Config, logger *slog.Logger) (LLMClient, error) {
	if cfg.IsMock() {
		logger.Info("CHATAPI_MODE=MOCK detected, using mock LLM client")
		return NewMockClient(), nil
	}

	if err := cfg.ValidateAzure(); err != nil {
		return nil, err
	}

	return NewClient(cfg.Azure.Endpoint, cfg.Azure.Deployment, cfg.Azure.APIVersion, cfg.Azure.APIKey, cfg.LLMTimeout), nil
}

// NewClientOrUnavailable is like NewLLMClient but degrades to an UnavailableClient
// instead of failing, so the server can start and report the problem.
func NewClientOrUnavailable(cfg *config.Config, logger *slog.Logger) LLMClient {
	client, err := NewLLMClient(cfg, logger)
	if err != nil {
		logger.Warn("generation client unavailable", "error", err)
		return NewUnavailableClient(err)
	}
	return client
}

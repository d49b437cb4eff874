package service

import "context"

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus reports whether the generation client is usable.
type HealthStatus struct {
	Status              string `json:"status"`
	AzureEndpoint       string `json:"azure_endpoint,omitempty"`
	Deployment          string `json:"deployment,omitempty"`
	APIVersion          string `json:"api_version,omitempty"`
	Mode                string `json:"mode,omitempty"`
	ActiveConversations int    `json:"active_conversations"`
	Error               string `json:"error,omitempty"`
}

// Health checks configuration without contacting the provider.
func (s *Service) Health(ctx context.Context) *HealthStatus {
	active := s.orchestrator.Registry().Len()
	if err := s.llmClient.Check(); err != nil {
		return &HealthStatus{
			Status:              StatusUnhealthy,
			ActiveConversations: active,
			Error:               err.Error(),
		}
	}

	mode := "azure"
	if s.config.IsMock() {
		mode = "mock"
	}
	return &HealthStatus{
		Status:              StatusHealthy,
		AzureEndpoint:       s.config.Azure.Endpoint,
		Deployment:          s.config.Azure.Deployment,
		APIVersion:          s.config.Azure.APIVersion,
		Mode:                mode,
		ActiveConversations: active,
	}
}

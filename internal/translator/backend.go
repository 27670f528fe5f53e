package translator

import (
	"context"
	"fmt"
	"time"
)

// TextClient is the part of the backend API client used for translation.
type TextClient interface {
	TranslateText(ctx context.Context, text, source, target string) (string, error)
}

// BackendService sends text to the transly backend's translate-text
// endpoint. Usage is billed to the logged-in account.
type BackendService struct {
	client TextClient
}

func NewBackendService(client TextClient) *BackendService {
	return &BackendService{client: client}
}

func (s *BackendService) Name() string {
	return "backend"
}

func (s *BackendService) Translate(ctx context.Context, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	source := req.SourceLang
	if source == "" {
		source = "auto"
	}

	text, err := s.client.TranslateText(ctx, req.Text, source, req.TargetLang)
	if err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("translation failed: %w", err)
	}

	result.TranslatedText = text
	return result, nil
}

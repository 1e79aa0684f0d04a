package videos

import (
	"context"
	"errors"

	"github.com/clipmarket/client/internal/models"
)

var (
	// ErrProviderUnavailable indicates the details provider is not configured.
	ErrProviderUnavailable = errors.New("videos: details provider unavailable")
	// ErrNotFound indicates the backend has no video with the given id.
	ErrNotFound = errors.New("videos: video not found")
)

// Provider returns full details for a single video id.
type Provider interface {
	Lookup(ctx context.Context, id string) (models.VideoSummary, error)
}

// Gateway is the slice of the API client the provider needs.
type Gateway interface {
	Get(ctx context.Context, path string, out any) error
}

// APIProvider resolves video details through the backend.
type APIProvider struct {
	gateway Gateway
}

// NewAPIProvider returns a Provider backed by the single-video endpoint.
func NewAPIProvider(gateway Gateway) *APIProvider {
	return &APIProvider{gateway: gateway}
}

// Lookup fetches details for the supplied video id.
func (p *APIProvider) Lookup(ctx context.Context, id string) (models.VideoSummary, error) {
	if p == nil || p.gateway == nil {
		return models.VideoSummary{}, ErrProviderUnavailable
	}

	// The backend wraps the single-video response in a "videos" field.
	var out struct {
		Videos *Payload `json:"videos"`
	}
	if err := p.gateway.Get(ctx, "/videos/"+id, &out); err != nil {
		return models.VideoSummary{}, err
	}
	if out.Videos == nil {
		return models.VideoSummary{}, ErrNotFound
	}
	return out.Videos.Summary(), nil
}

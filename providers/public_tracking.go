package providers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/safepack/tracking-service/models"
)

// PublicTrackingProvider implements TrackingLookup against the public
// tracking endpoint, GET {baseURL}/{trackingNumber}.
type PublicTrackingProvider struct {
	api apiClient
}

// NewPublicTrackingProvider creates a new PublicTrackingProvider.
func NewPublicTrackingProvider(baseURL string, timeout time.Duration) *PublicTrackingProvider {
	return &PublicTrackingProvider{api: newAPIClient(baseURL, timeout)}
}

func (p *PublicTrackingProvider) Lookup(ctx context.Context, trackingNumber string) (models.RemoteTracking, error) {
	var out models.RemoteTracking
	err := p.api.doRequest(ctx, "fetch tracking info", http.MethodGet, "/"+url.PathEscape(trackingNumber), "", nil, &out)
	if IsStatus(err, http.StatusNotFound) {
		return models.RemoteTracking{}, ErrTrackingNotFound
	}
	if err != nil {
		return models.RemoteTracking{}, err
	}
	return out, nil
}

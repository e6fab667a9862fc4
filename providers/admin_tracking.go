package providers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/safepack/tracking-service/models"
)

// AdminTrackingProvider implements AdminTrackingAPI against the admin
// tracking collection at baseURL.
type AdminTrackingProvider struct {
	api apiClient
}

// NewAdminTrackingProvider creates a new AdminTrackingProvider.
func NewAdminTrackingProvider(baseURL string, timeout time.Duration) *AdminTrackingProvider {
	return &AdminTrackingProvider{api: newAPIClient(baseURL, timeout)}
}

func (p *AdminTrackingProvider) List(ctx context.Context, token string) ([]models.RemoteTracking, error) {
	var out []models.RemoteTracking
	if err := p.api.doRequest(ctx, "fetch shipments", http.MethodGet, "", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *AdminTrackingProvider) Create(ctx context.Context, token string, payload models.TrackingPayload) (models.RemoteTracking, error) {
	var out models.RemoteTracking
	err := p.api.doRequest(ctx, "create shipment", http.MethodPost, "", token, payload, &out)
	return out, err
}

func (p *AdminTrackingProvider) Update(ctx context.Context, token, trackingNumber string, payload models.TrackingPayload) (models.RemoteTracking, error) {
	var out models.RemoteTracking
	err := p.api.doRequest(ctx, "update shipment", http.MethodPut, "/"+url.PathEscape(trackingNumber), token, payload, &out)
	return out, err
}

func (p *AdminTrackingProvider) Delete(ctx context.Context, token, trackingNumber string) error {
	return p.api.doRequest(ctx, "delete shipment", http.MethodDelete, "/"+url.PathEscape(trackingNumber), token, nil, nil)
}

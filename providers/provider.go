package providers

import (
	"context"

	"github.com/safepack/tracking-service/models"
)

// TrackingLookup is the public, unauthenticated tracking lookup API.
type TrackingLookup interface {
	// Lookup returns ErrTrackingNotFound when the API answers 404.
	Lookup(ctx context.Context, trackingNumber string) (models.RemoteTracking, error)
}

// AdminTrackingAPI is the authenticated tracking CRUD API. Every call takes
// the bearer token of the admin session.
type AdminTrackingAPI interface {
	List(ctx context.Context, token string) ([]models.RemoteTracking, error)
	Create(ctx context.Context, token string, payload models.TrackingPayload) (models.RemoteTracking, error)
	Update(ctx context.Context, token, trackingNumber string, payload models.TrackingPayload) (models.RemoteTracking, error)
	Delete(ctx context.Context, token, trackingNumber string) error
}

// Authenticator exchanges admin credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/safepack/tracking-service/models"
	"github.com/safepack/tracking-service/providers"
	"github.com/safepack/tracking-service/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LookupState is where a single tracking lookup ended up.
type LookupState string

const (
	LookupIdle     LookupState = "idle"
	LookupLoading  LookupState = "loading"
	LookupFound    LookupState = "found"
	LookupNotFound LookupState = "not_found"
	LookupError    LookupState = "error"
)

// LookupResult is the outcome of resolving one tracking id.
type LookupResult struct {
	TrackingID string
	State      LookupState
	Shipment   *models.Shipment
	// Err is the remote failure behind LookupError.
	Err error
}

// LookupService resolves tracking ids against the session store, falling
// back to the public tracking API, and searches the store.
type LookupService interface {
	// Resolve returns nil, nil when the shipment cannot be found, including
	// when the remote lookup failed; the failure is logged.
	Resolve(ctx context.Context, trackingID string) (*models.Shipment, error)
	// Lookup is Resolve with the outcome spelled out, so callers can tell a
	// genuine miss from a remote failure.
	Lookup(ctx context.Context, trackingID string) LookupResult
	Exists(ctx context.Context, trackingID string) (bool, error)
	Filter(term string) []models.Shipment
}

// MetricsRecorder records counters; *aws.MetricsClient satisfies it.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

// Metric names recorded by the lookup service.
const (
	MetricLookupLocalHits  = "TrackingLookupLocalHits"
	MetricLookupRemoteHits = "TrackingLookupRemoteHits"
	MetricLookupMisses     = "TrackingLookupMisses"
	MetricLookupErrors     = "TrackingLookupErrors"
)

type lookupServiceImpl struct {
	store   repository.ShipmentStore
	remote  providers.TrackingLookup
	metrics MetricsRecorder
	logger  *zap.Logger
	group   singleflight.Group
	now     func() time.Time
}

// NewLookupService creates a new LookupService. metrics may be nil.
func NewLookupService(
	store repository.ShipmentStore,
	remote providers.TrackingLookup,
	metrics MetricsRecorder,
	logger *zap.Logger,
) LookupService {
	return &lookupServiceImpl{
		store:   store,
		remote:  remote,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *lookupServiceImpl) Resolve(ctx context.Context, trackingID string) (*models.Shipment, error) {
	res := s.Lookup(ctx, trackingID)
	if res.State == LookupIdle {
		return nil, ErrEmptyTrackingID
	}
	return res.Shipment, nil
}

func (s *lookupServiceImpl) Exists(ctx context.Context, trackingID string) (bool, error) {
	sh, err := s.Resolve(ctx, trackingID)
	if err != nil {
		return false, err
	}
	return sh != nil, nil
}

func (s *lookupServiceImpl) Lookup(ctx context.Context, trackingID string) LookupResult {
	id := models.NormalizeTrackingID(trackingID)
	if id == "" {
		return LookupResult{State: LookupIdle}
	}

	if sh, ok := s.store.Get(id); ok {
		s.record(MetricLookupLocalHits)
		return LookupResult{TrackingID: id, State: LookupFound, Shipment: &sh}
	}

	// Concurrent lookups of the same id share one remote call. The call is
	// detached from the first caller's cancellation; each caller still stops
	// waiting when its own context ends.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(id, func() (interface{}, error) {
		return s.fetch(fetchCtx, id)
	})

	var (
		v      interface{}
		err    error
		shared bool
	)
	select {
	case r := <-ch:
		v, err, shared = r.Val, r.Err, r.Shared
	case <-ctx.Done():
		err = &providers.TransportError{Op: "lookup " + id, Err: ctx.Err()}
	}

	switch {
	case errors.Is(err, providers.ErrTrackingNotFound):
		s.record(MetricLookupMisses)
		return LookupResult{TrackingID: id, State: LookupNotFound}
	case err != nil:
		s.record(MetricLookupErrors)
		s.logger.Error("Tracking lookup failed",
			zap.String("tracking_id", id),
			zap.Bool("shared", shared),
			zap.Error(err),
		)
		return LookupResult{TrackingID: id, State: LookupError, Err: err}
	}

	sh := v.(models.Shipment).Clone()
	s.record(MetricLookupRemoteHits)
	return LookupResult{TrackingID: id, State: LookupFound, Shipment: &sh}
}

// fetch asks the public API for id and remembers the answer in the store.
func (s *lookupServiceImpl) fetch(ctx context.Context, id string) (models.Shipment, error) {
	rt, err := s.remote.Lookup(ctx, id)
	if err != nil {
		return models.Shipment{}, err
	}

	sh := rt.ToShipment(s.now())
	if sh.TrackingID == "" {
		sh.TrackingID = id
	}
	if err := s.store.Insert(sh); err != nil {
		if errors.Is(err, repository.ErrDuplicateTrackingID) {
			// Another writer got there first; serve what the store holds.
			if existing, ok := s.store.Get(sh.TrackingID); ok {
				return existing, nil
			}
		}
		s.logger.Warn("Failed to cache fetched shipment", zap.String("tracking_id", id), zap.Error(err))
	}
	return sh, nil
}

func (s *lookupServiceImpl) Filter(term string) []models.Shipment {
	return FilterShipments(s.store.All(), term)
}

func (s *lookupServiceImpl) record(metric string) {
	if s.metrics == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.metrics.RecordCount(ctx, metric, map[string]string{"Service": "tracking-service"}); err != nil {
			s.logger.Debug("Failed to record metric", zap.String("metric", metric), zap.Error(err))
		}
	}()
}

// FilterShipments keeps the shipments whose tracking id, recipient, phone,
// status, origin, destination or service contains term, ignoring case. An
// empty term keeps everything. Order is preserved.
func FilterShipments(shipments []models.Shipment, term string) []models.Shipment {
	needle := strings.ToLower(term)
	out := make([]models.Shipment, 0, len(shipments))
	for _, sh := range shipments {
		if needle == "" || matches(sh, needle) {
			out = append(out, sh)
		}
	}
	return out
}

func matches(sh models.Shipment, needle string) bool {
	for _, field := range []string{
		sh.TrackingID,
		sh.Recipient,
		sh.RecipientPhone,
		string(sh.Status),
		sh.Origin,
		sh.Destination,
		sh.Service,
	} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/safepack/tracking-service/models"
	"github.com/safepack/tracking-service/providers"
	"github.com/safepack/tracking-service/repository"
	"go.uber.org/zap"
)

// AdminService performs admin mutations against the tracking API and keeps
// the session store in step with it.
//
// Status-update history is session scoped: the tracking API stores only the
// current status, so appended updates live in the local store and are lost
// when the process restarts.
type AdminService interface {
	Refresh(ctx context.Context, session *models.Session) ([]models.Shipment, error)
	Create(ctx context.Context, session *models.Session, draft models.ShipmentDraft) (*models.Shipment, error)
	Edit(ctx context.Context, session *models.Session, trackingID string, draft models.ShipmentDraft) (*models.Shipment, error)
	AppendUpdate(ctx context.Context, session *models.Session, trackingID string, draft models.UpdateDraft) (*models.Shipment, error)
	Remove(ctx context.Context, session *models.Session, trackingID string, confirmed bool) error
}

// EventPublisher publishes raw messages to a topic; *aws.SNSClient
// satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, topicArn string, message []byte) error
}

type adminServiceImpl struct {
	store     repository.ShipmentStore
	api       providers.AdminTrackingAPI
	publisher EventPublisher
	topicArn  string
	logger    *zap.Logger
	now       func() time.Time
}

// NewAdminService creates a new AdminService. publisher may be nil.
func NewAdminService(
	store repository.ShipmentStore,
	api providers.AdminTrackingAPI,
	publisher EventPublisher,
	topicArn string,
	logger *zap.Logger,
) AdminService {
	return &adminServiceImpl{
		store:     store,
		api:       api,
		publisher: publisher,
		topicArn:  topicArn,
		logger:    logger,
		now:       time.Now,
	}
}

// Refresh replaces the store with the API's collection. Local update history
// is carried over for shipments that are still present.
func (s *adminServiceImpl) Refresh(ctx context.Context, session *models.Session) ([]models.Shipment, error) {
	if err := s.requireSession(session); err != nil {
		return nil, err
	}

	remote, err := s.api.List(ctx, session.Token)
	if err != nil {
		return nil, s.remoteFailure("fetch shipments", err)
	}
	return s.replaceFrom(remote), nil
}

func (s *adminServiceImpl) replaceFrom(remote []models.RemoteTracking) []models.Shipment {
	now := s.now()
	fresh := make([]models.Shipment, 0, len(remote))
	for _, rt := range remote {
		fresh = append(fresh, s.reconcile(rt.ToShipment(now), now))
	}

	if dropped := s.store.ReplaceAll(fresh); len(dropped) > 0 {
		s.logger.Warn("Remote collection contains duplicate or empty tracking ids",
			zap.Strings("dropped", dropped),
		)
	}
	return s.store.All()
}

// reconcile keeps the local history of fresh's tracking id, adding a status
// entry when the remote status moved on without one.
func (s *adminServiceImpl) reconcile(fresh models.Shipment, now time.Time) models.Shipment {
	prev, ok := s.store.Get(fresh.TrackingID)
	if !ok || len(prev.Updates) == 0 {
		return fresh
	}
	history := prev.Updates
	if history[0].Status != fresh.Status {
		history = append([]models.ShipmentUpdate{
			models.NewCurrentStatusUpdate(fresh.Status, fresh.Destination, now),
		}, history...)
	}
	fresh.Updates = history
	return fresh
}

func (s *adminServiceImpl) Create(ctx context.Context, session *models.Session, draft models.ShipmentDraft) (*models.Shipment, error) {
	if err := s.requireSession(session); err != nil {
		return nil, err
	}
	draft = draft.Normalize()
	if err := validateForm(draft); err != nil {
		return nil, err
	}

	now := s.now()
	draft.Status = models.StatusPending
	if draft.ShipDate == nil {
		draft.ShipDate = &now
	}

	created, err := s.api.Create(ctx, session.Token, models.PayloadFromDraft(draft))
	if err != nil {
		return nil, s.remoteFailure("create shipment", err)
	}

	// Seed the local entry with its label-created event so the refresh below
	// carries that history over.
	labelCreated := models.NewLabelCreatedUpdate(draft.Origin, now)
	local := shipmentFromDraft(created, draft, labelCreated)
	if local.TrackingID == "" {
		// The API answered without the new record; find it in the collection.
		if local, err = s.identifyCreated(ctx, session, local); err != nil {
			return nil, err
		}
	} else {
		if err := s.store.Insert(local); err != nil {
			s.logger.Warn("Failed to insert created shipment", zap.String("tracking_id", local.TrackingID), zap.Error(err))
		}
		if _, err := s.Refresh(ctx, session); err != nil {
			s.logger.Warn("Refresh after create failed", zap.Error(err))
		}
	}

	result := local
	if sh, ok := s.store.Get(local.TrackingID); ok {
		result = sh
	}

	s.logger.Info("Shipment created",
		zap.String("tracking_id", result.TrackingID),
		zap.String("actor", session.Username),
	)
	s.publishEvent(ctx, models.ShipmentEvent{
		EventType:  models.EventShipmentCreated,
		TrackingID: result.TrackingID,
		ShipmentID: result.ID,
		Status:     result.Status,
		Actor:      session.Username,
		Timestamp:  now,
	})
	return &result, nil
}

// identifyCreated fetches the collection and takes the tracking number that
// was not in the store before the create as the new shipment.
func (s *adminServiceImpl) identifyCreated(ctx context.Context, session *models.Session, local models.Shipment) (models.Shipment, error) {
	remote, err := s.api.List(ctx, session.Token)
	if err != nil {
		return models.Shipment{}, s.remoteFailure("fetch shipments after create", err)
	}

	var candidates []models.RemoteTracking
	for _, rt := range remote {
		id := models.NormalizeTrackingID(rt.TrackingNumber)
		if id == "" {
			continue
		}
		if _, known := s.store.Get(id); !known {
			candidates = append(candidates, rt)
		}
	}
	pick, ok := pickCreated(candidates, local)
	if !ok {
		return models.Shipment{}, ErrCreatedNotFound
	}

	local.ID = string(pick.ID)
	local.TrackingID = models.NormalizeTrackingID(pick.TrackingNumber)
	if err := s.store.Insert(local); err != nil {
		s.logger.Warn("Failed to insert created shipment", zap.String("tracking_id", local.TrackingID), zap.Error(err))
	}
	s.replaceFrom(remote)
	return local, nil
}

// pickCreated chooses the new record among the unknown ones: the only one,
// or the one whose recipient and route match what was submitted.
func pickCreated(candidates []models.RemoteTracking, local models.Shipment) (models.RemoteTracking, bool) {
	if len(candidates) == 1 {
		return candidates[0], true
	}
	for i := len(candidates) - 1; i >= 0; i-- {
		rt := candidates[i]
		if rt.RecipientName == local.Recipient && rt.Origin == local.Origin && rt.Destination == local.Destination {
			return rt, true
		}
	}
	return models.RemoteTracking{}, false
}

// shipmentFromDraft is the created shipment as submitted, identified by the
// id and tracking number the API assigned.
func shipmentFromDraft(created models.RemoteTracking, draft models.ShipmentDraft, first models.ShipmentUpdate) models.Shipment {
	return models.Shipment{
		ID:                string(created.ID),
		TrackingID:        models.NormalizeTrackingID(created.TrackingNumber),
		Recipient:         draft.Recipient,
		RecipientPhone:    draft.RecipientPhone,
		Origin:            draft.Origin,
		Destination:       draft.Destination,
		Status:            models.StatusPending,
		Service:           draft.Service,
		ShipDate:          *draft.ShipDate,
		EstimatedDelivery: draft.EstimatedDelivery,
		Updates:           []models.ShipmentUpdate{first},
	}
}

func (s *adminServiceImpl) Edit(ctx context.Context, session *models.Session, trackingID string, draft models.ShipmentDraft) (*models.Shipment, error) {
	if err := s.requireSession(session); err != nil {
		return nil, err
	}
	draft = draft.Normalize()
	if err := validateForm(draft); err != nil {
		return nil, err
	}

	id := models.NormalizeTrackingID(trackingID)
	current, ok := s.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if draft.Status == "" {
		draft.Status = current.Status
	}
	if draft.ShipDate == nil {
		shipDate := current.ShipDate
		draft.ShipDate = &shipDate
	}

	updated, err := s.api.Update(ctx, session.Token, id, models.PayloadFromDraft(draft))
	if err != nil {
		return nil, s.remoteFailure("update shipment", err)
	}

	if _, err := s.Refresh(ctx, session); err != nil {
		s.logger.Warn("Refresh after edit failed", zap.Error(err))
		patch := models.PatchFromShipment(s.serverCopy(updated, current, draft.Status))
		if _, err := s.store.Patch(id, patch); err != nil {
			s.logger.Warn("Failed to patch edited shipment", zap.String("tracking_id", id), zap.Error(err))
		}
	}

	result, ok := s.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}

	s.logger.Info("Shipment edited", zap.String("tracking_id", id), zap.String("actor", session.Username))
	s.publishEvent(ctx, models.ShipmentEvent{
		EventType:  models.EventShipmentEdited,
		TrackingID: id,
		ShipmentID: result.ID,
		Status:     result.Status,
		Actor:      session.Username,
		Timestamp:  s.now(),
	})
	return &result, nil
}

// AppendUpdate re-sends the shipment's core fields with the new status, then
// records the update locally. The API has nowhere to keep the entry itself.
func (s *adminServiceImpl) AppendUpdate(ctx context.Context, session *models.Session, trackingID string, draft models.UpdateDraft) (*models.Shipment, error) {
	if err := s.requireSession(session); err != nil {
		return nil, err
	}
	draft = draft.Normalize()
	if err := validateForm(draft); err != nil {
		return nil, err
	}

	id := models.NormalizeTrackingID(trackingID)
	current, ok := s.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if draft.Status == "" {
		draft.Status = current.Status
	}
	if draft.Status.Before(current.Status) {
		s.logger.Warn("Status update moves shipment backwards",
			zap.String("tracking_id", id),
			zap.String("from", string(current.Status)),
			zap.String("to", string(draft.Status)),
		)
	}

	updated, err := s.api.Update(ctx, session.Token, id, models.PayloadFromShipment(current, draft.Status))
	if err != nil {
		return nil, s.remoteFailure("update shipment status", err)
	}

	if _, err := s.store.Patch(id, models.PatchFromShipment(s.serverCopy(updated, current, draft.Status))); err != nil {
		return nil, err
	}
	now := s.now()
	result, err := s.store.AppendUpdate(id, draft.ToUpdate(now))
	if err != nil {
		return nil, err
	}
	if !result.Consistent() {
		s.logger.Warn("Shipment status disagrees with latest update",
			zap.String("tracking_id", id),
			zap.String("status", string(result.Status)),
		)
	}

	s.logger.Info("Shipment status updated",
		zap.String("tracking_id", id),
		zap.String("status", string(draft.Status)),
		zap.String("actor", session.Username),
	)
	s.publishEvent(ctx, models.ShipmentEvent{
		EventType:   models.EventShipmentUpdated,
		TrackingID:  id,
		ShipmentID:  result.ID,
		Status:      draft.Status,
		Description: draft.Description,
		Actor:       session.Username,
		Timestamp:   now,
	})
	return &result, nil
}

// serverCopy is the API's version of the shipment when it sent one back,
// otherwise current with the status that was sent.
func (s *adminServiceImpl) serverCopy(rt models.RemoteTracking, current models.Shipment, status models.ShipmentStatus) models.Shipment {
	if rt.TrackingNumber == "" {
		out := current.Clone()
		out.Status = status
		return out
	}
	return rt.ToShipment(s.now())
}

func (s *adminServiceImpl) Remove(ctx context.Context, session *models.Session, trackingID string, confirmed bool) error {
	if err := s.requireSession(session); err != nil {
		return err
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	id := models.NormalizeTrackingID(trackingID)
	if id == "" {
		return ErrEmptyTrackingID
	}

	if err := s.api.Delete(ctx, session.Token, id); err != nil {
		return s.remoteFailure("delete shipment", err)
	}

	if err := s.store.Remove(id); err != nil && !errors.Is(err, repository.ErrShipmentNotFound) {
		return err
	}
	if _, err := s.Refresh(ctx, session); err != nil {
		s.logger.Warn("Refresh after delete failed", zap.Error(err))
	}

	s.logger.Info("Shipment deleted", zap.String("tracking_id", id), zap.String("actor", session.Username))
	s.publishEvent(ctx, models.ShipmentEvent{
		EventType:  models.EventShipmentDeleted,
		TrackingID: id,
		Actor:      session.Username,
		Timestamp:  s.now(),
	})
	return nil
}

func (s *adminServiceImpl) requireSession(session *models.Session) error {
	if !session.HasCredential() {
		return ErrUnauthenticated
	}
	if session.Expired(s.now()) {
		return fmt.Errorf("%w: session expired", ErrUnauthenticated)
	}
	return nil
}

// remoteFailure logs err and turns a rejected credential into
// ErrUnauthenticated; anything else is returned unchanged.
func (s *adminServiceImpl) remoteFailure(op string, err error) error {
	s.logger.Error("Admin API call failed", zap.String("op", op), zap.Error(err))
	var re *providers.RemoteError
	if errors.As(err, &re) && (re.StatusCode == http.StatusUnauthorized || re.StatusCode == http.StatusForbidden) {
		return fmt.Errorf("%w: %s", ErrUnauthenticated, re.Message)
	}
	return err
}

// publishEvent marshals an event and publishes it to SNS (non-fatal on error).
func (s *adminServiceImpl) publishEvent(ctx context.Context, event models.ShipmentEvent) {
	if s.publisher == nil || s.topicArn == "" {
		s.logger.Debug("SNS not configured, skipping event publish", zap.String("event", event.EventType))
		return
	}
	b, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal SNS event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, s.topicArn, b); err != nil {
		s.logger.Error("Failed to publish SNS event", zap.Error(err))
		return
	}
	s.logger.Info("Published SNS event", zap.String("topic", s.topicArn), zap.String("event", event.EventType))
}

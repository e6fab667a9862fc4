package repository

import (
	"errors"
	"sync"

	"github.com/safepack/tracking-service/models"
)

var (
	ErrDuplicateTrackingID = errors.New("tracking id already exists")
	ErrShipmentNotFound    = errors.New("shipment not found")
	ErrEmptyTrackingID     = errors.New("tracking id is empty")
)

// ShipmentStore holds the shipments known to the current session, keyed by
// uppercase tracking id and iterated in insertion order.
type ShipmentStore interface {
	Get(trackingID string) (models.Shipment, bool)
	All() []models.Shipment
	Len() int
	Insert(shipment models.Shipment) error
	// ReplaceAll swaps in a freshly fetched collection. Later entries that
	// repeat an earlier tracking id are dropped and their ids returned.
	ReplaceAll(shipments []models.Shipment) []string
	Patch(trackingID string, patch models.ShipmentPatch) (models.Shipment, error)
	// AppendUpdate puts u at the head of the shipment's update log.
	AppendUpdate(trackingID string, u models.ShipmentUpdate) (models.Shipment, error)
	Remove(trackingID string) error
}

// snapshot is immutable once published; every mutation builds a new one.
type snapshot struct {
	order []models.Shipment
	index map[string]int
}

var emptySnapshot = &snapshot{index: map[string]int{}}

// MemoryShipmentStore implements ShipmentStore with copy-on-write snapshots.
// The mutex only serialises writers and the pointer swap.
type MemoryShipmentStore struct {
	mu   sync.RWMutex
	snap *snapshot
}

// NewMemoryShipmentStore creates a store seeded with the given shipments.
func NewMemoryShipmentStore(seed ...models.Shipment) *MemoryShipmentStore {
	s := &MemoryShipmentStore{snap: emptySnapshot}
	if len(seed) > 0 {
		s.ReplaceAll(seed)
	}
	return s
}

func (s *MemoryShipmentStore) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *MemoryShipmentStore) Get(trackingID string) (models.Shipment, bool) {
	snap := s.current()
	i, ok := snap.index[models.NormalizeTrackingID(trackingID)]
	if !ok {
		return models.Shipment{}, false
	}
	return snap.order[i].Clone(), true
}

func (s *MemoryShipmentStore) All() []models.Shipment {
	snap := s.current()
	out := make([]models.Shipment, len(snap.order))
	for i, sh := range snap.order {
		out[i] = sh.Clone()
	}
	return out
}

func (s *MemoryShipmentStore) Len() int {
	return len(s.current().order)
}

func (s *MemoryShipmentStore) Insert(shipment models.Shipment) error {
	id := models.NormalizeTrackingID(shipment.TrackingID)
	if id == "" {
		return ErrEmptyTrackingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.snap.index[id]; exists {
		return ErrDuplicateTrackingID
	}
	shipment = shipment.Clone()
	shipment.TrackingID = id

	next := &snapshot{
		order: make([]models.Shipment, len(s.snap.order), len(s.snap.order)+1),
		index: make(map[string]int, len(s.snap.index)+1),
	}
	copy(next.order, s.snap.order)
	for k, v := range s.snap.index {
		next.index[k] = v
	}
	next.index[id] = len(next.order)
	next.order = append(next.order, shipment)
	s.snap = next
	return nil
}

func (s *MemoryShipmentStore) ReplaceAll(shipments []models.Shipment) []string {
	next := &snapshot{
		order: make([]models.Shipment, 0, len(shipments)),
		index: make(map[string]int, len(shipments)),
	}
	var dropped []string
	for _, sh := range shipments {
		id := models.NormalizeTrackingID(sh.TrackingID)
		if id == "" {
			dropped = append(dropped, sh.TrackingID)
			continue
		}
		if _, dup := next.index[id]; dup {
			dropped = append(dropped, id)
			continue
		}
		sh = sh.Clone()
		sh.TrackingID = id
		next.index[id] = len(next.order)
		next.order = append(next.order, sh)
	}

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()
	return dropped
}

func (s *MemoryShipmentStore) Patch(trackingID string, patch models.ShipmentPatch) (models.Shipment, error) {
	return s.modify(trackingID, patch.Apply)
}

func (s *MemoryShipmentStore) AppendUpdate(trackingID string, u models.ShipmentUpdate) (models.Shipment, error) {
	return s.modify(trackingID, func(sh models.Shipment) models.Shipment {
		out := sh.Clone()
		updates := make([]models.ShipmentUpdate, 0, len(sh.Updates)+1)
		updates = append(updates, u)
		out.Updates = append(updates, sh.Updates...)
		return out
	})
}

// modify replaces one entry with fn's result in a new snapshot.
func (s *MemoryShipmentStore) modify(trackingID string, fn func(models.Shipment) models.Shipment) (models.Shipment, error) {
	id := models.NormalizeTrackingID(trackingID)

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.snap.index[id]
	if !ok {
		return models.Shipment{}, ErrShipmentNotFound
	}
	updated := fn(s.snap.order[i])
	updated.ID = s.snap.order[i].ID
	updated.TrackingID = id

	next := &snapshot{
		order: make([]models.Shipment, len(s.snap.order)),
		index: s.snap.index,
	}
	copy(next.order, s.snap.order)
	next.order[i] = updated
	s.snap = next
	return updated.Clone(), nil
}

func (s *MemoryShipmentStore) Remove(trackingID string) error {
	id := models.NormalizeTrackingID(trackingID)

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.snap.index[id]
	if !ok {
		return ErrShipmentNotFound
	}
	next := &snapshot{
		order: make([]models.Shipment, 0, len(s.snap.order)-1),
		index: make(map[string]int, len(s.snap.index)-1),
	}
	for j, sh := range s.snap.order {
		if j == i {
			continue
		}
		next.index[sh.TrackingID] = len(next.order)
		next.order = append(next.order, sh)
	}
	s.snap = next
	return nil
}

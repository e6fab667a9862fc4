package repository_test

import (
	"testing"
	"time"

	"github.com/safepack/tracking-service/models"
	"github.com/safepack/tracking-service/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShipment(trackingID string, status models.ShipmentStatus) models.Shipment {
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	return models.Shipment{
		ID:          "1",
		TrackingID:  trackingID,
		Recipient:   "John Smith",
		Origin:      "New York, NY",
		Destination: "Los Angeles, CA",
		Status:      status,
		Service:     "Express Delivery",
		ShipDate:    now,
		Updates:     []models.ShipmentUpdate{models.NewLabelCreatedUpdate("New York, NY", now)},
	}
}

func TestGet_CaseInsensitive(t *testing.T) {
	store := repository.NewMemoryShipmentStore(newShipment("SWIFT123", models.StatusInTransit))

	s, ok := store.Get("swift123")
	assert.True(t, ok)
	assert.Equal(t, "SWIFT123", s.TrackingID)

	_, ok = store.Get("SWIFT999")
	assert.False(t, ok)
}

func TestInsert_NormalizesAndRejectsDuplicates(t *testing.T) {
	store := repository.NewMemoryShipmentStore()

	require.NoError(t, store.Insert(newShipment(" swift1 ", models.StatusPending)))
	s, ok := store.Get("SWIFT1")
	require.True(t, ok)
	assert.Equal(t, "SWIFT1", s.TrackingID)

	err := store.Insert(newShipment("Swift1", models.StatusPending))
	assert.ErrorIs(t, err, repository.ErrDuplicateTrackingID)
	assert.Equal(t, 1, store.Len())
}

func TestInsert_EmptyTrackingID(t *testing.T) {
	store := repository.NewMemoryShipmentStore()
	err := store.Insert(newShipment("  ", models.StatusPending))
	assert.ErrorIs(t, err, repository.ErrEmptyTrackingID)
}

func TestAll_PreservesInsertionOrder(t *testing.T) {
	store := repository.NewMemoryShipmentStore()
	for _, id := range []string{"C1", "A1", "B1"} {
		require.NoError(t, store.Insert(newShipment(id, models.StatusPending)))
	}

	var ids []string
	for _, s := range store.All() {
		ids = append(ids, s.TrackingID)
	}
	assert.Equal(t, []string{"C1", "A1", "B1"}, ids)
}

func TestReplaceAll_DropsDuplicates(t *testing.T) {
	store := repository.NewMemoryShipmentStore(newShipment("OLD1", models.StatusPending))

	first := newShipment("NEW1", models.StatusPending)
	dup := newShipment("new1", models.StatusDelivered)
	dropped := store.ReplaceAll([]models.Shipment{first, dup, newShipment("NEW2", models.StatusPending)})

	assert.Equal(t, []string{"NEW1"}, dropped)
	assert.Equal(t, 2, store.Len())
	_, ok := store.Get("OLD1")
	assert.False(t, ok)
	s, _ := store.Get("NEW1")
	assert.Equal(t, models.StatusPending, s.Status)
}

func TestPatch_MergesFields(t *testing.T) {
	store := repository.NewMemoryShipmentStore(newShipment("SWIFT1", models.StatusPending))

	dest := "Miami, FL"
	status := models.StatusProcessing
	s, err := store.Patch("swift1", models.ShipmentPatch{Destination: &dest, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Miami, FL", s.Destination)
	assert.Equal(t, models.StatusProcessing, s.Status)
	assert.Equal(t, "John Smith", s.Recipient)
	assert.Equal(t, "1", s.ID)
}

func TestPatch_NotFound(t *testing.T) {
	store := repository.NewMemoryShipmentStore()
	_, err := store.Patch("SWIFT1", models.ShipmentPatch{})
	assert.ErrorIs(t, err, repository.ErrShipmentNotFound)
}

func TestAppendUpdate_PrependsAndIsolatesOthers(t *testing.T) {
	store := repository.NewMemoryShipmentStore(
		newShipment("SWIFT1", models.StatusPending),
		newShipment("SWIFT2", models.StatusPending),
	)
	before, _ := store.Get("SWIFT2")

	u := models.ShipmentUpdate{Timestamp: time.Now(), Status: models.StatusInTransit, Description: "Departed"}
	s, err := store.AppendUpdate("SWIFT1", u)
	require.NoError(t, err)
	assert.Len(t, s.Updates, 2)
	assert.Equal(t, "Departed", s.Updates[0].Description)

	after, _ := store.Get("SWIFT2")
	assert.Equal(t, before, after)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	store := repository.NewMemoryShipmentStore(newShipment("SWIFT1", models.StatusPending))

	held := store.All()
	held[0].Updates[0].Description = "mutated by caller"

	_, err := store.AppendUpdate("SWIFT1", models.ShipmentUpdate{Description: "Departed"})
	require.NoError(t, err)

	assert.Len(t, held[0].Updates, 1)
	s, _ := store.Get("SWIFT1")
	assert.Equal(t, models.LabelCreatedDescription, s.Updates[1].Description)
}

func TestRemove(t *testing.T) {
	store := repository.NewMemoryShipmentStore(
		newShipment("SWIFT1", models.StatusPending),
		newShipment("SWIFT2", models.StatusPending),
		newShipment("SWIFT3", models.StatusPending),
	)

	require.NoError(t, store.Remove("swift2"))
	assert.Equal(t, 2, store.Len())
	_, ok := store.Get("SWIFT3")
	assert.True(t, ok)

	assert.ErrorIs(t, store.Remove("SWIFT2"), repository.ErrShipmentNotFound)
}

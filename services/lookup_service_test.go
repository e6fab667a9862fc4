package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/safepack/tracking-service/models"
	"github.com/safepack/tracking-service/repository"
	"github.com/safepack/tracking-service/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLookup(store repository.ShipmentStore, remote *mockLookup) services.LookupService {
	return services.NewLookupService(store, remote, nil, testLogger())
}

func TestResolve_LocalHitIgnoresCase(t *testing.T) {
	store := repository.NewMemoryShipmentStore(models.DemoShipments()...)
	remote := &mockLookup{}
	svc := newLookup(store, remote)

	sh, err := svc.Resolve(context.Background(), "  swift1234567 ")
	require.NoError(t, err)
	require.NotNil(t, sh)
	assert.Equal(t, "SWIFT1234567", sh.TrackingID)
	assert.Equal(t, 0, remote.callCount())
}

func TestResolve_RemoteHitIsCached(t *testing.T) {
	store := repository.NewMemoryShipmentStore()
	remote := &mockLookup{records: map[string]models.RemoteTracking{
		"SWIFT5550001": {ID: "5", TrackingNumber: "swift5550001", Status: "in_transit", Destination: "Austin, TX"},
	}}
	svc := newLookup(store, remote)

	sh, err := svc.Resolve(context.Background(), "swift5550001")
	require.NoError(t, err)
	require.NotNil(t, sh)
	assert.Equal(t, models.StatusInTransit, sh.Status)
	require.Len(t, sh.Updates, 1)
	assert.Equal(t, "Current status: in_transit", sh.Updates[0].Description)

	_, err = svc.Resolve(context.Background(), "SWIFT5550001")
	require.NoError(t, err)
	assert.Equal(t, 1, remote.callCount())
	assert.Equal(t, 1, store.Len())
}

func TestResolve_NotFound(t *testing.T) {
	svc := newLookup(repository.NewMemoryShipmentStore(), &mockLookup{})

	sh, err := svc.Resolve(context.Background(), "SWIFT0000000")
	assert.NoError(t, err)
	assert.Nil(t, sh)
}

func TestResolve_RemoteFailureLooksLikeMiss(t *testing.T) {
	svc := newLookup(repository.NewMemoryShipmentStore(), &mockLookup{err: errBoom})

	sh, err := svc.Resolve(context.Background(), "SWIFT1")
	assert.NoError(t, err)
	assert.Nil(t, sh)

	res := svc.Lookup(context.Background(), "SWIFT1")
	assert.Equal(t, services.LookupError, res.State)
	assert.ErrorIs(t, res.Err, errBoom)
}

func TestResolve_EmptyInput(t *testing.T) {
	remote := &mockLookup{}
	svc := newLookup(repository.NewMemoryShipmentStore(), remote)

	_, err := svc.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, services.ErrEmptyTrackingID)
	assert.Equal(t, services.LookupIdle, svc.Lookup(context.Background(), "").State)
	assert.Equal(t, 0, remote.callCount())
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	empty := newLookup(repository.NewMemoryShipmentStore(), &mockLookup{})
	ok, err := empty.Exists(ctx, "SWIFT1234567")
	require.NoError(t, err)
	assert.False(t, ok)

	seeded := newLookup(repository.NewMemoryShipmentStore(models.DemoShipments()...), &mockLookup{})
	ok, err = seeded.Exists(ctx, "swift9876543")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLookup_ConcurrentCallsShareOneFetch(t *testing.T) {
	remote := &mockLookup{
		records: map[string]models.RemoteTracking{"SWIFT7": {TrackingNumber: "SWIFT7", Status: "pending"}},
		release: make(chan struct{}),
	}
	svc := newLookup(repository.NewMemoryShipmentStore(), remote)

	var wg sync.WaitGroup
	results := make([]services.LookupResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Lookup(context.Background(), "swift7")
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(remote.release)
	wg.Wait()

	assert.Equal(t, 1, remote.callCount())
	for _, r := range results {
		assert.Equal(t, services.LookupFound, r.State)
	}
}

func TestLookup_CancelledCallerDoesNotFailOthers(t *testing.T) {
	remote := &mockLookup{
		records: map[string]models.RemoteTracking{"SWIFT8": {TrackingNumber: "SWIFT8", Status: "in_transit"}},
		release: make(chan struct{}),
	}
	store := repository.NewMemoryShipmentStore()
	svc := newLookup(store, remote)

	ctxA, cancelA := context.WithCancel(context.Background())
	first := make(chan services.LookupResult, 1)
	go func() { first <- svc.Lookup(ctxA, "swift8") }()
	require.Eventually(t, func() bool { return remote.callCount() == 1 }, time.Second, 5*time.Millisecond)

	second := make(chan services.LookupResult, 1)
	go func() { second <- svc.Lookup(context.Background(), "SWIFT8") }()

	cancelA()
	a := <-first
	assert.Equal(t, services.LookupError, a.State)
	assert.True(t, errors.Is(a.Err, context.Canceled))

	time.Sleep(20 * time.Millisecond)
	close(remote.release)

	b := <-second
	assert.Equal(t, services.LookupFound, b.State)
	require.NotNil(t, b.Shipment)
	assert.Equal(t, models.StatusInTransit, b.Shipment.Status)
	assert.Equal(t, 1, remote.callCount())
	assert.Eventually(t, func() bool { return store.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestLookup_RecordsMetrics(t *testing.T) {
	metrics := &mockMetrics{recorded: make(chan string, 1)}
	store := repository.NewMemoryShipmentStore(models.DemoShipments()...)
	svc := services.NewLookupService(store, &mockLookup{}, metrics, testLogger())

	svc.Lookup(context.Background(), "SWIFT1234567")

	select {
	case name := <-metrics.recorded:
		assert.Equal(t, services.MetricLookupLocalHits, name)
	case <-time.After(time.Second):
		t.Fatal("metric not recorded")
	}
}

func TestFilter(t *testing.T) {
	all := models.DemoShipments()
	svc := newLookup(repository.NewMemoryShipmentStore(all...), &mockLookup{})

	assert.Len(t, svc.Filter(""), len(all))
	assert.Empty(t, svc.Filter("   "), "whitespace is matched literally")

	byCity := svc.Filter("los angeles")
	require.NotEmpty(t, byCity)
	for _, sh := range byCity {
		assert.Contains(t, sh.Origin+sh.Destination, "Los Angeles")
	}

	byStatus := svc.Filter("DELIVERED")
	for _, sh := range byStatus {
		assert.Equal(t, models.StatusDelivered, sh.Status)
	}

	assert.Empty(t, svc.Filter("no-such-thing"))
}

func TestFilterShipments_Idempotent(t *testing.T) {
	all := models.DemoShipments()
	for _, term := range []string{"", "swift", "express", "in_transit"} {
		once := services.FilterShipments(all, term)
		twice := services.FilterShipments(once, term)
		assert.Equal(t, once, twice, term)
	}
}

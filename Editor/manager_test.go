package Editor

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"RiderBross/Models"
	"RiderBross/Photo"
)

func newTestManager(t *testing.T) (*Manager, *recordingStore) {
	t.Helper()
	m := new(mockRefStore)
	stubLists(m, nil)
	m.On("CategoriesByIDs", mock.Anything, mock.Anything).Return([]Models.ServiceCategory{}, nil)

	store := newRecordingStore()
	store.owners[1] = uintPtr(7)
	return NewManager(NewMemoryRegistry(time.Minute), NewLoader(m), store, NewSubmitter(store)), store
}

func TestMemoryRegistryIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry(time.Minute)
	s := readySession()
	require.NoError(t, r.Put(ctx, s))

	got, err := r.Get(ctx, s.ID)
	require.NoError(t, err)
	_, err = got.AddLineItem(nil)
	require.NoError(t, err)

	again, err := r.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Drafts)

	require.NoError(t, r.Delete(ctx, s.ID))
	_, err = r.Get(ctx, s.ID)
	assert.Equal(t, ErrSessionNotFound, err)
}

func TestManagerNewSessionFlow(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t)

	s, err := mgr.Open(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, s.LoadError)
	assert.Equal(t, "Nuevo servicio", s.Title())

	s, err = mgr.Update(ctx, s.ID, func(s *Session) error {
		s.SetHeader(HeaderPatch{VehicleID: uintPtr(1), Km: strPtr("15.000")})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), *s.ClientID)

	// a failing update is not persisted
	_, err = mgr.Update(ctx, s.ID, func(s *Session) error {
		s.Comment = "lost"
		return ErrDraftNotFound
	})
	assert.Equal(t, ErrDraftNotFound, err)
	s, err = mgr.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, s.Comment)

	_, err = mgr.Update(ctx, s.ID, func(s *Session) error {
		s.BulkAdd([]uint{1, 3})
		return nil
	})
	require.NoError(t, err)

	id, err := mgr.Submit(ctx, s.ID, admin)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Len(t, store.inserted, 2)

	_, err = mgr.Get(ctx, s.ID)
	assert.Equal(t, ErrSessionNotFound, err)
}

func TestManagerSubmitFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t)

	s, err := mgr.Open(ctx, nil)
	require.NoError(t, err)

	_, err = mgr.Submit(ctx, s.ID, admin)
	assert.Equal(t, ErrInvalidVehicle, err)

	_, err = mgr.Submit(ctx, s.ID, nil)
	assert.Equal(t, ErrNotAuthorized, err)

	_, err = mgr.Get(ctx, s.ID)
	assert.NoError(t, err)

	require.NoError(t, mgr.Discard(ctx, s.ID))
	_, err = mgr.Get(ctx, s.ID)
	assert.Equal(t, ErrSessionNotFound, err)
}

func TestManagerOpensExistingService(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t)

	stored := &Models.Service{VehicleID: 1, Km: 21500, Rating: intPtr(4), Photo: strPtr(`\x0102`),
		Details: []Models.ServiceDetail{{ServiceTypeID: uintPtr(3), NextDueKm: int64Ptr(30000)}}}
	stored.ID = 12
	store.services[12] = stored

	s, err := mgr.Open(ctx, uintPtr(12))
	require.NoError(t, err)
	assert.Equal(t, "Editar servicio #12", s.Title())
	assert.Equal(t, "21.500", s.Km)
	assert.Equal(t, "30.000", s.Drafts[0].NextDueKm)
	assert.Equal(t, "AQI=", s.Photo.Base64)

	id, err := mgr.Submit(ctx, s.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)
	assert.Equal(t, []string{"update_service", "delete_details", "insert_details"}, store.writes())

	_, err = mgr.Open(ctx, uintPtr(404))
	assert.Error(t, err)
}

func TestRedisRegistry(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	r := NewRedisRegistry(client, time.Minute)
	s := readySession()
	_, err := s.AddLineItem(&DraftPatch{ServiceTypeID: uintPtr(1)})
	require.NoError(t, err)
	s.AttachPhoto(&Photo.Encoded{Data: []byte{0xff, 0xd8}})
	require.NoError(t, r.Put(ctx, s))
	assert.True(t, srv.Exists(sessionKey(s.ID)))

	got, err := r.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Drafts, got.Drafts)
	assert.Equal(t, s.Km, got.Km)
	assert.Equal(t, s.Photo, got.Photo)
	assert.Equal(t, s.Refs.ServiceTypes, got.Refs.ServiceTypes)
	assert.True(t, got.HeaderReady())
	assert.Len(t, got.Groups(), 1)

	require.NoError(t, r.Delete(ctx, s.ID))
	_, err = r.Get(ctx, s.ID)
	assert.Equal(t, ErrSessionNotFound, err)
}

func TestRedisRegistryExpires(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	r := NewRedisRegistry(client, time.Minute)
	s := readySession()
	require.NoError(t, r.Put(ctx, s))

	srv.FastForward(2 * time.Minute)
	_, err := r.Get(ctx, s.ID)
	assert.Equal(t, ErrSessionNotFound, err)
}

func countLocks(m *Manager) int {
	n := 0
	m.locks.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func TestManagerDropsLockOfExpiredSession(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t)

	s, err := mgr.Open(ctx, nil)
	require.NoError(t, err)
	_, err = mgr.Update(ctx, s.ID, func(*Session) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, countLocks(mgr))

	// the registry forgets the session on its own, as a TTL would
	require.NoError(t, mgr.registry.Delete(ctx, s.ID))

	_, err = mgr.Update(ctx, s.ID, func(*Session) error { return nil })
	assert.Equal(t, ErrSessionNotFound, err)
	assert.Zero(t, countLocks(mgr))

	_, err = mgr.Submit(ctx, s.ID, admin)
	assert.Equal(t, ErrSessionNotFound, err)
	assert.Zero(t, countLocks(mgr))
}

func TestManagerOpensServiceWithUndecodablePhoto(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t)

	for i, photo := range []string{`\xabc`, `\xzz11`, "not base64!"} {
		id := uint(20 + i)
		stored := &Models.Service{VehicleID: 1, Km: 9000, Photo: strPtr(photo)}
		stored.ID = id
		store.services[id] = stored

		s, err := mgr.Open(ctx, &id)
		require.NoError(t, err, photo)
		assert.Equal(t, Photo.IntentKeep, s.Photo.Intent)
		assert.Empty(t, s.Photo.Preview())
		assert.Equal(t, "9.000", s.Km)
	}
}

package Editor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiderBross/Models"
	"RiderBross/Photo"
)

var admin = &Models.User{Id: 1, Name: "admin"}

func TestCreateWithoutDetails(t *testing.T) {
	store := newRecordingStore()
	store.owners[1] = uintPtr(7)

	id, err := NewSubmitter(store).Create(context.Background(), admin, validInput())
	require.NoError(t, err)

	assert.Equal(t, []string{"insert_service"}, store.writes())
	svc := store.services[id]
	require.NotNil(t, svc)
	assert.Equal(t, uint(1), svc.VehicleID)
	assert.Equal(t, uint(7), *svc.ClientID)
	assert.Equal(t, int64(15000), svc.Km)
	assert.Nil(t, svc.Photo)
	assert.Empty(t, store.inserted)
}

func TestCreateRequiresUser(t *testing.T) {
	store := newRecordingStore()
	_, err := NewSubmitter(store).Create(context.Background(), nil, validInput())
	assert.Equal(t, ErrNotAuthorized, err)
	assert.Empty(t, store.calls)
}

func TestCreateRejectsBeforeStore(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServiceInput)
		want   error
	}{
		{"duplicate type", func(in *ServiceInput) {
			in.Details = []DetailInput{{ServiceTypeID: uintPtr(7)}, {ServiceTypeID: uintPtr(7)}}
		}, ErrDuplicateServiceType},
		{"next due below km", func(in *ServiceInput) {
			in.Details = []DetailInput{{NextDueKm: int64Ptr(12000)}}
		}, ErrNextDueBelowKm},
		{"rating 6", func(in *ServiceInput) { in.Rating = intPtr(6) }, ErrInvalidRating},
		{"header not ready", func(in *ServiceInput) {
			in.Km = nil
			in.Details = []DetailInput{{Comment: strPtr("x")}}
		}, ErrInvalidKm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newRecordingStore()
			in := validInput()
			tt.mutate(&in)

			_, err := NewSubmitter(store).Create(context.Background(), admin, in)
			assert.Equal(t, tt.want, err)
			assert.Empty(t, store.calls)
		})
	}
}

func TestCreateStoresNonEmptyDetails(t *testing.T) {
	store := newRecordingStore()
	store.owners[1] = uintPtr(7)

	in := validInput()
	in.Comment = strPtr("  service completo  ")
	in.Details = []DetailInput{
		{ServiceTypeID: uintPtr(1), NextDueKm: int64Ptr(20000), Recommendation: strPtr(" ")},
		{Comment: strPtr("   ")},
		{ServiceTypeID: uintPtr(2), Comment: strPtr(" ok ")},
	}

	id, err := NewSubmitter(store).Create(context.Background(), admin, in)
	require.NoError(t, err)

	assert.Equal(t, []string{"insert_service", "insert_details"}, store.writes())
	assert.Equal(t, "service completo", *store.services[id].Comment)
	require.Len(t, store.inserted, 2)
	for i, d := range store.inserted {
		assert.Equal(t, id, d.ServiceID)
		assert.Equal(t, i+1, d.ItemOrder)
	}
	assert.Nil(t, store.inserted[0].Recommendation)
	assert.Equal(t, "ok", *store.inserted[1].Comment)
}

func TestCreateStopsAtFirstStoreError(t *testing.T) {
	store := newRecordingStore()
	store.failOn = "insert_service"

	in := validInput()
	in.Details = []DetailInput{{ServiceTypeID: uintPtr(1)}}

	_, err := NewSubmitter(store).Create(context.Background(), admin, in)
	assert.Equal(t, errStore, err)
	assert.Equal(t, []string{"insert_service"}, store.writes())
}

func TestUpdateReplacesAllDetails(t *testing.T) {
	store := newRecordingStore()
	store.owners[1] = uintPtr(7)

	stored := &Models.Service{VehicleID: 1, Km: 15000, Details: []Models.ServiceDetail{
		{ServiceTypeID: uintPtr(1)}, {ServiceTypeID: uintPtr(2)}, {ServiceTypeID: uintPtr(3)},
	}}
	stored.ID = 42
	for i := range stored.Details {
		stored.Details[i].ID = uint(500 + i)
		stored.Details[i].ServiceID = 42
	}
	store.services[42] = stored

	s, err := SessionFromService(stored, readySession().Refs, nil)
	require.NoError(t, err)
	require.Len(t, s.Drafts, 3)
	require.NoError(t, s.Remove(s.Drafts[1].Key))
	_, err = s.AddLineItem(&DraftPatch{ServiceTypeID: uintPtr(4)})
	require.NoError(t, err)

	err = NewSubmitter(store).Update(context.Background(), admin, 42, s.Input())
	require.NoError(t, err)

	assert.Equal(t, []string{"update_service", "delete_details", "insert_details"}, store.writes())
	require.Len(t, store.inserted, 3)
	assert.Equal(t, []uint{1, 3, 4}, []uint{*store.inserted[0].ServiceTypeID, *store.inserted[1].ServiceTypeID, *store.inserted[2].ServiceTypeID})
	for _, d := range store.inserted {
		assert.Zero(t, d.ID)
		assert.Equal(t, uint(42), d.ServiceID)
	}
	_, photoTouched := store.updated["photo"]
	assert.False(t, photoTouched)
}

func TestUpdatePhotoIntent(t *testing.T) {
	store := newRecordingStore()
	submitter := NewSubmitter(store)

	in := validInput()
	in.Photo = Photo.NewAttachment()
	in.Photo.Clear()
	require.NoError(t, submitter.Update(context.Background(), admin, 3, in))
	value, ok := store.updated["photo"]
	assert.True(t, ok)
	assert.Nil(t, value)

	in.Photo.Set(&Photo.Encoded{Data: []byte{0xca, 0xfe}})
	require.NoError(t, submitter.Update(context.Background(), admin, 3, in))
	assert.Equal(t, `\xcafe`, *store.updated["photo"].(*string))
}

func TestUpdateGuards(t *testing.T) {
	store := newRecordingStore()
	submitter := NewSubmitter(store)

	assert.Equal(t, ErrNotAuthorized, submitter.Update(context.Background(), nil, 1, validInput()))
	assert.Equal(t, ErrInvalidID, submitter.Update(context.Background(), admin, 0, validInput()))

	in := validInput()
	in.ServiceDate = "01/05/2024"
	assert.Equal(t, ErrInvalidDate, submitter.Update(context.Background(), admin, 1, in))
	assert.Empty(t, store.calls)
}

func TestUpdateLeavesPartialWorkOnFailure(t *testing.T) {
	store := newRecordingStore()
	store.failOn = "insert_details"

	in := validInput()
	in.Details = []DetailInput{{ServiceTypeID: uintPtr(1)}}

	err := NewSubmitter(store).Update(context.Background(), admin, 9, in)
	assert.Equal(t, errStore, err)
	assert.Equal(t, []string{"update_service", "delete_details", "insert_details"}, store.writes())
}

func TestAtomicReplaceUsesTransaction(t *testing.T) {
	store := txStore{newRecordingStore()}

	_, err := NewSubmitter(store, WithAtomicReplace(true)).Create(context.Background(), admin, validInput())
	require.NoError(t, err)
	assert.Equal(t, 1, store.txCount)

	_, err = NewSubmitter(store).Create(context.Background(), admin, validInput())
	require.NoError(t, err)
	assert.Equal(t, 1, store.txCount)
}

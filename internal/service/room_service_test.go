package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	apperrors "roombooking/internal/errors"
)

type fakeImageStore struct {
	objects map[string][]byte
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{objects: map[string][]byte{}}
}

func (s *fakeImageStore) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	return s.PublicURL() + "/" + key, nil
}

func (s *fakeImageStore) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *fakeImageStore) PublicURL() string { return "https://cdn.test" }

func pngBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, "\x89PNG\r\n\x1a\n")
	return data
}

func roomNames(rooms []db.Room) []string {
	names := make([]string, 0, len(rooms))
	for _, r := range rooms {
		names = append(names, r.Name)
	}
	return names
}

func TestListRooms(t *testing.T) {
	f := newFixture(t)
	svc := NewRoomService(f.rooms, newFakeImageStore(), quietLogger())
	ctx := context.Background()

	all, err := svc.ListRooms(ctx, entities.RoomFilter{Type: "todos"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Auditório Central", "Laboratório 3", "Sala 101"}, roomNames(all))

	labs, err := svc.ListRooms(ctx, entities.RoomFilter{Type: "Laboratório"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Laboratório 3"}, roomNames(labs))

	big, err := svc.ListRooms(ctx, entities.RoomFilter{MinCapacity: 35, Search: "bloco"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Auditório Central", "Sala 101"}, roomNames(big))

	_, err = svc.ListRooms(ctx, entities.RoomFilter{Type: "ginasio"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = svc.ListRooms(ctx, entities.RoomFilter{MinCapacity: -1})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = svc.ListRooms(ctx, entities.RoomFilter{Status: "closed"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAvailableRooms(t *testing.T) {
	f := newFixture(t)
	svc := NewRoomService(f.rooms, newFakeImageStore(), quietLogger())
	ctx := context.Background()

	rooms, err := svc.AvailableRooms(ctx, entities.AvailabilityQuery{Participants: 35})
	require.NoError(t, err)
	assert.Equal(t, []string{"Auditório Central"}, roomNames(rooms))

	rooms, err = svc.AvailableRooms(ctx, entities.AvailabilityQuery{Type: db.RoomTypeLab})
	require.NoError(t, err)
	assert.Equal(t, []string{"Laboratório 3"}, roomNames(rooms))

	rooms, err = svc.AvailableRooms(ctx, entities.AvailabilityQuery{Type: db.RoomTypeClassroom})
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestFitsRequest(t *testing.T) {
	room := db.Room{Type: db.RoomTypeLab, Capacity: 20, Status: db.RoomAvailable}
	assert.True(t, fitsRequest(room, entities.AvailabilityQuery{}))
	assert.True(t, fitsRequest(room, entities.AvailabilityQuery{Participants: 20, Type: db.RoomTypeLab}))
	assert.False(t, fitsRequest(room, entities.AvailabilityQuery{Participants: 21}))
	assert.False(t, fitsRequest(room, entities.AvailabilityQuery{Type: db.RoomTypeAuditorium}))
	room.Status = db.RoomOccupied
	assert.False(t, fitsRequest(room, entities.AvailabilityQuery{}))
}

func TestCreateAndUpdateRoom(t *testing.T) {
	f := newFixture(t)
	svc := NewRoomService(f.rooms, newFakeImageStore(), quietLogger())
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, entities.RoomRequest{Name: "Sala 202", Type: "cozinha", Capacity: 0})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "type")
	assert.Contains(t, verr.Fields, "capacity")
	assert.Contains(t, verr.Fields, "location")

	room, err := svc.CreateRoom(ctx, entities.RoomRequest{
		Name: "Sala 202", Type: db.RoomTypeClassroom, Capacity: 35, Location: "Bloco C",
		Resources: []string{"Projetor", "", "Projetor", "Quadro"},
	})
	require.NoError(t, err)
	assert.Equal(t, db.RoomAvailable, room.Status)
	assert.Equal(t, []string{"Projetor", "Quadro"}, room.Resources)

	capacity := 50
	desc := "Reformada"
	updated, err := svc.UpdateRoom(ctx, room.ID, entities.RoomPatch{Capacity: &capacity, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Capacity)
	assert.Equal(t, "Sala 202", updated.Name)
	assert.Equal(t, "Reformada", *updated.Description)

	bad := 0
	_, err = svc.UpdateRoom(ctx, room.ID, entities.RoomPatch{Capacity: &bad})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	updated, err = svc.UpdateRoomStatus(ctx, room.ID, entities.RoomStatusRequest{Status: db.RoomMaintenance})
	require.NoError(t, err)
	assert.Equal(t, db.RoomMaintenance, updated.Status)

	_, err = svc.UpdateRoomStatus(ctx, "missing", entities.RoomStatusRequest{Status: db.RoomOccupied})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUploadRoomImage(t *testing.T) {
	f := newFixture(t)
	store := newFakeImageStore()
	svc := NewRoomService(f.rooms, store, quietLogger())
	ctx := context.Background()

	room, err := svc.UploadRoomImage(ctx, labID, bytes.NewReader(pngBytes(1024)))
	require.NoError(t, err)
	require.NotNil(t, room.ImageURL)
	assert.True(t, strings.HasPrefix(*room.ImageURL, "https://cdn.test/rooms/"+labID+"/"))
	assert.True(t, strings.HasSuffix(*room.ImageURL, ".png"))
	require.Len(t, store.objects, 1)

	// a replacement removes the previous object
	room, err = svc.UploadRoomImage(ctx, labID, bytes.NewReader(pngBytes(2048)))
	require.NoError(t, err)
	assert.Len(t, store.objects, 1)

	_, err = svc.UploadRoomImage(ctx, labID, strings.NewReader("just some text"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.UploadRoomImage(ctx, labID, bytes.NewReader(pngBytes(MaxImageSize+1)))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.UploadRoomImage(ctx, "missing", bytes.NewReader(pngBytes(10)))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, svc.DeleteRoom(ctx, labID))
	assert.Empty(t, store.objects)
	_, err = svc.GetRoom(ctx, labID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

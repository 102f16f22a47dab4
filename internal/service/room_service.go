package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	apperrors "roombooking/internal/errors"
	"roombooking/internal/repository"
	"roombooking/internal/storage"
	"roombooking/internal/utils"
)

const MaxImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type RoomService struct {
	repo   repository.RoomRepository
	images storage.ImageStore
	log    *logrus.Logger
}

func NewRoomService(repo repository.RoomRepository, images storage.ImageStore, log *logrus.Logger) *RoomService {
	return &RoomService{repo: repo, images: images, log: log}
}

// ListRooms accepts type keys or labels; "todos" means every type.
func (s *RoomService) ListRooms(ctx context.Context, filter entities.RoomFilter) ([]db.Room, error) {
	roomType, ok := utils.NormalizeRoomType(filter.Type)
	if !ok {
		return nil, apperrors.Invalid("type", "unknown room type")
	}
	filter.Type = roomType
	if filter.MinCapacity < 0 {
		return nil, apperrors.Invalid("min_capacity", "must not be negative")
	}
	if filter.Status != "" && !contains(db.RoomStatuses, filter.Status) {
		return nil, apperrors.Invalid("status", "unknown room status")
	}
	return s.repo.List(ctx, filter)
}

func (s *RoomService) GetRoom(ctx context.Context, id string) (*db.Room, error) {
	return s.repo.GetByID(ctx, id)
}

// AvailableRooms lists the rooms the wizard offers for the given criteria.
func (s *RoomService) AvailableRooms(ctx context.Context, q entities.AvailabilityQuery) ([]db.Room, error) {
	if q.Participants < 0 {
		return nil, apperrors.Invalid("participants", "must not be negative")
	}
	roomType, ok := utils.NormalizeRoomType(q.Type)
	if !ok {
		return nil, apperrors.Invalid("type", "unknown room type")
	}
	q.Type = roomType

	rooms, err := s.repo.List(ctx, entities.RoomFilter{Status: db.RoomAvailable})
	if err != nil {
		return nil, err
	}
	fit := []db.Room{}
	for _, r := range rooms {
		if fitsRequest(r, q) {
			fit = append(fit, r)
		}
	}
	return fit, nil
}

func fitsRequest(r db.Room, q entities.AvailabilityQuery) bool {
	if r.Status != db.RoomAvailable {
		return false
	}
	if q.Participants > 0 && r.Capacity < q.Participants {
		return false
	}
	return q.Type == "" || r.Type == q.Type
}

func (s *RoomService) CreateRoom(ctx context.Context, req entities.RoomRequest) (*db.Room, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	room := &db.Room{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Type:        req.Type,
		Capacity:    req.Capacity,
		Resources:   utils.CleanList(req.Resources),
		Status:      req.Status,
		Location:    req.Location,
		Description: req.Description,
	}
	if room.Status == "" {
		room.Status = db.RoomAvailable
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"room_id": room.ID, "name": room.Name}).Info("room created")
	return room, nil
}

// UpdateRoom applies the non-nil fields of patch.
func (s *RoomService) UpdateRoom(ctx context.Context, id string, patch entities.RoomPatch) (*db.Room, error) {
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		room.Name = *patch.Name
	}
	if patch.Type != nil {
		room.Type = *patch.Type
	}
	if patch.Capacity != nil {
		room.Capacity = *patch.Capacity
	}
	if patch.Resources != nil {
		room.Resources = utils.CleanList(*patch.Resources)
	}
	if patch.Status != nil {
		room.Status = *patch.Status
	}
	if patch.Location != nil {
		room.Location = *patch.Location
	}
	if patch.Description != nil {
		room.Description = patch.Description
	}
	if room.Resources == nil {
		room.Resources = []string{}
	}
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *RoomService) UpdateRoomStatus(ctx context.Context, id string, req entities.RoomStatusRequest) (*db.Room, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"room_id": id, "status": req.Status}).Info("room status changed")
	return s.repo.GetByID(ctx, id)
}

// DeleteRoom removes the room, its bookings and its stored image.
func (s *RoomService) DeleteRoom(ctx context.Context, id string) error {
	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeImage(ctx, room)
	s.log.WithField("room_id", id).Info("room deleted")
	return nil
}

// UploadRoomImage stores a jpeg, png or webp image of at most MaxImageSize
// bytes and points the room at it. The format is sniffed from the content.
func (s *RoomService) UploadRoomImage(ctx context.Context, id string, body io.Reader) (*db.Room, error) {
	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(body, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, apperrors.Invalid("image", "is required")
	}
	if len(data) > MaxImageSize {
		return nil, apperrors.Invalid("image", "must be at most 5 MiB")
	}
	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, apperrors.Invalid("image", "must be a jpeg, png or webp image")
	}

	key := fmt.Sprintf("rooms/%s/%s.%s", id, uuid.NewString(), ext)
	url, err := s.images.Put(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateImage(ctx, id, url); err != nil {
		if delErr := s.images.Delete(ctx, key); delErr != nil {
			s.log.WithError(delErr).WithField("key", key).Warn("removing orphaned room image")
		}
		return nil, err
	}
	s.removeImage(ctx, room)
	return s.repo.GetByID(ctx, id)
}

func (s *RoomService) removeImage(ctx context.Context, room *db.Room) {
	if room.ImageURL == nil {
		return
	}
	key, ok := storage.KeyFromURL(s.images.PublicURL(), *room.ImageURL)
	if !ok {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil && !errors.Is(err, context.Canceled) {
		s.log.WithError(err).WithField("key", key).Warn("removing previous room image")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

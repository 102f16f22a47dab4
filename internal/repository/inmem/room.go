package inmem

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	apperrors "roombooking/internal/errors"
	"roombooking/internal/repository"
)

type roomRepository struct {
	db *DB
}

func NewRoomRepository(d *DB) repository.RoomRepository {
	return &roomRepository{db: d}
}

func (r *roomRepository) List(_ context.Context, filter entities.RoomFilter) ([]db.Room, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	rooms := []db.Room{}
	for _, room := range r.db.rooms {
		if filter.Type != "" && room.Type != filter.Type {
			continue
		}
		if filter.MinCapacity > 0 && room.Capacity < filter.MinCapacity {
			continue
		}
		if filter.Status != "" && room.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(room.Name), search) &&
			!strings.Contains(strings.ToLower(room.Location), search) {
			continue
		}
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms, nil
}

func (r *roomRepository) GetByID(_ context.Context, id string) (*db.Room, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	room, ok := r.db.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", id, apperrors.ErrNotFound)
	}
	return &room, nil
}

func (r *roomRepository) Create(_ context.Context, room *db.Room) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := r.db.now()
	room.CreatedAt, room.UpdatedAt = now, now
	r.db.rooms[room.ID] = *room
	return nil
}

func (r *roomRepository) Update(_ context.Context, room *db.Room) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok := r.db.rooms[room.ID]
	if !ok {
		return fmt.Errorf("room %s: %w", room.ID, apperrors.ErrNotFound)
	}
	room.CreatedAt = current.CreatedAt
	room.ImageURL = current.ImageURL
	room.UpdatedAt = r.db.now()
	r.db.rooms[room.ID] = *room
	return nil
}

func (r *roomRepository) UpdateStatus(_ context.Context, id, status string) error {
	return r.mutate(id, func(room *db.Room) { room.Status = status })
}

func (r *roomRepository) UpdateImage(_ context.Context, id, imageURL string) error {
	return r.mutate(id, func(room *db.Room) { room.ImageURL = &imageURL })
}

func (r *roomRepository) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.rooms[id]; !ok {
		return fmt.Errorf("room %s: %w", id, apperrors.ErrNotFound)
	}
	delete(r.db.rooms, id)
	for bid, b := range r.db.bookings {
		if b.RoomID == id {
			delete(r.db.bookings, bid)
		}
	}
	return nil
}

func (r *roomRepository) mutate(id string, fn func(*db.Room)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	room, ok := r.db.rooms[id]
	if !ok {
		return fmt.Errorf("room %s: %w", id, apperrors.ErrNotFound)
	}
	fn(&room)
	room.UpdatedAt = r.db.now()
	r.db.rooms[id] = room
	return nil
}

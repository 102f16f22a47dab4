package inmem

import (
	"context"
	"fmt"
	"sort"
	"time"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	apperrors "roombooking/internal/errors"
	"roombooking/internal/repository"
)

type bookingRepository struct {
	db *DB
}

func NewBookingRepository(d *DB) repository.BookingRepository {
	return &bookingRepository{db: d}
}

func (r *bookingRepository) Create(_ context.Context, bookings []*db.Booking) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, b := range bookings {
		if _, ok := r.db.rooms[b.RoomID]; !ok {
			return fmt.Errorf("error inserting booking %s: room %s: %w", b.Date, b.RoomID, apperrors.ErrNotFound)
		}
	}
	now := r.db.now()
	for _, b := range bookings {
		b.CreatedAt, b.UpdatedAt = now, now
		stored := *b
		stored.Room, stored.Requester = nil, nil
		r.db.bookings[b.ID] = stored
	}
	return nil
}

func (r *bookingRepository) GetByID(_ context.Context, id string) (*db.Booking, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	b, ok := r.db.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, apperrors.ErrNotFound)
	}
	joined := r.db.joinBooking(b)
	return &joined, nil
}

func (r *bookingRepository) List(_ context.Context, filter entities.BookingFilter) ([]db.Booking, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []db.Booking{}
	for _, b := range r.db.bookings {
		switch {
		case filter.UserID != "" && b.UserID != filter.UserID,
			filter.RoomID != "" && b.RoomID != filter.RoomID,
			filter.Status != "" && b.Status != filter.Status,
			filter.Date != "" && b.Date != filter.Date,
			filter.FromDate != "" && b.Date < filter.FromDate,
			filter.ToDate != "" && b.Date > filter.ToDate:
			continue
		}
		out = append(out, r.db.joinBooking(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *bookingRepository) UpdateStatus(_ context.Context, id string, from []string, to string, justification *string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	b, ok := r.db.bookings[id]
	if !ok || !contains(from, b.Status) {
		return fmt.Errorf("booking %s to %s: %w", id, to, apperrors.ErrInvalidTransition)
	}
	b.Status = to
	if justification != nil {
		j := *justification
		b.Justification = &j
	}
	b.UpdatedAt = r.db.now()
	r.db.bookings[id] = b
	return nil
}

func (r *bookingRepository) SetCheckIn(_ context.Context, id string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	b, ok := r.db.bookings[id]
	if !ok || b.Status != db.BookingApproved || b.CheckInAt != nil {
		return fmt.Errorf("check-in for booking %s: %w", id, apperrors.ErrInvalidTransition)
	}
	b.CheckInAt = &at
	b.UpdatedAt = r.db.now()
	r.db.bookings[id] = b
	return nil
}

func (r *bookingRepository) CountByStatus(_ context.Context, userID string) (map[string]int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	counts := map[string]int{}
	for _, b := range r.db.bookings {
		if b.UserID == userID {
			counts[b.Status]++
		}
	}
	return counts, nil
}

func (r *bookingRepository) Occupancy(_ context.Context, fromDate, toDate string) ([]entities.RoomOccupancy, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	byRoom := map[string]*entities.RoomOccupancy{}
	for _, room := range r.db.rooms {
		byRoom[room.ID] = &entities.RoomOccupancy{RoomID: room.ID, RoomName: room.Name, RoomType: room.Type}
	}
	for _, b := range r.db.bookings {
		if b.Status != db.BookingApproved || b.Date < fromDate || b.Date >= toDate {
			continue
		}
		o, ok := byRoom[b.RoomID]
		if !ok {
			continue
		}
		start, err1 := time.Parse(db.TimeLayout, b.StartTime)
		end, err2 := time.Parse(db.TimeLayout, b.EndTime)
		if err1 == nil && err2 == nil {
			o.BookedHours += end.Sub(start).Hours()
		}
		o.Bookings++
		if b.CheckInAt != nil {
			o.CheckIns++
		}
	}

	report := make([]entities.RoomOccupancy, 0, len(byRoom))
	for _, o := range byRoom {
		report = append(report, *o)
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].Bookings != report[j].Bookings {
			return report[i].Bookings > report[j].Bookings
		}
		return report[i].RoomName < report[j].RoomName
	})
	return report, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

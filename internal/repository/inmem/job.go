package inmem

import (
	"context"
	"fmt"
	"sort"
	"time"

	"roombooking/internal/db"
	"roombooking/internal/repository"
)

type jobRepository struct {
	db *DB
}

func NewJobRepository(d *DB) repository.JobRepository {
	return &jobRepository{db: d}
}

func (r *jobRepository) GetPendingBookingIDsStartedBefore(_ context.Context, localTimestamp string) ([]string, error) {
	cutoff, err := time.Parse("2006-01-02 15:04:05", localTimestamp)
	if err != nil {
		return nil, fmt.Errorf("error parsing cutoff: %w", err)
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var ids []string
	for id, b := range r.db.bookings {
		if b.Status != db.BookingPending {
			continue
		}
		start, err := b.StartAt(time.UTC)
		if err == nil && start.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *jobRepository) UpdateBookingStatuses(_ context.Context, ids []string, from, to, justification string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for _, id := range ids {
		b, ok := r.db.bookings[id]
		if !ok || b.Status != from {
			continue
		}
		b.Status = to
		j := justification
		b.Justification = &j
		b.UpdatedAt = r.db.now()
		r.db.bookings[id] = b
		n++
	}
	return n, nil
}

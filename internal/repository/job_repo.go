package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type JobRepository interface {
	GetPendingBookingIDsStartedBefore(ctx context.Context, localTimestamp string) ([]string, error)
	UpdateBookingStatuses(ctx context.Context, ids []string, from, to, justification string) (int64, error)
}

type jobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) JobRepository {
	return &jobRepository{db: db}
}

// GetPendingBookingIDsStartedBefore busca IDs de reservas pendientes cuyo inicio,
// en la hora local de la institución, es anterior a localTimestamp ("2006-01-02 15:04:05").
func (r *jobRepository) GetPendingBookingIDsStartedBefore(ctx context.Context, localTimestamp string) ([]string, error) {
	query := `SELECT id FROM bookings WHERE status = 'pending' AND (data + hora_inicio) < $1::timestamp`
	rows, err := r.db.QueryContext(ctx, query, localTimestamp)
	if err != nil {
		return nil, fmt.Errorf("error querying stale pending bookings: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning booking ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// UpdateBookingStatuses pasa las reservas listadas que siguen en el estado from al estado to.
// También actualiza el campo updated_at.
func (r *jobRepository) UpdateBookingStatuses(ctx context.Context, ids []string, from, to, justification string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `
		UPDATE bookings
		SET status = $1, justificativa = $2, updated_at = NOW()
		WHERE id = ANY($3) AND status = $4`
	result, err := r.db.ExecContext(ctx, query, to, justification, pq.Array(ids), from)
	if err != nil {
		return 0, fmt.Errorf("error updating booking statuses: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading rows affected: %w", err)
	}
	return n, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	apperrors "roombooking/internal/errors"
)

type BookingRepository interface {
	Create(ctx context.Context, bookings []*db.Booking) error
	GetByID(ctx context.Context, id string) (*db.Booking, error)
	List(ctx context.Context, filter entities.BookingFilter) ([]db.Booking, error)
	UpdateStatus(ctx context.Context, id string, from []string, to string, justification *string) error
	SetCheckIn(ctx context.Context, id string, at time.Time) error
	CountByStatus(ctx context.Context, userID string) (map[string]int, error)
	Occupancy(ctx context.Context, fromDate, toDate string) ([]entities.RoomOccupancy, error)
}

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db}
}

const bookingSelect = `
	SELECT
		b.id, b.room_id, b.user_id,
		to_char(b.data, 'YYYY-MM-DD'), to_char(b.hora_inicio, 'HH24:MI'), to_char(b.hora_fim, 'HH24:MI'),
		b.participantes, b.motivo, b.recursos_extras, b.status, b.justificativa, b.check_in_at,
		b.series_id, b.created_at, b.updated_at,
		r.nome, r.tipo, r.localizacao,
		p.full_name, p.email, p.phone
	FROM bookings b
	JOIN rooms r ON r.id = b.room_id
	JOIN profiles p ON p.id = b.user_id`

func scanBooking(row rowScanner) (db.Booking, error) {
	var b db.Booking
	var extras pq.StringArray
	room := &db.BookingRoom{}
	requester := &db.BookingProfile{}
	err := row.Scan(
		&b.ID, &b.RoomID, &b.UserID,
		&b.Date, &b.StartTime, &b.EndTime,
		&b.Participants, &b.Reason, &extras, &b.Status, &b.Justification, &b.CheckInAt,
		&b.SeriesID, &b.CreatedAt, &b.UpdatedAt,
		&room.Name, &room.Type, &room.Location,
		&requester.FullName, &requester.Email, &requester.Phone,
	)
	b.ExtraResources = []string(extras)
	if b.ExtraResources == nil {
		b.ExtraResources = []string{}
	}
	b.Room = room
	b.Requester = requester
	return b, err
}

func (r *bookingRepository) Create(ctx context.Context, bookings []*db.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting booking transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO bookings
		(id, room_id, user_id, data, hora_inicio, hora_fim, participantes, motivo, recursos_extras, status, series_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`
	for _, b := range bookings {
		err := tx.QueryRowContext(ctx, query,
			b.ID,
			b.RoomID,
			b.UserID,
			b.Date,
			b.StartTime,
			b.EndTime,
			b.Participants,
			b.Reason,
			pq.Array(b.ExtraResources),
			b.Status,
			b.SeriesID,
		).Scan(&b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error inserting booking %s: %w", b.Date, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing bookings: %w", err)
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*db.Booking, error) {
	row := r.db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("error querying booking: %w", err)
	}
	return &b, nil
}

func (r *bookingRepository) List(ctx context.Context, filter entities.BookingFilter) ([]db.Booking, error) {
	query := bookingSelect + ` WHERE 1=1`
	args := []any{}
	idx := 1

	add := func(clause string, value any) {
		query += " AND " + clause + " $" + strconv.Itoa(idx)
		args = append(args, value)
		idx++
	}
	if filter.UserID != "" {
		add("b.user_id =", filter.UserID)
	}
	if filter.RoomID != "" {
		add("b.room_id =", filter.RoomID)
	}
	if filter.Status != "" {
		add("b.status =", filter.Status)
	}
	if filter.Date != "" {
		add("b.data =", filter.Date)
	}
	if filter.FromDate != "" {
		add("b.data >=", filter.FromDate)
	}
	if filter.ToDate != "" {
		add("b.data <=", filter.ToDate)
	}
	query += " ORDER BY b.data ASC, b.hora_inicio ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings: %w", err)
	}
	defer rows.Close()

	bookings := []db.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating bookings: %w", err)
	}
	return bookings, nil
}

// UpdateStatus cambia el estado de la reserva a to, solo si hoy está en alguno
// de los estados from. Si otra petición la movió antes, devuelve ErrInvalidTransition.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, from []string, to string, justification *string) error {
	query := `
		UPDATE bookings
		SET status = $2, justificativa = COALESCE($3, justificativa), updated_at = NOW()
		WHERE id = $1 AND status = ANY($4)`
	result, err := r.db.ExecContext(ctx, query, id, to, justification, pq.Array(from))
	if err != nil {
		return fmt.Errorf("error updating booking status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("booking %s to %s: %w", id, to, apperrors.ErrInvalidTransition)
	}
	return nil
}

func (r *bookingRepository) SetCheckIn(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE bookings
		SET check_in_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'approved' AND check_in_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("error recording check-in: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("check-in for booking %s: %w", id, apperrors.ErrInvalidTransition)
	}
	return nil
}

func (r *bookingRepository) CountByStatus(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM bookings WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return nil, fmt.Errorf("error counting bookings: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("error scanning booking count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// Occupancy agrega las reservas aprobadas por sala para fechas en [fromDate, toDate).
func (r *bookingRepository) Occupancy(ctx context.Context, fromDate, toDate string) ([]entities.RoomOccupancy, error) {
	query := `
		SELECT
			r.id, r.nome, r.tipo,
			COUNT(b.id) AS bookings,
			COALESCE(SUM(EXTRACT(EPOCH FROM (b.hora_fim - b.hora_inicio))) / 3600.0, 0) AS booked_hours,
			COUNT(b.check_in_at) AS check_ins
		FROM rooms r
		LEFT JOIN bookings b
			ON b.room_id = r.id
			AND b.status = 'approved'
			AND b.data >= $1
			AND b.data < $2
		GROUP BY r.id, r.nome, r.tipo
		ORDER BY bookings DESC, r.nome`

	rows, err := r.db.QueryContext(ctx, query, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("error querying occupancy: %w", err)
	}
	defer rows.Close()

	report := []entities.RoomOccupancy{}
	for rows.Next() {
		var o entities.RoomOccupancy
		if err := rows.Scan(&o.RoomID, &o.RoomName, &o.RoomType, &o.Bookings, &o.BookedHours, &o.CheckIns); err != nil {
			return nil, fmt.Errorf("error scanning occupancy: %w", err)
		}
		report = append(report, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating occupancy rows: %w", err)
	}
	return report, nil
}

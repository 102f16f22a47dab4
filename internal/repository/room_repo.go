package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	apperrors "roombooking/internal/errors"
)

type RoomRepository interface {
	List(ctx context.Context, filter entities.RoomFilter) ([]db.Room, error)
	GetByID(ctx context.Context, id string) (*db.Room, error)
	Create(ctx context.Context, room *db.Room) error
	Update(ctx context.Context, room *db.Room) error
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateImage(ctx context.Context, id, imageURL string) error
	Delete(ctx context.Context, id string) error
}

type roomRepository struct {
	db *sql.DB
}

func NewRoomRepository(db *sql.DB) RoomRepository {
	return &roomRepository{db: db}
}

const roomColumns = `id, nome, tipo, capacidade, recursos, status, localizacao, descricao, imagem, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (db.Room, error) {
	var room db.Room
	var resources pq.StringArray
	err := row.Scan(
		&room.ID, &room.Name, &room.Type, &room.Capacity, &resources, &room.Status,
		&room.Location, &room.Description, &room.ImageURL, &room.CreatedAt, &room.UpdatedAt,
	)
	room.Resources = []string(resources)
	if room.Resources == nil {
		room.Resources = []string{}
	}
	return room, err
}

func (r *roomRepository) List(ctx context.Context, filter entities.RoomFilter) ([]db.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE 1=1`
	args := []any{}
	idx := 1

	if filter.Type != "" {
		query += " AND tipo = $" + strconv.Itoa(idx)
		args = append(args, filter.Type)
		idx++
	}
	if filter.MinCapacity > 0 {
		query += " AND capacidade >= $" + strconv.Itoa(idx)
		args = append(args, filter.MinCapacity)
		idx++
	}
	if filter.Status != "" {
		query += " AND status = $" + strconv.Itoa(idx)
		args = append(args, filter.Status)
		idx++
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		query += " AND (nome ILIKE $" + strconv.Itoa(idx) + " OR localizacao ILIKE $" + strconv.Itoa(idx) + ")"
		args = append(args, "%"+escapeLike(s)+"%")
		idx++
	}
	query += " ORDER BY nome"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying rooms: %w", err)
	}
	defer rows.Close()

	rooms := []db.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rooms: %w", err)
	}
	return rooms, nil
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*db.Room, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("room %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("error querying room: %w", err)
	}
	return &room, nil
}

func (r *roomRepository) Create(ctx context.Context, room *db.Room) error {
	query := `
		INSERT INTO rooms (id, nome, tipo, capacidade, recursos, status, localizacao, descricao, imagem)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		room.ID,
		room.Name,
		room.Type,
		room.Capacity,
		pq.Array(room.Resources),
		room.Status,
		room.Location,
		room.Description,
		room.ImageURL,
	).Scan(&room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting room: %w", err)
	}
	return nil
}

func (r *roomRepository) Update(ctx context.Context, room *db.Room) error {
	query := `
		UPDATE rooms
		SET nome = $2, tipo = $3, capacidade = $4, recursos = $5, status = $6,
			localizacao = $7, descricao = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		room.ID,
		room.Name,
		room.Type,
		room.Capacity,
		pq.Array(room.Resources),
		room.Status,
		room.Location,
		room.Description,
	).Scan(&room.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("room %s: %w", room.ID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("error updating room: %w", err)
	}
	return nil
}

func (r *roomRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.execOne(ctx, id, `UPDATE rooms SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
}

func (r *roomRepository) UpdateImage(ctx context.Context, id, imageURL string) error {
	return r.execOne(ctx, id, `UPDATE rooms SET imagem = $2, updated_at = NOW() WHERE id = $1`, id, imageURL)
}

func (r *roomRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, id, `DELETE FROM rooms WHERE id = $1`, id)
}

func (r *roomRepository) execOne(ctx context.Context, id, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error writing room %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("room %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

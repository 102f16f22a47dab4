package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	apperrors "roombooking/internal/errors"
)

var roomCols = []string{"id", "nome", "tipo", "capacidade", "recursos", "status", "localizacao", "descricao", "imagem", "created_at", "updated_at"}

func TestRoomListBuildsFilters(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM rooms WHERE 1=1 AND tipo = \$1 AND capacidade >= \$2 AND status = \$3 AND \(nome ILIKE \$4 OR localizacao ILIKE \$4\) ORDER BY nome`).
		WithArgs("laboratorio", 20, "available", `%lab\_2%`).
		WillReturnRows(sqlmock.NewRows(roomCols).
			AddRow("r1", "Lab 201", "laboratorio", 30, `{Computadores,Projetor}`, "available", "Bloco B", nil, nil, now, now))

	repo := NewRoomRepository(conn)
	rooms, err := repo.List(context.Background(), entities.RoomFilter{
		Type: "laboratorio", MinCapacity: 20, Status: "available", Search: " lab_2 ",
	})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Lab 201", rooms[0].Name)
	assert.Equal(t, []string{"Computadores", "Projetor"}, rooms[0].Resources)
	assert.Nil(t, rooms[0].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomListWithoutFilters(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(`SELECT .* FROM rooms WHERE 1=1 ORDER BY nome`).
		WillReturnRows(sqlmock.NewRows(roomCols))

	rooms, err := NewRoomRepository(conn).List(context.Background(), entities.RoomFilter{})
	require.NoError(t, err)
	assert.Empty(t, rooms)
	assert.NotNil(t, rooms)
}

func TestRoomGetByIDNotFound(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(`SELECT .* FROM rooms WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(roomCols))

	_, err = NewRoomRepository(conn).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRoomCreate(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO rooms`).
		WithArgs("r1", "Sala 102", "sala", 40, sqlmock.AnyArg(), "available", "Bloco A", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	room := &db.Room{ID: "r1", Name: "Sala 102", Type: "sala", Capacity: 40, Resources: []string{"Projetor"}, Status: "available", Location: "Bloco A"}
	require.NoError(t, NewRoomRepository(conn).Create(context.Background(), room))
	assert.Equal(t, now, room.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomDeleteMissing(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(`DELETE FROM rooms WHERE id = \$1`).
		WithArgs("r9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewRoomRepository(conn).Delete(context.Background(), "r9")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRoomUpdateStatus(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(`UPDATE rooms SET status = \$2`).
		WithArgs("r1", "maintenance").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewRoomRepository(conn).UpdateStatus(context.Background(), "r1", "maintenance"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

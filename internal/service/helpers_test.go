package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	"roombooking/internal/repository"
	"roombooking/internal/repository/inmem"
)

var brt = time.FixedZone("BRT", -3*60*60)

// 2026-03-10 09:00 in BRT
var fixedNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, brt)

const (
	labID        = "6f0d3c2a-4a4e-4a43-9a57-1c1e1f3b1a01"
	auditoriumID = "6f0d3c2a-4a4e-4a43-9a57-1c1e1f3b1a02"
	closedID     = "6f0d3c2a-4a4e-4a43-9a57-1c1e1f3b1a03"
)

var (
	student  = entities.Actor{UserID: "student-1", Email: "ana@escola.br", Role: db.RoleStudent}
	student2 = entities.Actor{UserID: "student-2", Email: "bruno@escola.br", Role: db.RoleStudent}
	manager  = entities.Actor{UserID: "manager-1", Email: "carla@escola.br", Role: db.RoleManager}
	admin    = entities.Actor{UserID: "admin-1", Email: "dora@escola.br", Role: db.RoleAdmin}
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeNotifier struct {
	mu        sync.Mutex
	requests  [][]db.Booking
	managers  []db.Profile
	decisions []db.Booking
	reminders []db.Booking
}

func (f *fakeNotifier) NotifyNewRequest(managers []db.Profile, bookings []db.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.managers = managers
	f.requests = append(f.requests, bookings)
}

func (f *fakeNotifier) NotifyDecision(b db.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, b)
}

func (f *fakeNotifier) SendReminder(b db.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders = append(f.reminders, b)
}

type fixture struct {
	rooms    repository.RoomRepository
	bookings repository.BookingRepository
	users    repository.UserRepository
	jobs     repository.JobRepository
	notifier *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := inmem.Open()
	f := &fixture{
		rooms:    inmem.NewRoomRepository(store),
		bookings: inmem.NewBookingRepository(store),
		users:    inmem.NewUserRepository(store),
		jobs:     inmem.NewJobRepository(store),
		notifier: &fakeNotifier{},
	}
	ctx := context.Background()
	phone := "+5511999990000"
	for _, p := range []db.Profile{
		{ID: student.UserID, FullName: "Ana Souza", Email: student.Email, Phone: &phone, Role: db.RoleStudent},
		{ID: student2.UserID, FullName: "Bruno Lima", Email: student2.Email, Role: db.RoleStudent},
		{ID: manager.UserID, FullName: "Carla Dias", Email: manager.Email, Role: db.RoleManager},
		{ID: admin.UserID, FullName: "Dora Reis", Email: admin.Email, Role: db.RoleAdmin},
	} {
		p := p
		require.NoError(t, f.users.Create(ctx, &p))
	}
	for _, r := range []db.Room{
		{ID: labID, Name: "Laboratório 3", Type: db.RoomTypeLab, Capacity: 30, Resources: []string{"Projetor"}, Status: db.RoomAvailable, Location: "Bloco B"},
		{ID: auditoriumID, Name: "Auditório Central", Type: db.RoomTypeAuditorium, Capacity: 200, Resources: []string{}, Status: db.RoomAvailable, Location: "Bloco A"},
		{ID: closedID, Name: "Sala 101", Type: db.RoomTypeClassroom, Capacity: 40, Resources: []string{}, Status: db.RoomMaintenance, Location: "Bloco C"},
	} {
		r := r
		require.NoError(t, f.rooms.Create(ctx, &r))
	}
	return f
}

func (f *fixture) bookingService() *BookingService {
	svc := NewBookingService(f.bookings, f.rooms, f.users, f.notifier, BookingPolicy{
		Location:      brt,
		CheckInBefore: 15 * time.Minute,
		CheckInAfter:  15 * time.Minute,
	}, quietLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// seedBooking stores a booking directly, bypassing wizard validation.
func (f *fixture) seedBooking(t *testing.T, id, userID, date, start, end, status string) {
	t.Helper()
	require.NoError(t, f.bookings.Create(context.Background(), []*db.Booking{{
		ID: id, RoomID: labID, UserID: userID, Date: date, StartTime: start, EndTime: end,
		Participants: 10, Reason: "Aula", ExtraResources: []string{}, Status: status,
	}}))
}

func validBookingRequest() entities.BookingRequest {
	return entities.BookingRequest{
		RoomID:         labID,
		Date:           "2026-03-12",
		StartTime:      "10:00",
		EndTime:        "12:00",
		Participants:   25,
		Reason:         "Aula prática de redes",
		ExtraResources: []string{"Notebook", " Notebook "},
	}
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	apperrors "roombooking/internal/errors"
	"roombooking/internal/metrics"
	"roombooking/internal/repository"
	"roombooking/internal/utils"
)

// BookingNotifier is implemented by SenderService.
type BookingNotifier interface {
	NotifyNewRequest(managers []db.Profile, bookings []db.Booking)
	NotifyDecision(b db.Booking)
	SendReminder(b db.Booking)
}

// BookingPolicy holds the institution-wide booking settings.
type BookingPolicy struct {
	Location      *time.Location
	CheckInBefore time.Duration
	CheckInAfter  time.Duration
}

type BookingService struct {
	bookings repository.BookingRepository
	rooms    repository.RoomRepository
	users    repository.UserRepository
	notifier BookingNotifier
	policy   BookingPolicy
	log      *logrus.Logger
	now      func() time.Time
}

func NewBookingService(
	bookings repository.BookingRepository,
	rooms repository.RoomRepository,
	users repository.UserRepository,
	notifier BookingNotifier,
	policy BookingPolicy,
	log *logrus.Logger,
) *BookingService {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &BookingService{
		bookings: bookings,
		rooms:    rooms,
		users:    users,
		notifier: notifier,
		policy:   policy,
		log:      log,
		now:      time.Now,
	}
}

func (s *BookingService) today() string {
	return s.now().In(s.policy.Location).Format(db.DateLayout)
}

// CreateBooking validates a wizard submission and stores it as pending. A
// recurring request stores one booking per occurrence under a shared series id.
func (s *BookingService) CreateBooking(ctx context.Context, actor entities.Actor, req entities.BookingRequest) (*entities.CreateBookingResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if room.Status != db.RoomAvailable {
		return nil, fmt.Errorf("room %s is %s: %w", room.Name, room.Status, apperrors.ErrRoomUnavailable)
	}

	first, err := time.ParseInLocation(db.DateLayout, req.Date, s.policy.Location)
	if err != nil {
		return nil, apperrors.Invalid("date", "must match 2006-01-02")
	}
	if req.Date < s.today() {
		return nil, apperrors.Invalid("date", "must not be in the past")
	}
	startClock, err := time.Parse(db.TimeLayout, req.StartTime)
	if err != nil {
		return nil, apperrors.Invalid("start_time", "must match 15:04")
	}
	endClock, err := time.Parse(db.TimeLayout, req.EndTime)
	if err != nil {
		return nil, apperrors.Invalid("end_time", "must match 15:04")
	}
	if !endClock.After(startClock) {
		return nil, apperrors.Invalid("end_time", "must be after start_time")
	}
	if req.Participants > room.Capacity {
		return nil, apperrors.Invalid("participants", fmt.Sprintf("exceeds room capacity of %d", room.Capacity))
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, apperrors.Invalid("reason", "is required")
	}
	extras := utils.CleanList(req.ExtraResources)
	for _, e := range extras {
		if !utils.IsExtraResource(e) {
			return nil, apperrors.Invalid("extra_resources", fmt.Sprintf("unknown resource %q", e))
		}
	}

	dates := []time.Time{first}
	var seriesID *string
	if req.Recurrence != nil {
		dates, err = expandDates(first, req.Recurrence.Frequency, req.Recurrence.Occurrences)
		if err != nil {
			return nil, apperrors.Invalid("recurrence.frequency", err.Error())
		}
		if len(dates) > 1 {
			id := uuid.NewString()
			seriesID = &id
		}
	}

	requester, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	batch := make([]*db.Booking, 0, len(dates))
	for _, d := range dates {
		batch = append(batch, &db.Booking{
			ID:             uuid.NewString(),
			RoomID:         room.ID,
			UserID:         actor.UserID,
			Date:           d.Format(db.DateLayout),
			StartTime:      startClock.Format(db.TimeLayout),
			EndTime:        endClock.Format(db.TimeLayout),
			Participants:   req.Participants,
			Reason:         reason,
			ExtraResources: extras,
			Status:         db.BookingPending,
			SeriesID:       seriesID,
		})
	}
	if err := s.bookings.Create(ctx, batch); err != nil {
		return nil, err
	}
	metrics.RecordBookingTransition(db.BookingPending, len(batch))

	created := make([]db.Booking, 0, len(batch))
	for _, b := range batch {
		b.Room = &db.BookingRoom{Name: room.Name, Type: room.Type, Location: room.Location}
		b.Requester = &db.BookingProfile{FullName: requester.FullName, Email: requester.Email, Phone: requester.Phone}
		created = append(created, *b)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":     actor.UserID,
		"room_id":     room.ID,
		"occurrences": len(created),
	}).Info("booking requested")

	managers, err := s.users.ListByRole(ctx, db.RoleManager, db.RoleAdmin)
	if err != nil {
		s.log.WithError(err).Warn("loading managers for new request notification")
	} else {
		s.notifier.NotifyNewRequest(managers, created)
	}

	msg := "Solicitação de reserva enviada. Aguarde a aprovação."
	if len(created) > 1 {
		msg = fmt.Sprintf("%d solicitações de reserva enviadas. Aguarde a aprovação.", len(created))
	}
	return &entities.CreateBookingResponse{SeriesID: seriesID, Bookings: created, Message: msg}, nil
}

func (s *BookingService) ListMyBookings(ctx context.Context, actor entities.Actor, status string) (*entities.BookingsList, error) {
	if status != "" && !contains(db.BookingStatuses, status) {
		return nil, apperrors.Invalid("status", "unknown booking status")
	}
	list, err := s.bookings.List(ctx, entities.BookingFilter{UserID: actor.UserID, Status: status})
	if err != nil {
		return nil, err
	}
	return &entities.BookingsList{Total: len(list), Bookings: list}, nil
}

func (s *BookingService) MyStats(ctx context.Context, actor entities.Actor) (*entities.BookingStats, error) {
	counts, err := s.bookings.CountByStatus(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	stats := &entities.BookingStats{
		Pending:   counts[db.BookingPending],
		Approved:  counts[db.BookingApproved],
		Rejected:  counts[db.BookingRejected],
		Cancelled: counts[db.BookingCancelled],
	}
	upcoming, err := s.bookings.List(ctx, entities.BookingFilter{UserID: actor.UserID, Status: db.BookingApproved, FromDate: s.today()})
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range upcoming {
		if start, err := upcoming[i].StartAt(s.policy.Location); err == nil && !start.Before(now) {
			stats.UpcomingApproved++
		}
	}
	return stats, nil
}

// GetBooking returns a booking visible to actor: their own, or any for
// managers and admins.
func (s *BookingService) GetBooking(ctx context.Context, actor entities.Actor, id string) (*db.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.UserID && !actor.HasRole(db.RoleManager, db.RoleAdmin) {
		return nil, fmt.Errorf("booking %s: %w", id, apperrors.ErrForbidden)
	}
	return b, nil
}

// CancelBooking is allowed to the owner or an admin while the booking is
// pending or approved and has not started.
func (s *BookingService) CancelBooking(ctx context.Context, actor entities.Actor, id string) (*db.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.UserID && !actor.HasRole(db.RoleAdmin) {
		return nil, fmt.Errorf("cancel booking %s: %w", id, apperrors.ErrForbidden)
	}
	if !canTransition(b.Status, db.BookingCancelled) {
		return nil, fmt.Errorf("cancel %s booking: %w", b.Status, apperrors.ErrInvalidTransition)
	}
	start, err := b.StartAt(s.policy.Location)
	if err != nil {
		return nil, err
	}
	if !s.now().Before(start) {
		return nil, fmt.Errorf("cancel booking that already started: %w", apperrors.ErrInvalidTransition)
	}
	if err := s.bookings.UpdateStatus(ctx, id, []string{db.BookingPending, db.BookingApproved}, db.BookingCancelled, nil); err != nil {
		return nil, err
	}
	metrics.RecordBookingTransition(db.BookingCancelled, 1)
	s.log.WithFields(logrus.Fields{"booking_id": id, "by": actor.UserID}).Info("booking cancelled")

	updated, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated.UserID != actor.UserID {
		s.notifier.NotifyDecision(*updated)
	}
	return updated, nil
}

// CheckIn records the owner's arrival inside the window around the start.
func (s *BookingService) CheckIn(ctx context.Context, actor entities.Actor, id string) (*db.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.UserID {
		return nil, fmt.Errorf("check in booking %s: %w", id, apperrors.ErrForbidden)
	}
	if b.Status != db.BookingApproved {
		return nil, fmt.Errorf("check in %s booking: %w", b.Status, apperrors.ErrInvalidTransition)
	}
	if b.CheckInAt != nil {
		return nil, fmt.Errorf("booking already checked in: %w", apperrors.ErrInvalidTransition)
	}
	start, err := b.StartAt(s.policy.Location)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !checkInAllowed(start, now, s.policy.CheckInBefore, s.policy.CheckInAfter) {
		return nil, fmt.Errorf("check-in opens %s and closes %s: %w",
			start.Add(-s.policy.CheckInBefore).Format(db.TimeLayout),
			start.Add(s.policy.CheckInAfter).Format(db.TimeLayout),
			apperrors.ErrCheckInWindow)
	}
	if err := s.bookings.SetCheckIn(ctx, id, now.UTC()); err != nil {
		return nil, err
	}
	s.log.WithField("booking_id", id).Info("booking checked in")
	return s.bookings.GetByID(ctx, id)
}

func checkInAllowed(start, now time.Time, before, after time.Duration) bool {
	return !now.Before(start.Add(-before)) && !now.After(start.Add(after))
}

// canTransition lists the status changes a person may make. Expiry of stale
// requests is a job concern and bypasses it.
func canTransition(from, to string) bool {
	switch to {
	case db.BookingApproved, db.BookingRejected:
		return from == db.BookingPending
	case db.BookingCancelled:
		return from == db.BookingPending || from == db.BookingApproved
	}
	return false
}

func (s *BookingService) ListPending(ctx context.Context) (*entities.BookingsList, error) {
	return s.listAll(ctx, entities.BookingFilter{Status: db.BookingPending})
}

// ListApproved lists approved bookings from today on.
func (s *BookingService) ListApproved(ctx context.Context) (*entities.BookingsList, error) {
	return s.listAll(ctx, entities.BookingFilter{Status: db.BookingApproved, FromDate: s.today()})
}

// ListBookings is the admin view over every booking.
func (s *BookingService) ListBookings(ctx context.Context, filter entities.BookingFilter) (*entities.BookingsList, error) {
	if filter.Status != "" && !contains(db.BookingStatuses, filter.Status) {
		return nil, apperrors.Invalid("status", "unknown booking status")
	}
	for field, v := range map[string]string{"date": filter.Date, "from": filter.FromDate, "to": filter.ToDate} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(db.DateLayout, v); err != nil {
			return nil, apperrors.Invalid(field, "must match 2006-01-02")
		}
	}
	return s.listAll(ctx, filter)
}

func (s *BookingService) listAll(ctx context.Context, filter entities.BookingFilter) (*entities.BookingsList, error) {
	list, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &entities.BookingsList{Total: len(list), Bookings: list}, nil
}

func (s *BookingService) Approve(ctx context.Context, actor entities.Actor, id string, req entities.DecisionRequest) (*db.Booking, error) {
	return s.decide(ctx, actor, id, db.BookingApproved, req)
}

func (s *BookingService) Reject(ctx context.Context, actor entities.Actor, id string, req entities.DecisionRequest) (*db.Booking, error) {
	return s.decide(ctx, actor, id, db.BookingRejected, req)
}

func (s *BookingService) decide(ctx context.Context, actor entities.Actor, id, to string, req entities.DecisionRequest) (*db.Booking, error) {
	if !actor.HasRole(db.RoleManager, db.RoleAdmin) {
		return nil, fmt.Errorf("decide booking %s: %w", id, apperrors.ErrForbidden)
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	var justification *string
	if j := strings.TrimSpace(req.Justification); j != "" {
		justification = &j
	}
	if err := s.bookings.UpdateStatus(ctx, id, []string{db.BookingPending}, to, justification); err != nil {
		return nil, err
	}
	metrics.RecordBookingTransition(to, 1)
	s.log.WithFields(logrus.Fields{"booking_id": id, "status": to, "by": actor.UserID}).Info("booking reviewed")

	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyDecision(*b)
	return b, nil
}

// Occupancy summarises approved bookings per room for month ("2006-01");
// an empty month means the current one.
func (s *BookingService) Occupancy(ctx context.Context, month string) ([]entities.RoomOccupancy, error) {
	var start time.Time
	if month == "" {
		now := s.now().In(s.policy.Location)
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.policy.Location)
	} else {
		t, err := time.ParseInLocation("2006-01", month, s.policy.Location)
		if err != nil {
			return nil, apperrors.Invalid("month", "must match 2006-01")
		}
		start = t
	}
	end := start.AddDate(0, 1, 0)
	return s.bookings.Occupancy(ctx, start.Format(db.DateLayout), end.Format(db.DateLayout))
}

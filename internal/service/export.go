package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	"roombooking/internal/utils"
)

const calendarProductID = "-//Agendamento de Salas//roombooking//PT"

// ExportICS renders a single booking the actor may see as an iCalendar file.
func (s *BookingService) ExportICS(ctx context.Context, actor entities.Actor, id string) (string, error) {
	b, err := s.GetBooking(ctx, actor, id)
	if err != nil {
		return "", err
	}
	return BookingCalendar([]db.Booking{*b}, s.policy.Location, s.now())
}

// ExportMyICS renders every approved booking of the actor as one calendar.
func (s *BookingService) ExportMyICS(ctx context.Context, actor entities.Actor) (string, error) {
	list, err := s.bookings.List(ctx, entities.BookingFilter{UserID: actor.UserID, Status: db.BookingApproved})
	if err != nil {
		return "", err
	}
	return BookingCalendar(list, s.policy.Location, s.now())
}

// ReportCSV writes the actor's bookings as CSV.
func (s *BookingService) ReportCSV(ctx context.Context, actor entities.Actor, w io.Writer) error {
	list, err := s.bookings.List(ctx, entities.BookingFilter{UserID: actor.UserID})
	if err != nil {
		return err
	}
	return WriteBookingsCSV(w, list)
}

func BookingCalendar(bookings []db.Booking, loc *time.Location, stamp time.Time) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	for i := range bookings {
		b := &bookings[i]
		start, err := b.StartAt(loc)
		if err != nil {
			return "", err
		}
		end, err := b.EndAt(loc)
		if err != nil {
			return "", err
		}
		event := cal.AddEvent(b.ID + "@roombooking")
		event.SetDtStampTime(stamp)
		event.SetCreatedTime(b.CreatedAt)
		event.SetModifiedAt(b.UpdatedAt)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(fmt.Sprintf("Reserva: %s", roomName(*b)))
		if b.Room != nil {
			event.SetLocation(b.Room.Location)
		}
		event.SetDescription(b.Reason)
		event.SetProperty(ics.ComponentPropertyStatus, icsStatus(b.Status))
	}
	return cal.Serialize(), nil
}

func icsStatus(status string) string {
	switch status {
	case db.BookingApproved:
		return "CONFIRMED"
	case db.BookingPending:
		return "TENTATIVE"
	}
	return "CANCELLED"
}

var bookingsCSVHeader = []string{
	"data", "inicio", "fim", "sala", "tipo", "participantes", "status", "motivo", "justificativa", "check_in",
}

func WriteBookingsCSV(w io.Writer, bookings []db.Booking) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(bookingsCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, b := range bookings {
		roomType := ""
		if b.Room != nil {
			roomType = utils.RoomTypeLabel(b.Room.Type)
		}
		justification := ""
		if b.Justification != nil {
			justification = *b.Justification
		}
		checkIn := ""
		if b.CheckInAt != nil {
			checkIn = b.CheckInAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			b.Date, b.StartTime, b.EndTime, roomName(b), roomType,
			strconv.Itoa(b.Participants), utils.StatusLabel(b.Status), b.Reason, justification, checkIn,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", b.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteOccupancyCSV(w io.Writer, rows []entities.RoomOccupancy) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"sala", "tipo", "reservas", "horas_reservadas", "check_ins"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.RoomName,
			utils.RoomTypeLabel(r.RoomType),
			strconv.Itoa(r.Bookings),
			strings.TrimRight(strings.TrimRight(strconv.FormatFloat(r.BookedHours, 'f', 2, 64), "0"), "."),
			strconv.Itoa(r.CheckIns),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.RoomID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

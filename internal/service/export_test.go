package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	apperrors "roombooking/internal/errors"
)

func TestBookingCalendar(t *testing.T) {
	b := decidedBooking(nil)
	b.Status = db.BookingApproved

	out, err := BookingCalendar([]db.Booking{b}, brt, fixedNow)
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "UID:b1@roombooking")
	// 10:00 BRT is 13:00 UTC
	assert.Contains(t, out, "DTSTART:20260312T130000Z")
	assert.Contains(t, out, "DTEND:20260312T150000Z")
	assert.Contains(t, out, "STATUS:CONFIRMED")
	assert.Contains(t, out, "LOCATION:Bloco B")
}

func TestExportICSRespectsVisibility(t *testing.T) {
	f := newFixture(t)
	svc := f.bookingService()
	f.seedBooking(t, "b1", student.UserID, "2026-03-11", "10:00", "11:00", db.BookingApproved)
	f.seedBooking(t, "b2", student.UserID, "2026-03-12", "10:00", "11:00", db.BookingPending)

	_, err := svc.ExportICS(context.Background(), student2, "b1")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	out, err := svc.ExportMyICS(context.Background(), student)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))
}

func TestReportCSV(t *testing.T) {
	f := newFixture(t)
	svc := f.bookingService()
	f.seedBooking(t, "b1", student.UserID, "2026-03-11", "10:00", "11:00", db.BookingApproved)
	f.seedBooking(t, "b2", student.UserID, "2026-03-12", "10:00", "11:00", db.BookingPending)

	var buf bytes.Buffer
	require.NoError(t, svc.ReportCSV(context.Background(), student, &buf))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, bookingsCSVHeader, records[0])
	assert.Equal(t, []string{"2026-03-11", "10:00", "11:00", "Laboratório 3", "Laboratório", "10", "aprovada", "Aula", "", ""}, records[1])
}

func TestWriteOccupancyCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOccupancyCSV(&buf, []entities.RoomOccupancy{
		{RoomID: "r1", RoomName: "Lab, 3", RoomType: db.RoomTypeLab, Bookings: 4, BookedHours: 6.5, CheckIns: 3},
		{RoomID: "r2", RoomName: "Auditório", RoomType: db.RoomTypeAuditorium, BookedHours: 10},
	}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"Lab, 3",Laboratório,4,6.5,3`, lines[1])
	assert.Equal(t, "Auditório,Auditório,0,10,0", lines[2])
}

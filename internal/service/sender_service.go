package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	"roombooking/internal/templates"
	"roombooking/internal/utils"
)

const sendTimeout = 30 * time.Second

// SenderService renders booking notifications and delivers them in the
// background. Delivery failures are logged and never fail the request that
// triggered them.
type SenderService struct {
	mailer Mailer
	sms    SMSSender
	tmpl   *template.Template
	loc    *time.Location
	log    *logrus.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

func NewSenderService(mailer Mailer, sms SMSSender, loc *time.Location, log *logrus.Logger) (*SenderService, error) {
	tmpl, err := templates.Booking()
	if err != nil {
		return nil, fmt.Errorf("parse booking email template: %w", err)
	}
	return &SenderService{mailer: mailer, sms: sms, tmpl: tmpl, loc: loc, log: log, now: time.Now}, nil
}

// Wait blocks until every queued delivery has finished.
func (s *SenderService) Wait() {
	s.wg.Wait()
}

// NotifyNewRequest tells each manager that bookings are waiting for review.
func (s *SenderService) NotifyNewRequest(managers []db.Profile, bookings []db.Booking) {
	if len(bookings) == 0 {
		return
	}
	first := bookings[0]
	subject := fmt.Sprintf("Nova solicitação de reserva: %s em %s", roomName(first), s.formatDate(first.Date))
	plain := fmt.Sprintf(
		"Há uma nova solicitação de reserva aguardando aprovação.\n\n"+
			"Solicitante: %s\nSala: %s\nData: %s\nHorário: %s - %s\nParticipantes: %d\nMotivo: %s\n",
		requesterName(first), roomName(first), s.formatDate(first.Date), first.StartTime, first.EndTime,
		first.Participants, first.Reason,
	)
	if len(bookings) > 1 {
		plain += fmt.Sprintf("\nReserva recorrente com %d ocorrências.\n", len(bookings))
	}
	for _, m := range managers {
		s.goEmail(m.Email, m.FullName, subject, plain, "")
	}
}

// NotifyDecision emails the requester the new status of a booking, and sends
// an SMS when the profile has a phone number.
func (s *SenderService) NotifyDecision(b db.Booking) {
	if b.Requester == nil {
		s.log.WithField("booking_id", b.ID).Warn("booking has no requester loaded, skipping notification")
		return
	}
	data := s.emailData(b)
	subject := fmt.Sprintf("Sua reserva de %s foi %s", data.RoomName, data.StatusLabel)
	plain := fmt.Sprintf(
		"Olá %s,\n\nSua reserva está %s.\n\nSala: %s (%s)\nData: %s\nHorário: %s - %s\n",
		data.UserName, data.StatusLabel, data.RoomName, data.RoomLocation, data.DateFormatted, data.StartTime, data.EndTime,
	)
	if data.Justification != "" {
		plain += "Justificativa: " + data.Justification + "\n"
	}
	s.goEmail(b.Requester.Email, data.UserName, subject, plain, s.render(b.ID, data))

	if b.Requester.Phone != nil && *b.Requester.Phone != "" {
		msg := fmt.Sprintf("Reserva %s em %s %s: %s.", data.RoomName, data.DateFormatted, data.StartTime, data.StatusLabel)
		s.goSMS(*b.Requester.Phone, msg)
	}
}

// SendReminder emails the requester on the morning of an approved booking.
func (s *SenderService) SendReminder(b db.Booking) {
	if b.Requester == nil {
		return
	}
	data := s.emailData(b)
	subject := fmt.Sprintf("Lembrete: %s hoje às %s", data.RoomName, data.StartTime)
	plain := fmt.Sprintf(
		"Olá %s,\n\nVocê tem uma reserva hoje.\n\nSala: %s (%s)\nHorário: %s - %s\n\n"+
			"Lembre-se de fazer o check-in até 15 minutos após o início.\n",
		data.UserName, data.RoomName, data.RoomLocation, data.StartTime, data.EndTime,
	)
	s.goEmail(b.Requester.Email, data.UserName, subject, plain, s.render(b.ID, data))
}

func (s *SenderService) emailData(b db.Booking) entities.BookingEmailData {
	data := entities.BookingEmailData{
		UserName:      requesterName(b),
		RoomName:      roomName(b),
		DateFormatted: s.formatDate(b.Date),
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Status:        b.Status,
		StatusLabel:   utils.StatusLabel(b.Status),
		Reason:        b.Reason,
		CurrentYear:   s.now().In(s.loc).Year(),
	}
	if b.Room != nil {
		data.RoomLocation = b.Room.Location
	}
	if b.Justification != nil {
		data.Justification = *b.Justification
	}
	return data
}

func (s *SenderService) render(bookingID string, data entities.BookingEmailData) string {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		s.log.WithError(err).WithField("booking_id", bookingID).Error("rendering booking email")
		return ""
	}
	return buf.String()
}

func (s *SenderService) formatDate(date string) string {
	t, err := time.Parse(db.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("02/01/2006")
}

func (s *SenderService) goEmail(to, name, subject, plain, html string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := s.mailer.Send(ctx, to, name, subject, plain, html); err != nil {
			s.log.WithError(err).WithField("to", to).Error("email delivery failed")
		}
	}()
}

func (s *SenderService) goSMS(to, body string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := s.sms.Send(ctx, to, body); err != nil {
			s.log.WithError(err).WithField("to", to).Error("sms delivery failed")
		}
	}()
}

func roomName(b db.Booking) string {
	if b.Room != nil {
		return b.Room.Name
	}
	return b.RoomID
}

func requesterName(b db.Booking) string {
	if b.Requester != nil {
		return b.Requester.FullName
	}
	return b.UserID
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	"roombooking/internal/metrics"
	"roombooking/internal/repository"
)

const ExpiredJustification = "expired without review"

type JobService struct {
	repo     repository.JobRepository
	bookings repository.BookingRepository
	notifier BookingNotifier
	loc      *time.Location
	log      *logrus.Logger
	now      func() time.Time
}

func NewJobService(repo repository.JobRepository, bookings repository.BookingRepository, notifier BookingNotifier, loc *time.Location, log *logrus.Logger) *JobService {
	return &JobService{repo: repo, bookings: bookings, notifier: notifier, loc: loc, log: log, now: time.Now}
}

// ExpireStalePending cancela las reservas pendientes cuyo horario de inicio ya
// pasó sin decisión de un gestor.
func (s *JobService) ExpireStalePending(ctx context.Context) (int64, error) {
	cutoff := s.now().In(s.loc).Format("2006-01-02 15:04:05")
	ids, err := s.repo.GetPendingBookingIDsStartedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to get stale pending bookings: %w", err)
	}
	if len(ids) == 0 {
		s.log.Debug("cron job: no stale pending bookings")
		return 0, nil
	}
	n, err := s.repo.UpdateBookingStatuses(ctx, ids, db.BookingPending, db.BookingCancelled, ExpiredJustification)
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to expire bookings: %w", err)
	}
	metrics.RecordBookingTransition(db.BookingCancelled, int(n))
	s.log.WithFields(logrus.Fields{"found": len(ids), "expired": n}).Info("cron job: expired stale pending bookings")
	return n, nil
}

// SendDailyReminders envía un recordatorio a cada solicitante con reserva aprobada hoy.
func (s *JobService) SendDailyReminders(ctx context.Context) (int, error) {
	today := s.now().In(s.loc).Format(db.DateLayout)
	list, err := s.bookings.List(ctx, entities.BookingFilter{Status: db.BookingApproved, Date: today})
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to list today's bookings: %w", err)
	}
	for _, b := range list {
		s.notifier.SendReminder(b)
	}
	s.log.WithFields(logrus.Fields{"date": today, "reminders": len(list)}).Info("cron job: daily reminders queued")
	return len(list), nil
}

// Schedule registers the jobs on c. Specs are evaluated in the location c was
// built with.
func (s *JobService) Schedule(ctx context.Context, c *cron.Cron) error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"expire_pending", "*/15 * * * *", func(ctx context.Context) error { _, err := s.ExpireStalePending(ctx); return err }},
		{"daily_reminders", "0 7 * * *", func(ctx context.Context) error { _, err := s.SendDailyReminders(ctx); return err }},
	}
	for _, job := range jobs {
		job := job
		_, err := c.AddFunc(job.spec, func() {
			runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()
			err := job.run(runCtx)
			metrics.RecordJobRun(job.name, err == nil)
			if err != nil {
				s.log.WithError(err).WithField("job", job.name).Error("cron job failed")
			}
		})
		if err != nil {
			return fmt.Errorf("schedule %s: %w", job.name, err)
		}
	}
	return nil
}

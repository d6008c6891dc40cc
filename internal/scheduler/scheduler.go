package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/deutschbot/internal/config"
	"github.com/example/deutschbot/pkg/models"
	"github.com/go-co-op/gocron"
)

// SessionPurger drops conversation sessions that have been idle too long.
type SessionPurger interface {
	PurgeExpired(now time.Time) int
}

// UserLister finds users worth reminding.
type UserLister interface {
	ListActiveWithVocabulary(ctx context.Context, since time.Time) ([]models.User, error)
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(ctx context.Context, user models.User) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	cfg       config.ReminderConfig
	sessions  SessionPurger
	users     UserLister
	notifier  Notifier
	log       *slog.Logger
	now       func() time.Time
}

// New creates a new scheduler instance. users and notifier may be nil when
// reminders are disabled.
func New(cfg config.ReminderConfig, sessions SessionPurger, users UserLister, notifier Notifier, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		cfg:       cfg,
		sessions:  sessions,
		users:     users,
		notifier:  notifier,
		log:       logger.With("component", "scheduler"),
		now:       time.Now,
	}
}

// Start registers the jobs and runs them in the background.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Minute().Do(s.purgeSessions); err != nil {
		return fmt.Errorf("failed to schedule session purge: %v", err)
	}

	if s.cfg.Enabled && s.users != nil && s.notifier != nil {
		if _, err := s.scheduler.Every(1).Day().At(s.cfg.Time).Do(s.runReminders); err != nil {
			return fmt.Errorf("failed to schedule reminders: %v", err)
		}
		s.log.Info("daily reminders scheduled", "time_utc", s.cfg.Time, "active_days", s.cfg.ActiveDays)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) purgeSessions() {
	if n := s.sessions.PurgeExpired(s.now()); n > 0 {
		s.log.Debug("expired sessions purged", "count", n)
	}
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := s.SendReminders(ctx); err != nil {
		s.log.Error("reminder run failed", "error", err)
	}
}

// SendReminders notifies every user active within the configured window
// who owns at least one entry. It returns how many reminders went out.
func (s *Scheduler) SendReminders(ctx context.Context) (int, error) {
	since := s.now().AddDate(0, 0, -s.cfg.ActiveDays)

	users, err := s.users.ListActiveWithVocabulary(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("failed to list users for reminders: %w", err)
	}

	sent := 0
	for _, user := range users {
		if err := s.notifier.SendReminder(ctx, user); err != nil {
			s.log.Warn("failed to send reminder", "user_id", user.ID, "error", err)
			continue
		}
		sent++
	}

	s.log.Info("reminders sent", "sent", sent, "candidates", len(users))
	return sent, nil
}

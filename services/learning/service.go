// Package learning holds the progression state machine: lesson completion,
// quiz attempts, essay grading, learning path cascades and certificates.
package learning

import (
	"context"
	"lms/models"
	"log"
	"time"

	"gorm.io/gorm"
)

// Caller is the identity attached to a request
type Caller struct {
	UserID uint
	Role   models.Role
}

// Options tunes behaviour that differs between deployments
type Options struct {
	// EnforceQuizExpiry rejects submissions made after the quiz duration
	// plus ExpiryGrace has elapsed. Durations are advisory when false.
	EnforceQuizExpiry bool
	ExpiryGrace       time.Duration
	// BaseURL prefixes action links in notifications and emails.
	BaseURL string
}

// Hooks are the fire-and-forget collaborators invoked after a change commits
type Hooks struct {
	Points   PointsLedger
	Notifier Notifier
	Mailer   Mailer
}

// Service implements every progression operation on top of one gorm handle
type Service struct {
	db    *gorm.DB
	hooks Hooks
	opts  Options
	now   func() time.Time
}

// NewService wires the service. Missing hooks are replaced by no-ops.
func NewService(db *gorm.DB, hooks Hooks, opts Options) *Service {
	if hooks.Points == nil {
		hooks.Points = noopHooks{}
	}
	if hooks.Notifier == nil {
		hooks.Notifier = noopHooks{}
	}
	if hooks.Mailer == nil {
		hooks.Mailer = noopHooks{}
	}
	return &Service{db: db, hooks: hooks, opts: opts, now: time.Now}
}

func requireCaller(caller *Caller) error {
	if caller == nil || caller.UserID == 0 {
		return ErrUnauthenticated
	}
	return nil
}

func requireCapability(caller *Caller, capability models.Capability) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if !caller.Role.Can(capability) {
		return ErrAccessDenied
	}
	return nil
}

// sideEffect runs after the transaction that produced it has committed.
type sideEffect struct {
	name string
	run  func(ctx context.Context) error
}

// dispatch runs side effects in order. Failures are logged, never returned:
// the durable state is already committed.
func (s *Service) dispatch(ctx context.Context, effects []sideEffect) {
	for _, e := range effects {
		if err := e.run(ctx); err != nil {
			log.Printf("[LEARNING] %s failed: %v", e.name, err)
		}
	}
}

func (s *Service) awardPoints(userID uint, amount int, reason string) sideEffect {
	return sideEffect{
		name: "award points",
		run: func(ctx context.Context) error {
			return s.hooks.Points.AwardPoints(ctx, userID, amount, reason)
		},
	}
}

func (s *Service) notify(n NotificationPayload) sideEffect {
	if n.ActionURL != "" {
		n.ActionURL = s.opts.BaseURL + n.ActionURL
	}
	return sideEffect{
		name: "notify " + n.Type,
		run: func(ctx context.Context) error {
			return s.hooks.Notifier.CreateNotification(ctx, n)
		},
	}
}

// emailUser looks the recipient up after commit so a missing address only
// skips the email.
func (s *Service) emailUser(userID uint, subject, body string) sideEffect {
	return sideEffect{
		name: "email " + subject,
		run: func(ctx context.Context) error {
			var user models.User
			if err := s.db.WithContext(ctx).Select("id", "email").First(&user, userID).Error; err != nil {
				return err
			}
			if user.Email == "" {
				return nil
			}
			return s.hooks.Mailer.SendEmail(ctx, EmailPayload{To: user.Email, Subject: subject, Body: body})
		},
	}
}

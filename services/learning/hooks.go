package learning

import "context"

// Notification types emitted by the service
const (
	NotifyCourseCompleted = "COURSE_COMPLETED"
	NotifyCourseUnlocked  = "COURSE_UNLOCKED"
	NotifyPathCompleted   = "PATH_COMPLETED"
	NotifyEssayGraded     = "ESSAY_GRADED"
	NotifyCertRevoked     = "CERTIFICATE_REVOKED"
)

// PointsLedger credits reward points to a user
type PointsLedger interface {
	AwardPoints(ctx context.Context, userID uint, amount int, reason string) error
}

// NotificationPayload is handed to the notification dispatcher
type NotificationPayload struct {
	UserID    uint           `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	ActionURL string         `json:"action_url"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Notifier records an in-app notification
type Notifier interface {
	CreateNotification(ctx context.Context, n NotificationPayload) error
}

// EmailPayload is handed to the email dispatcher. Body is an HTML fragment.
type EmailPayload struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers email on a best-effort basis
type Mailer interface {
	SendEmail(ctx context.Context, e EmailPayload) error
}

type noopHooks struct{}

func (noopHooks) AwardPoints(context.Context, uint, int, string) error { return nil }
func (noopHooks) CreateNotification(context.Context, NotificationPayload) error { return nil }
func (noopHooks) SendEmail(context.Context, EmailPayload) error { return nil }

package engine

import (
	"context"
	"log/slog"
	"net/http"
)

// Doer performs HTTP requests. Satisfied by *http.Client; tests inject a
// recording fake.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Contact is the record produced by a CREATE_CONTACT action.
type Contact struct {
	Name         string
	Email        string
	SubAccountID string
}

// Notification is the record produced by a notification node.
type Notification struct {
	Message      string
	UserID       string
	SubAccountID string
}

// ContactSink receives contacts created during a run.
type ContactSink interface {
	CreateContact(ctx context.Context, contact Contact) error
}

// NotificationSink receives notifications emitted during a run.
type NotificationSink interface {
	Notify(ctx context.Context, notification Notification) error
}

// LogContactSink records contact creation in the log. It stands in until
// a CRM integration provides a real sink.
type LogContactSink struct {
	Logger *slog.Logger
}

func (s *LogContactSink) CreateContact(ctx context.Context, contact Contact) error {
	s.Logger.InfoContext(ctx, "Contact created",
		"name", contact.Name,
		"email", contact.Email,
		"sub_account_id", contact.SubAccountID,
	)

	return nil
}

// LogNotificationSink records notifications in the log.
type LogNotificationSink struct {
	Logger *slog.Logger
}

func (s *LogNotificationSink) Notify(ctx context.Context, notification Notification) error {
	s.Logger.InfoContext(ctx, "Notification sent",
		"message", notification.Message,
		"user_id", notification.UserID,
		"sub_account_id", notification.SubAccountID,
	)

	return nil
}

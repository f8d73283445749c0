package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cyverse-de/notification-doctor/model"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultListenChannel is the channel that notification producers signal when a user's notifications
// change. The payload of each signal is the username of the owner.
const DefaultListenChannel = "notification_changes"

// SQLSTATE code reported when the database role lacks a privilege.
const insufficientPrivilege = "42501"

// Store is a notification store backed by the notifications database.
type Store struct {
	db      *sql.DB
	channel string
	log     *logrus.Entry
	listen  func(channel string) (Notifier, error)
}

// NewStore returns a notification store that uses the given database connection. A separate listener
// connection to databaseURI is opened for each live subscription.
func NewStore(db *sql.DB, databaseURI, channel string, log *logrus.Entry) *Store {
	if channel == "" {
		channel = DefaultListenChannel
	}
	s := &Store{db: db, channel: channel, log: log}
	s.listen = func(channel string) (Notifier, error) {
		listener := pq.NewListener(databaseURI, 10*time.Second, time.Minute, s.logListenerEvent)
		if err := listener.Listen(channel); err != nil {
			_ = listener.Close()
			return nil, err
		}
		return listener, nil
	}
	return s
}

func (s *Store) logListenerEvent(event pq.ListenerEventType, err error) {
	switch event {
	case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
		s.log.WithError(err).Warn("notification listener connection problem")
	case pq.ListenerEventReconnected:
		s.log.Info("notification listener reconnected")
	}
}

// classifyError converts database errors into store errors that the diagnostic checks understand.
func classifyError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	kind := model.KindOther
	if pqErr.Code == insufficientPrivilege {
		kind = model.KindAccessDenied
	}
	return model.NewStoreError(kind, pqErr.Code.Name(), err)
}

// ListNotifications lists all of the user's notifications.
func (s *Store) ListNotifications(ctx context.Context, user string) ([]model.Notification, error) {
	notifications, err := ListNotifications(ctx, s.db, user)
	if err != nil {
		return nil, classifyError(err)
	}
	return notifications, nil
}

// ListUnreadNotifications lists the user's unread notifications, newest first.
func (s *Store) ListUnreadNotifications(ctx context.Context, user string) ([]model.Notification, error) {
	notifications, err := ListUnreadNotifications(ctx, s.db, user)
	if err != nil {
		return nil, classifyError(err)
	}
	return notifications, nil
}

// MarkNotificationRead marks one of the user's unread notifications as read in its own transaction.
func (s *Store) MarkNotificationRead(ctx context.Context, user, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classifyError(errors.Wrap(err, "unable to begin a database transaction"))
	}
	defer func() { _ = tx.Rollback() }()

	if err = MarkNotificationRead(ctx, tx, user, id); err != nil {
		return classifyError(err)
	}

	if err = tx.Commit(); err != nil {
		return classifyError(errors.Wrap(err, "unable to commit the database transaction"))
	}

	return nil
}

// WatchUnreadNotifications subscribes to the user's unread notifications, newest first.
func (s *Store) WatchUnreadNotifications(ctx context.Context, user string) (model.Subscription, error) {
	notifier, err := s.listen(s.channel)
	if err != nil {
		return nil, classifyError(errors.Wrap(err, fmt.Sprintf("unable to listen on `%s`", s.channel)))
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := newSubscription(cancel)
	go sub.run(ctx, s.db, notifier, user)

	return sub, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReadRule returns the statements that allow a database role to read only its own notifications.
func (s *Store) ReadRule() string {
	return `GRANT SELECT ON notifications, users, notification_types TO <role>;
ALTER TABLE notifications ENABLE ROW LEVEL SECURITY;
CREATE POLICY notifications_owner_read ON notifications FOR SELECT
  USING (user_id = (SELECT id FROM users WHERE username = current_user));`
}

// UpdateRule returns the statements that allow a database role to mark only its own notifications as
// read without changing any other column.
func (s *Store) UpdateRule() string {
	return `GRANT UPDATE (seen) ON notifications TO <role>;
CREATE POLICY notifications_owner_update ON notifications FOR UPDATE
  USING (user_id = (SELECT id FROM users WHERE username = current_user));`
}

// IndexSpec returns the index that serves the ordered unread notification query.
func (s *Store) IndexSpec() string {
	return "CREATE INDEX notifications_user_seen_time_idx ON notifications (user_id ASC, seen ASC, time_created DESC);"
}

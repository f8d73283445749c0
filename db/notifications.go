package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cyverse-de/notification-doctor/model"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"
)

// Queryer is satisfied by both *sql.DB and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// notificationsQuery returns the base query for listing the notifications that belong to a user.
func notificationsQuery(user string) sq.SelectBuilder {
	return sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(
			"n.id::text",
			"t.name",
			"u.username",
			"n.subject",
			"COALESCE(n.incoming_json->>'message', '')",
			"n.seen",
			"n.time_created",
		).
		From("notifications n").
		Join("users u ON n.user_id = u.id").
		Join("notification_types t ON n.notification_type_id = t.id").
		Where(sq.Eq{"u.username": user}).
		Where(sq.Eq{"n.deleted": false})
}

// queryNotifications runs a notification query and scans the results.
func queryNotifications(ctx context.Context, q Queryer, builder sq.SelectBuilder, wrapMsg string) ([]model.Notification, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	defer rows.Close()

	notifications := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		err = rows.Scan(&n.ID, &n.NotificationType, &n.User, &n.Title, &n.Message, &n.Read, &n.TimeCreated)
		if err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
		notifications = append(notifications, n)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return notifications, nil
}

// ListNotifications lists all of the notifications for the user that haven't been deleted.
func ListNotifications(ctx context.Context, q Queryer, user string) ([]model.Notification, error) {
	wrapMsg := fmt.Sprintf("unable to list notifications for `%s`", user)
	return queryNotifications(ctx, q, notificationsQuery(user), wrapMsg)
}

// ListUnreadNotifications lists the notifications for the user that haven't been marked as read, newest
// first.
func ListUnreadNotifications(ctx context.Context, q Queryer, user string) ([]model.Notification, error) {
	wrapMsg := fmt.Sprintf("unable to list unread notifications for `%s`", user)
	builder := notificationsQuery(user).
		Where(sq.Eq{"n.seen": false}).
		OrderBy("n.time_created DESC")
	return queryNotifications(ctx, q, builder, wrapMsg)
}

// MarkNotificationRead marks a single unread notification belonging to the user as read. Only the seen
// column is updated.
func MarkNotificationRead(ctx context.Context, tx *sql.Tx, user, id string) error {
	wrapMsg := fmt.Sprintf("unable to mark notification `%s` as read", id)

	// Build the statement to update the notification.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Update("notifications").
		Set("seen", true).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"seen": false}).
		Where(sq.Eq{"deleted": false}).
		Where("user_id = (SELECT id FROM users WHERE username = ?)", user).
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the update statement and verify that the correct number of rows was affected.
	result, err := tx.ExecContext(ctx, statement, args...)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	if rowsAffected != 1 {
		return model.NewStoreError(
			model.KindOther,
			"not-updated",
			fmt.Errorf("%s: unexpected number of rows affected: %d", wrapMsg, rowsAffected),
		)
	}

	return nil
}

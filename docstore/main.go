// Package docstore reads and updates notifications kept in a Cloud Firestore collection. Each document
// in the collection is a single notification; the document ID is the notification ID.
package docstore

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"cloud.google.com/go/firestore"
	"github.com/cyverse-de/notification-doctor/common"
	"github.com/cyverse-de/notification-doctor/model"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultCollection is the name of the collection that notifications are stored in by default.
const DefaultCollection = "notifications"

// Fields contains the names of the document fields that hold each part of a notification.
type Fields struct {
	Owner     string
	Type      string
	Title     string
	Message   string
	Read      string
	Timestamp string
}

// DefaultFields returns the field names written by the notification producers.
func DefaultFields() Fields {
	return Fields{
		Owner:     "userId",
		Type:      "type",
		Title:     "title",
		Message:   "message",
		Read:      "read",
		Timestamp: "timestamp",
	}
}

// Store is a notification store backed by a Firestore collection.
type Store struct {
	client     *firestore.Client
	collection string
	fields     Fields
}

// NewStore connects to the Firestore database described by the settings. Application default
// credentials are used unless a credentials file is given. FIRESTORE_EMULATOR_HOST is honored.
func NewStore(ctx context.Context, settings *common.FirestoreSettings) (*Store, error) {
	wrapMsg := "unable to create the Firestore client"

	opts := make([]option.ClientOption, 0)
	if settings.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(settings.CredentialsFile))
	}

	projectID := settings.ProjectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	collection := settings.Collection
	if collection == "" {
		collection = DefaultCollection
	}

	return &Store{client: client, collection: collection, fields: DefaultFields()}, nil
}

// ownedBy returns a query for the notifications that belong to a user.
func (s *Store) ownedBy(user string) firestore.Query {
	return s.client.Collection(s.collection).Where(s.fields.Owner, "==", user)
}

// unreadFilter returns an unordered query for a user's unread notifications. It doesn't need a composite
// index, and it matches documents that have no timestamp.
func (s *Store) unreadFilter(user string) firestore.Query {
	return s.ownedBy(user).Where(s.fields.Read, "==", false)
}

// unreadQuery returns a query for a user's unread notifications, newest first. Firestore requires a
// composite index for this query.
func (s *Store) unreadQuery(user string) firestore.Query {
	return s.unreadFilter(user).OrderBy(s.fields.Timestamp, firestore.Desc)
}

func (s *Store) getAll(ctx context.Context, q firestore.Query, wrapMsg string) ([]model.Notification, error) {
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, classifyError(errors.Wrap(err, wrapMsg))
	}

	notifications := make([]model.Notification, 0, len(docs))
	for _, doc := range docs {
		n, err := notificationFromData(doc.Ref.ID, doc.Data(), s.fields)
		if err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
		notifications = append(notifications, n)
	}

	return notifications, nil
}

// ListNotifications lists all of the user's notifications.
func (s *Store) ListNotifications(ctx context.Context, user string) ([]model.Notification, error) {
	wrapMsg := fmt.Sprintf("unable to list notifications for `%s`", user)
	return s.getAll(ctx, s.ownedBy(user), wrapMsg)
}

// ListUnreadNotifications lists the user's unread notifications in no particular order.
func (s *Store) ListUnreadNotifications(ctx context.Context, user string) ([]model.Notification, error) {
	wrapMsg := fmt.Sprintf("unable to list unread notifications for `%s`", user)
	return s.getAll(ctx, s.unreadFilter(user), wrapMsg)
}

// MarkNotificationRead sets the read flag of a notification. No other field is written, so the update
// is allowed by security rules that restrict updates to the read flag. Ownership is enforced by the
// security rules rather than by the query.
func (s *Store) MarkNotificationRead(ctx context.Context, _ string, id string) error {
	wrapMsg := fmt.Sprintf("unable to mark notification `%s` as read", id)

	doc := s.client.Collection(s.collection).Doc(id)
	_, err := doc.Update(ctx, []firestore.Update{{Path: s.fields.Read, Value: true}})
	if err != nil {
		return classifyError(errors.Wrap(err, wrapMsg))
	}

	return nil
}

// WatchUnreadNotifications listens for changes to the user's unread notifications. Firestore reports
// problems with the query, such as a missing index, through the subscription rather than here.
func (s *Store) WatchUnreadNotifications(ctx context.Context, user string) (model.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	source := &querySnapshots{
		iter:   s.unreadQuery(user).Snapshots(ctx),
		fields: s.fields,
	}

	sub := newSubscription(cancel)
	go sub.run(ctx, source)

	return sub, nil
}

// Close closes the Firestore client.
func (s *Store) Close() error {
	return s.client.Close()
}

// kebab converts a gRPC code name such as PermissionDenied to permission-denied.
func kebab(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteRune('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// classifyError converts gRPC errors from Firestore into store errors.
func classifyError(err error) error {
	st, ok := status.FromError(errors.Cause(err))
	if !ok {
		return err
	}

	var kind model.ErrorKind
	switch st.Code() {
	case codes.PermissionDenied, codes.Unauthenticated:
		kind = model.KindAccessDenied
	case codes.FailedPrecondition:
		kind = model.KindMissingIndex
	default:
		kind = model.KindOther
	}

	return model.NewStoreError(kind, kebab(st.Code().String()), err)
}

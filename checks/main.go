// Package checks contains the individual notification diagnostics. Each check prints its progress to a
// transcript and returns a Result; no check returns an error to its caller; failures are reported in
// the result instead so that the remaining checks can still run.
package checks

import (
	"context"
	"time"

	"github.com/cyverse-de/notification-doctor/model"
	"github.com/sirupsen/logrus"
)

// Names of the individual checks.
const (
	IdentityCheck     = "User Auth"
	ExistenceCheck    = "Notifications Exist"
	UnreadCheck       = "Unread Notifications"
	SubscriptionCheck = "Real-time Listener"
	MutationCheck     = "Mark as Read"
)

// Status is the outcome of a single check.
type Status string

const (
	NotRun        Status = "Not run"
	Passing       Status = "Pass"
	Failing       Status = "Fail"
	Warning       Status = "Warn"
	Informational Status = "Info"
	Skipped       Status = "Skip"
)

// Emoji returns the marker printed next to a status.
func (s Status) Emoji() string {
	switch s {
	case Passing:
		return "✅"
	case Failing:
		return "❌"
	case Warning:
		return "⚠️"
	case Informational, Skipped:
		return "ℹ️"
	default:
		return "-"
	}
}

// OK returns true for outcomes that count as success. Warnings don't.
func (s Status) OK() bool {
	return s == Passing || s == Informational || s == Skipped
}

// Result is the outcome of one check. Count is the number of notifications the check found, where that
// makes sense.
type Result struct {
	Name   string
	Status Status
	Count  int
	Err    error
}

// NotificationStore is the external store that the checks exercise.
type NotificationStore interface {
	ListNotifications(ctx context.Context, user string) ([]model.Notification, error)
	ListUnreadNotifications(ctx context.Context, user string) ([]model.Notification, error)
	WatchUnreadNotifications(ctx context.Context, user string) (model.Subscription, error)
	MarkNotificationRead(ctx context.Context, user, id string) error
}

// Remedies describes the store configuration that the checks rely on. Stores that implement it get
// remediation advice in their own terms.
type Remedies interface {
	ReadRule() string
	UpdateRule() string
	IndexSpec() string
}

// firestoreRemedies is used for stores that don't describe their own configuration.
type firestoreRemedies struct{}

func (firestoreRemedies) ReadRule() string {
	return `match /notifications/{notificationId} {
  allow read: if request.auth.uid == resource.data.userId;
}`
}

func (firestoreRemedies) UpdateRule() string {
	return `match /notifications/{notificationId} {
  allow update: if request.auth.uid == resource.data.userId
                && request.resource.data.diff(resource.data)
                  .affectedKeys().hasOnly(["read"]);
}`
}

func (firestoreRemedies) IndexSpec() string {
	return "Collection: notifications\nFields: userId (Asc), read (Asc), timestamp (Desc)"
}

// Checker runs checks against a single notification store.
type Checker struct {
	store    NotificationStore
	remedies Remedies
	out      *Transcript
	log      *logrus.Entry

	// Timeout bounds each query and update. Zero means no limit.
	Timeout time.Duration
}

// New returns a checker for the store that writes to the transcript.
func New(store NotificationStore, out *Transcript, log *logrus.Entry) *Checker {
	remedies, ok := store.(Remedies)
	if !ok {
		remedies = firestoreRemedies{}
	}
	return &Checker{store: store, remedies: remedies, out: out, log: log}
}

func (c *Checker) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}

// reportFailure prints a failed store operation along with any remediation that applies. accessRule is
// the access policy needed by the operation that failed.
func (c *Checker) reportFailure(log *logrus.Entry, title string, err error, accessRule string) {
	log.WithError(err).WithField("kind", model.KindOf(err).String()).Error(title)

	c.out.Fail(title)
	c.out.Detail("Error code: %s", model.CodeOf(err))
	c.out.Detail("Error message: %s", err.Error())

	switch model.KindOf(err) {
	case model.KindAccessDenied:
		c.out.Fix("Update the access rules on the notification store. Add this rule:", accessRule)
	case model.KindMissingIndex:
		c.out.Fix("Create the composite index on the notification store:", c.remedies.IndexSpec())
	}
}

// WithLogger returns a copy of the checker that logs to log.
func (c *Checker) WithLogger(log *logrus.Entry) *Checker {
	copied := *c
	copied.log = log
	return &copied
}

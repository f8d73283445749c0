package checks

import (
	"context"
	"strings"
	"sync"

	"github.com/cyverse-de/notification-doctor/common"
	"github.com/cyverse-de/notification-doctor/model"
	"github.com/cyverse-de/notification-doctor/session"
	"github.com/sirupsen/logrus"
)

// Listener is the handle for a live subscription started by the subscription check. It must be stopped
// exactly once it is no longer needed; extra calls to Stop are harmless.
type Listener struct {
	sub      model.Subscription
	done     chan struct{}
	stopOnce sync.Once

	mu        sync.Mutex
	snapshots int
	added     int
}

// Stop cancels the subscription and waits until every snapshot delivered before the cancellation has
// been printed. Nothing is printed for the subscription after Stop returns.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() {
		l.sub.Stop()
		<-l.done
	})
}

// Snapshots returns the number of snapshots received so far.
func (l *Listener) Snapshots() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshots
}

// Added returns the number of added notifications received so far.
func (l *Listener) Added() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.added
}

func (l *Listener) record(snapshot *model.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshots++
	for _, change := range snapshot.Changes {
		if change.Kind == model.Added {
			l.added++
		}
	}
}

// Subscription starts a live subscription to the user's unread notifications, newest first. Passing
// only means that the subscription was set up; whether changes actually arrive can only be seen in the
// transcript while the listener is running. The returned listener is nil if the subscription could not
// be set up.
func (c *Checker) Subscription(ctx context.Context, identity *session.Identity) (*Listener, Result) {
	result := Result{Name: SubscriptionCheck}
	log := c.log.WithFields(logrus.Fields{"check": SubscriptionCheck, "user": identity.UserID})
	c.out.Header("TEST 4: Real-time Listener")

	c.out.Wait("Setting up real-time listener...")
	c.out.Line("Listening for user ID: %s", identity.UserID)

	sub, err := c.store.WatchUnreadNotifications(ctx, identity.UserID)
	if err != nil {
		c.reportFailure(log, "Error setting up listener", err, c.remedies.ReadRule())
		result.Status = Failing
		result.Err = NewRecoverableError(err, "unable to subscribe to unread notifications")
		return nil, result
	}

	listener := &Listener{sub: sub, done: make(chan struct{})}
	go c.consume(log, listener)

	log.Info("listener set up")
	c.out.Pass("Listener setup complete")
	c.out.Hint("The listener will log when new notifications arrive")

	result.Status = Passing
	return listener, result
}

// consume prints each snapshot delivered by the subscription until the subscription ends.
func (c *Checker) consume(log *logrus.Entry, listener *Listener) {
	defer close(listener.done)

	for snapshot := range listener.sub.Snapshots() {
		listener.record(snapshot)
		c.printSnapshot(log, snapshot)
	}

	if err := listener.sub.Err(); err != nil {
		c.out.Blank()
		c.reportFailure(log, "Listener error", err, c.remedies.ReadRule())
	}
}

func (c *Checker) printSnapshot(log *logrus.Entry, snapshot *model.Snapshot) {
	log.WithFields(logrus.Fields{"size": snapshot.Size, "changes": len(snapshot.Changes)}).Info("snapshot received")

	c.out.Event("📬", "SNAPSHOT RECEIVED")
	c.out.Line("Total notifications: %d", snapshot.Size)
	c.out.Line("Changes: %d", len(snapshot.Changes))

	for _, change := range snapshot.Changes {
		n := change.Notification
		c.out.Blank()
		c.out.Line("%s:", strings.ToUpper(string(change.Kind)))
		c.out.Detail("Notification ID: %s", n.ID)
		c.out.Detail("Type: %s", n.NotificationType)
		c.out.Detail("Title: %s", n.Title)
		c.out.Detail("Message: %s", preview(n.Message))
		c.out.Detail("Read: %t", n.Read)
		c.out.Detail("Timestamp: %s", common.FormatTimestamp(n.TimeCreated))

		if change.Kind == model.Added {
			c.out.Line("🔔 NEW NOTIFICATION DETECTED!")
			c.out.Hint("This should trigger an alert in your app")
		}
	}

	c.out.Blank()
	c.out.Pass("Listener is working")
	c.out.Hint("Send a notification to this user to test real-time updates")
}

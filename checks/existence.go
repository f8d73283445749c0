package checks

import (
	"context"

	"github.com/cyverse-de/notification-doctor/common"
	"github.com/cyverse-de/notification-doctor/session"
	"github.com/sirupsen/logrus"
)

// Existence lists every notification that belongs to the user. Finding none is a warning rather than a
// failure, since it usually means that nothing has been sent to this user yet.
func (c *Checker) Existence(ctx context.Context, identity *session.Identity) Result {
	result := Result{Name: ExistenceCheck}
	log := c.log.WithFields(logrus.Fields{"check": ExistenceCheck, "user": identity.UserID})
	c.out.Header("TEST 2: Notifications Exist")

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	notifications, err := c.store.ListNotifications(ctx, identity.UserID)
	if err != nil {
		c.reportFailure(log, "Error fetching notifications", err, c.remedies.ReadRule())
		result.Status = Failing
		result.Err = NewRecoverableError(err, "unable to list notifications")
		return result
	}

	if len(notifications) == 0 {
		log.Warn("no notifications found")
		c.out.Warn("No notifications found for this user")
		c.out.Hint("Send a test notification to this user")
		c.out.Hint("Check the notification store to verify that the notification was created")
		c.out.Hint("Verify that the owner of the notification matches: %s", identity.UserID)
		result.Status = Warning
		return result
	}

	log.Infof("found %d notifications", len(notifications))
	c.out.Pass("Found %d notification(s)", len(notifications))
	for i, n := range notifications {
		c.out.Blank()
		c.out.Line("Notification %d:", i+1)
		c.out.Detail("ID: %s", n.ID)
		c.out.Detail("Type: %s", n.NotificationType)
		c.out.Detail("Title: %s", n.Title)
		c.out.Detail("Read: %t", n.Read)
		c.out.Detail("Timestamp: %s (%s)", n.TimeCreated.Format("2006-01-02 15:04:05 MST"), common.FormatTimestamp(n.TimeCreated))
	}

	result.Status = Passing
	result.Count = len(notifications)
	return result
}

package checks

import (
	"context"

	"github.com/cyverse-de/notification-doctor/session"
	"github.com/sirupsen/logrus"
)

// Mutation marks the first unread notification as read, which is exactly the update an app makes when
// the user dismisses an alert. It is skipped when there is nothing unread. This is the only check that
// changes anything in the store.
func (c *Checker) Mutation(ctx context.Context, identity *session.Identity) Result {
	result := Result{Name: MutationCheck}
	log := c.log.WithFields(logrus.Fields{"check": MutationCheck, "user": identity.UserID})
	c.out.Header("TEST 5: Mark as Read")

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	unread, err := c.store.ListUnreadNotifications(ctx, identity.UserID)
	if err != nil {
		c.reportFailure(log, "Error finding an unread notification", err, c.remedies.ReadRule())
		result.Status = Failing
		result.Err = NewRecoverableError(err, "unable to find an unread notification")
		return result
	}

	if len(unread) == 0 {
		log.Info("no unread notifications to mark")
		c.out.Skip("No unread notifications to mark")
		result.Status = Skipped
		return result
	}

	first := unread[0]
	log = log.WithField("notification", first.ID)
	c.out.Wait("Attempting to mark notification as read...")
	c.out.Detail("Notification ID: %s", first.ID)

	if err = c.store.MarkNotificationRead(ctx, identity.UserID, first.ID); err != nil {
		c.reportFailure(log, "Error marking as read", err, c.remedies.UpdateRule())
		result.Status = Failing
		result.Err = NewRecoverableError(err, "unable to mark notification %s as read", first.ID)
		return result
	}

	log.Info("marked notification as read")
	c.out.Pass("Successfully marked as read")
	c.out.Hint("Your app can update notifications")

	result.Status = Passing
	result.Count = 1
	return result
}

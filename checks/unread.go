package checks

import (
	"context"

	"github.com/cyverse-de/notification-doctor/session"
	"github.com/sirupsen/logrus"
)

// previewLength is the number of characters of each message shown in listings.
const previewLength = 50

func preview(message string) string {
	runes := []rune(message)
	if len(runes) <= previewLength {
		return message
	}
	return string(runes[:previewLength]) + "..."
}

// Unread lists the user's unread notifications. Having none is a valid state, so an empty result is
// informational.
func (c *Checker) Unread(ctx context.Context, identity *session.Identity) Result {
	result := Result{Name: UnreadCheck}
	log := c.log.WithFields(logrus.Fields{"check": UnreadCheck, "user": identity.UserID})
	c.out.Header("TEST 3: Unread Notifications")

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	notifications, err := c.store.ListUnreadNotifications(ctx, identity.UserID)
	if err != nil {
		c.reportFailure(log, "Error fetching unread notifications", err, c.remedies.ReadRule())
		result.Status = Failing
		result.Err = NewRecoverableError(err, "unable to list unread notifications")
		return result
	}

	if len(notifications) == 0 {
		log.Info("no unread notifications")
		c.out.Info("No unread notifications")
		c.out.Hint("All notifications have been read, or none exist")
		c.out.Hint("Send a new notification to this user to test")
		result.Status = Informational
		return result
	}

	log.Infof("found %d unread notifications", len(notifications))
	c.out.Pass("Found %d unread notification(s)", len(notifications))
	for i, n := range notifications {
		c.out.Blank()
		c.out.Line("Unread Notification %d:", i+1)
		c.out.Detail("Type: %s", n.NotificationType)
		c.out.Detail("Title: %s", n.Title)
		c.out.Detail("Message: %s", preview(n.Message))
	}

	result.Status = Passing
	result.Count = len(notifications)
	return result
}

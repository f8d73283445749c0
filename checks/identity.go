package checks

import (
	"context"

	"github.com/cyverse-de/notification-doctor/common"
	"github.com/cyverse-de/notification-doctor/session"
)

// Identity verifies that a user is signed in. The identity it returns is passed to every other check;
// when it is nil the run can't continue.
func (c *Checker) Identity(ctx context.Context, source session.Source) (*session.Identity, Result) {
	result := Result{Name: IdentityCheck}
	log := c.log.WithField("check", IdentityCheck)
	c.out.Header("TEST 1: User Authentication")

	identity, err := source.Current(ctx)
	if err != nil {
		log.WithError(err).Error("no signed-in user")
		c.out.Fail("No authenticated user")
		c.out.Hint("Make sure the user is signed in before testing")
		if err != session.ErrNoIdentity {
			c.out.Detail("Reason: %s", err.Error())
		}
		result.Status = Failing
		result.Err = NewUnrecoverableError(err, "cannot continue without a signed-in user")
		return nil, result
	}

	c.out.Pass("User is authenticated")
	c.out.Detail("User ID: %s", identity.UserID)
	if identity.Email != "" {
		c.out.Detail("Email: %s", identity.Email)
		if err := common.ValidateEmailAddress(identity.Email); err != nil {
			log.WithError(err).Warnf("the session email address `%s` is malformed", identity.Email)
		}
	}
	log.WithField("user", identity.UserID).Info("user is authenticated")

	result.Status = Passing
	return identity, result
}

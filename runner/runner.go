// Package runner runs the notification checks in order and summarizes the results.
package runner

import (
	"context"
	"io"
	"time"

	"github.com/cyverse-de/notification-doctor/checks"
	"github.com/cyverse-de/notification-doctor/common"
	"github.com/cyverse-de/notification-doctor/session"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultObservationWindow is how long the live subscription is kept open by default.
const DefaultObservationWindow = 5 * time.Second

// Store is a notification store that can be closed when the run is over.
type Store interface {
	checks.NotificationStore
	Close() error
}

// Runner runs the notification checks against a single store for a single user.
type Runner struct {
	store    Store
	sessions session.Source
	out      *checks.Transcript
	checker  *checks.Checker
	window   time.Duration
	log      *logrus.Entry
}

// New creates a new runner. The transcript of each run is written to out.
func New(store Store, sessions session.Source, out io.Writer, settings *common.DiagnosticSettings, log *logrus.Entry) *Runner {
	transcript := checks.NewTranscript(out)
	checker := checks.New(store, transcript, log)

	window := DefaultObservationWindow
	if settings != nil {
		checker.Timeout = settings.CheckTimeout
		if settings.ObservationWindow > 0 {
			window = settings.ObservationWindow
		}
	}

	return &Runner{
		store:    store,
		sessions: sessions,
		out:      transcript,
		checker:  checker,
		window:   window,
		log:      log,
	}
}

// Run runs every check. The run stops after the identity check if nobody is signed in; otherwise every
// check runs regardless of the outcome of the others. The live subscription is cancelled before Run
// returns on every path.
func (r *Runner) Run(ctx context.Context) *Summary {
	summary := NewSummary(uuid.New().String())
	log := r.log.WithField("run_id", summary.RunID)
	checker := r.checker.WithLogger(log)

	r.out.Banner("🧪 NOTIFICATION SYSTEM DIAGNOSTIC TESTS")

	identity, result := checker.Identity(ctx, r.sessions)
	summary.Identity = result
	if identity == nil {
		log.WithError(result.Err).Error("run aborted")
		r.out.Event("⛔", "STOP: Cannot continue without authentication")
		summary.Write(r.out)
		return summary
	}

	summary.Existence = checker.Existence(ctx, identity)
	summary.Unread = checker.Unread(ctx, identity)

	listener, result := checker.Subscription(ctx, identity)
	summary.Subscription = result
	if listener != nil {
		defer listener.Stop()
		r.observe(ctx, log)

		r.out.Event("🔴", "Stopping listener...")
		listener.Stop()
		log.WithFields(logrus.Fields{
			"snapshots": listener.Snapshots(),
			"added":     listener.Added(),
		}).Info("listener stopped")
	}

	summary.Mutation = checker.Mutation(ctx, identity)

	summary.Write(r.out)
	log.WithField("ok", summary.OK()).Info("run complete")
	return summary
}

// observe keeps the live subscription open for the observation window or until the context is done.
func (r *Runner) observe(ctx context.Context, log *logrus.Entry) {
	r.out.Event("⏳", "Keeping listener active for %s...", r.window)
	r.out.Hint("Send a notification to this user NOW to test real-time delivery!")

	timer := time.NewTimer(r.window)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		log.WithError(ctx.Err()).Warn("observation window cut short")
	}
}

// Close closes the notification store.
func (r *Runner) Close() error {
	return errors.Wrap(r.store.Close(), "unable to close the notification store")
}

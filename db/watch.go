package db

import (
	"context"
	"sync"

	"github.com/cyverse-de/notification-doctor/model"
	"github.com/lib/pq"
)

// Notifier is the part of *pq.Listener that a subscription uses to learn about changes.
type Notifier interface {
	NotificationChannel() <-chan *pq.Notification
	Close() error
}

// subscription re-runs the unread notification query whenever the owner's notifications change and
// delivers the differences as snapshots.
type subscription struct {
	snapshots chan *model.Snapshot
	cancel    context.CancelFunc
	done      chan struct{}
	stopOnce  sync.Once

	mu  sync.Mutex
	err error
}

func newSubscription(cancel context.CancelFunc) *subscription {
	return &subscription{
		snapshots: make(chan *model.Snapshot),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Snapshots returns the channel that snapshots are delivered on.
func (s *subscription) Snapshots() <-chan *model.Snapshot {
	return s.snapshots
}

// Err returns the error that ended the subscription, if any.
func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stop ends the subscription and waits for it to shut down.
func (s *subscription) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		<-s.done
	})
}

func (s *subscription) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *subscription) run(ctx context.Context, q Queryer, notifier Notifier, user string) {
	defer close(s.done)
	defer close(s.snapshots)
	defer func() { _ = notifier.Close() }()

	var previous []model.Notification
	initial := true

	// refresh queries the current unread notifications and delivers a snapshot if anything changed.
	refresh := func() bool {
		current, err := ListUnreadNotifications(ctx, q, user)
		if err != nil {
			if ctx.Err() == nil {
				s.setErr(classifyError(err))
			}
			return false
		}

		snapshot := model.NewSnapshot(previous, current)
		previous = current
		if !initial && len(snapshot.Changes) == 0 {
			return true
		}
		initial = false

		select {
		case s.snapshots <- snapshot:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !refresh() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifier.NotificationChannel():
			if !ok {
				return
			}

			// A nil notification means the listener reconnected and may have missed signals.
			if n != nil && n.Extra != user {
				continue
			}
			if !refresh() {
				return
			}
		}
	}
}

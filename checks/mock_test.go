package checks

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/cyverse-de/notification-doctor/model"
	"github.com/sirupsen/logrus"
)

// MockSubscription is a subscription that tests feed snapshots into directly.
type MockSubscription struct {
	mu        sync.Mutex
	snapshots chan *model.Snapshot
	err       error
	stopped   bool
}

// NewMockSubscription creates a new mock subscription.
func NewMockSubscription() *MockSubscription {
	return &MockSubscription{snapshots: make(chan *model.Snapshot, 16)}
}

// Snapshots returns the channel that snapshots are delivered on.
func (m *MockSubscription) Snapshots() <-chan *model.Snapshot {
	return m.snapshots
}

// Err returns the error that the subscription failed with, if any.
func (m *MockSubscription) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Stop closes the snapshot channel.
func (m *MockSubscription) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stopped {
		m.stopped = true
		close(m.snapshots)
	}
}

// Stopped returns true if the subscription has been stopped.
func (m *MockSubscription) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// Deliver queues a snapshot, returning false if the subscription has already ended.
func (m *MockSubscription) Deliver(snapshot *model.Snapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return false
	}
	m.snapshots <- snapshot
	return true
}

// Fail ends the subscription with an error.
func (m *MockSubscription) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	m.stopped = true
	close(m.snapshots)
}

// MockStore is an in-memory notification store.
type MockStore struct {
	mu            sync.Mutex
	notifications []model.Notification

	ListErr   error
	UnreadErr error
	WatchErr  error
	MarkErr   error

	Marked       []string
	Subscription *MockSubscription
}

// NewMockStore creates a new mock store containing the given notifications.
func NewMockStore(notifications ...model.Notification) *MockStore {
	return &MockStore{notifications: notifications}
}

// ListNotifications lists the user's notifications.
func (s *MockStore) ListNotifications(_ context.Context, user string) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	result := make([]model.Notification, 0)
	for _, n := range s.notifications {
		if n.User == user {
			result = append(result, n)
		}
	}
	return result, nil
}

// ListUnreadNotifications lists the user's unread notifications, newest first.
func (s *MockStore) ListUnreadNotifications(_ context.Context, user string) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UnreadErr != nil {
		return nil, s.UnreadErr
	}
	result := make([]model.Notification, 0)
	for _, n := range s.notifications {
		if n.User == user && !n.Read {
			result = append(result, n)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].TimeCreated.After(result[j].TimeCreated) })
	return result, nil
}

// WatchUnreadNotifications returns a new mock subscription.
func (s *MockStore) WatchUnreadNotifications(_ context.Context, _ string) (model.Subscription, error) {
	if s.WatchErr != nil {
		return nil, s.WatchErr
	}
	s.Subscription = NewMockSubscription()
	return s.Subscription, nil
}

// MarkNotificationRead marks one of the user's unread notifications as read.
func (s *MockStore) MarkNotificationRead(_ context.Context, user, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MarkErr != nil {
		return s.MarkErr
	}
	for i := range s.notifications {
		n := &s.notifications[i]
		if n.ID == id && n.User == user && !n.Read {
			n.Read = true
			s.Marked = append(s.Marked, id)
			return nil
		}
	}
	return fmt.Errorf("no unread notification %s for %s", id, user)
}

// Notification returns a copy of a stored notification.
func (s *MockStore) Notification(id string) model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.ID == id {
			return n
		}
	}
	return model.Notification{}
}

func discardLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

package runner

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/cyverse-de/notification-doctor/model"
	"github.com/sirupsen/logrus"
)

// MockSubscription is a subscription that never delivers anything but records whether it was stopped.
type MockSubscription struct {
	mu        sync.Mutex
	snapshots chan *model.Snapshot
	stops     int
}

// Snapshots returns the snapshot channel.
func (m *MockSubscription) Snapshots() <-chan *model.Snapshot {
	return m.snapshots
}

// Err always returns nil.
func (m *MockSubscription) Err() error {
	return nil
}

// Stop closes the snapshot channel the first time it's called.
func (m *MockSubscription) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stops == 0 {
		close(m.snapshots)
	}
	m.stops++
}

// Stops returns the number of times Stop was called.
func (m *MockSubscription) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// MockStore is an in-memory notification store that counts the calls made to it.
type MockStore struct {
	mu            sync.Mutex
	notifications []model.Notification

	ListErr  error
	WatchErr error

	Calls        int
	Closed       bool
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
	s.Calls++
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

// ListUnreadNotifications lists the user's unread notifications in insertion order.
func (s *MockStore) ListUnreadNotifications(_ context.Context, user string) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	result := make([]model.Notification, 0)
	for _, n := range s.notifications {
		if n.User == user && !n.Read {
			result = append(result, n)
		}
	}
	return result, nil
}

// WatchUnreadNotifications returns a mock subscription.
func (s *MockStore) WatchUnreadNotifications(_ context.Context, _ string) (model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.WatchErr != nil {
		return nil, s.WatchErr
	}
	s.Subscription = &MockSubscription{snapshots: make(chan *model.Snapshot)}
	return s.Subscription, nil
}

// MarkNotificationRead marks one of the user's unread notifications as read.
func (s *MockStore) MarkNotificationRead(_ context.Context, user, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	for i := range s.notifications {
		n := &s.notifications[i]
		if n.ID == id && n.User == user && !n.Read {
			n.Read = true
			return nil
		}
	}
	return fmt.Errorf("no unread notification %s for %s", id, user)
}

// Close records the fact that it was called.
func (s *MockStore) Close() error {
	s.Closed = true
	return nil
}

// ReadFlags returns the read flag of every notification by ID.
func (s *MockStore) ReadFlags() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	flags := make(map[string]bool)
	for _, n := range s.notifications {
		flags[n.ID] = n.Read
	}
	return flags
}

func discardLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

package docstore

import (
	"context"
	"sync"

	"cloud.google.com/go/firestore"
	"github.com/cyverse-de/notification-doctor/model"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// snapshotSource produces successive snapshots of a query. Stop must not be called while Next is
// running.
type snapshotSource interface {
	Next() (*model.Snapshot, error)
	Stop()
}

// querySnapshots adapts a Firestore query snapshot iterator to a snapshotSource.
type querySnapshots struct {
	iter   *firestore.QuerySnapshotIterator
	fields Fields
}

func (q *querySnapshots) Next() (*model.Snapshot, error) {
	qs, err := q.iter.Next()
	if err != nil {
		return nil, err
	}

	snapshot := &model.Snapshot{
		Size:    qs.Size,
		Changes: make([]model.Change, 0, len(qs.Changes)),
	}
	for _, change := range qs.Changes {
		n, err := notificationFromData(change.Doc.Ref.ID, change.Doc.Data(), q.fields)
		if err != nil {
			return nil, err
		}
		snapshot.Changes = append(snapshot.Changes, model.Change{
			Kind:         changeKind(change.Kind),
			Notification: n,
			OldIndex:     change.OldIndex,
			NewIndex:     change.NewIndex,
		})
	}

	return snapshot, nil
}

func (q *querySnapshots) Stop() {
	q.iter.Stop()
}

// subscription delivers the snapshots produced by a snapshot source until it is stopped.
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

// Stop cancels the subscription and waits for it to shut down. Cancelling the context unblocks the
// pending Next call; the iterator itself is stopped by the delivery goroutine.
func (s *subscription) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		<-s.done
	})
}

func (s *subscription) run(ctx context.Context, source snapshotSource) {
	defer close(s.done)
	defer close(s.snapshots)
	defer source.Stop()

	for {
		snapshot, err := source.Next()
		if err != nil {
			if ctx.Err() == nil && err != iterator.Done && status.Code(errors.Cause(err)) != codes.Canceled {
				s.mu.Lock()
				s.err = classifyError(err)
				s.mu.Unlock()
			}
			return
		}

		select {
		case s.snapshots <- snapshot:
		case <-ctx.Done():
			return
		}
	}
}

package model

// Subscription is a standing subscription to a notification query. Snapshots are delivered on the
// channel returned by Snapshots until the subscription is stopped or fails; the channel is closed in
// either case, and Err reports the failure if there was one. Stop may be called more than once.
type Subscription interface {
	Snapshots() <-chan *Snapshot
	Err() error
	Stop()
}

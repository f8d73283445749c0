package model

// ChangeKind describes how a notification changed between two snapshots of a query.
type ChangeKind string

const (
	Added    ChangeKind = "added"
	Modified ChangeKind = "modified"
	Removed  ChangeKind = "removed"
)

// Change is a single incremental change delivered by a live subscription. OldIndex is -1 for added
// notifications and NewIndex is -1 for removed notifications.
type Change struct {
	Kind         ChangeKind
	Notification Notification
	OldIndex     int
	NewIndex     int
}

// Snapshot is the size of a subscribed query's result at one point in time along with the changes since
// the previous snapshot.
type Snapshot struct {
	Size    int
	Changes []Change
}

// NewSnapshot builds a snapshot from the previous and current results of a query.
func NewSnapshot(previous, current []Notification) *Snapshot {
	return &Snapshot{
		Size:    len(current),
		Changes: DiffNotifications(previous, current),
	}
}

// DiffNotifications lists the changes required to turn one ordered result set into another. Removals are
// listed first, in their old order, followed by additions and modifications in their new order.
func DiffNotifications(previous, current []Notification) []Change {
	changes := make([]Change, 0)

	currentIndex := make(map[string]int, len(current))
	for i := range current {
		currentIndex[current[i].ID] = i
	}
	previousIndex := make(map[string]int, len(previous))
	for i := range previous {
		previousIndex[previous[i].ID] = i
	}

	for i := range previous {
		if _, ok := currentIndex[previous[i].ID]; !ok {
			changes = append(changes, Change{Kind: Removed, Notification: previous[i], OldIndex: i, NewIndex: -1})
		}
	}

	for i := range current {
		oldIndex, ok := previousIndex[current[i].ID]
		switch {
		case !ok:
			changes = append(changes, Change{Kind: Added, Notification: current[i], OldIndex: -1, NewIndex: i})
		case !previous[oldIndex].Equal(&current[i]):
			changes = append(changes, Change{Kind: Modified, Notification: current[i], OldIndex: oldIndex, NewIndex: i})
		}
	}

	return changes
}

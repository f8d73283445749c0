package model

import "time"

// Notification represents a single notification as stored in the notification store.
type Notification struct {
	ID               string
	NotificationType string
	User             string
	Title            string
	Message          string
	Read             bool
	TimeCreated      time.Time
}

// Equal returns true if two notifications have the same contents.
func (n *Notification) Equal(other *Notification) bool {
	return n.ID == other.ID &&
		n.NotificationType == other.NotificationType &&
		n.User == other.User &&
		n.Title == other.Title &&
		n.Message == other.Message &&
		n.Read == other.Read &&
		n.TimeCreated.Equal(other.TimeCreated)
}

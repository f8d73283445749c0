package docstore

import "fmt"

// ReadRule returns the security rule that lets users read their own notifications.
func (s *Store) ReadRule() string {
	return fmt.Sprintf(`match /%s/{notificationId} {
  allow read: if request.auth.uid == resource.data.%s;
}`, s.collection, s.fields.Owner)
}

// UpdateRule returns the security rule that lets users update only the read flag of their own
// notifications.
func (s *Store) UpdateRule() string {
	return fmt.Sprintf(`match /%s/{notificationId} {
  allow update: if request.auth.uid == resource.data.%s
                && request.resource.data.diff(resource.data)
                  .affectedKeys().hasOnly(["%s"]);
}`, s.collection, s.fields.Owner, s.fields.Read)
}

// IndexSpec returns the composite index required by the ordered unread notification query.
func (s *Store) IndexSpec() string {
	return fmt.Sprintf("Collection: %s\nFields: %s (Asc), %s (Asc), %s (Desc)",
		s.collection, s.fields.Owner, s.fields.Read, s.fields.Timestamp)
}

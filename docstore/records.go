package docstore

import (
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/cyverse-de/notification-doctor/common"
	"github.com/cyverse-de/notification-doctor/model"
	"github.com/pkg/errors"
)

func stringField(data map[string]interface{}, name string) string {
	switch v := data[name].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// timestampField accepts native timestamps, RFC 3339 strings and milliseconds since the epoch, all of
// which have been written by notification producers at one time or another.
func timestampField(data map[string]interface{}, name string) (time.Time, error) {
	switch v := data[name].(type) {
	case time.Time:
		return v, nil
	case string:
		return common.ParseTimestamp(v)
	case int64:
		return time.UnixMilli(v), nil
	case float64:
		return time.UnixMilli(int64(v)), nil
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T in field `%s`", v, name)
	}
}

// notificationFromData builds a notification from the fields of a Firestore document.
func notificationFromData(id string, data map[string]interface{}, fields Fields) (model.Notification, error) {
	timeCreated, err := timestampField(data, fields.Timestamp)
	if err != nil {
		return model.Notification{}, errors.Wrap(err, fmt.Sprintf("unable to decode notification `%s`", id))
	}

	read, _ := data[fields.Read].(bool)

	return model.Notification{
		ID:               id,
		NotificationType: stringField(data, fields.Type),
		User:             stringField(data, fields.Owner),
		Title:            stringField(data, fields.Title),
		Message:          stringField(data, fields.Message),
		Read:             read,
		TimeCreated:      timeCreated,
	}, nil
}

// changeKind maps a Firestore document change kind to a model change kind.
func changeKind(kind firestore.DocumentChangeKind) model.ChangeKind {
	switch kind {
	case firestore.DocumentAdded:
		return model.Added
	case firestore.DocumentRemoved:
		return model.Removed
	default:
		return model.Modified
	}
}

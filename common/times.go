package common

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var millisPattern = regexp.MustCompile(`^\d+$`)

// FormatTimestamp formats a timestamp as the number of milliseconds since the epoch.
func FormatTimestamp(timestamp time.Time) string {
	return strconv.FormatInt(timestamp.UnixMilli(), 10)
}

// FixTimestamp converts a timestamp string to milliseconds since the epoch. Strings that already contain
// milliseconds since the epoch are returned unchanged, as are empty strings. Any other string must be in
// RFC 3339 format.
func FixTimestamp(timestamp string) (string, error) {
	if timestamp == "" || millisPattern.MatchString(timestamp) {
		return timestamp, nil
	}

	parsed, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return "", errors.Wrap(err, fmt.Sprintf("unable to parse timestamp `%s`", timestamp))
	}

	return FormatTimestamp(parsed), nil
}

// ParseTimestamp parses a timestamp in any format accepted by FixTimestamp. The zero time is returned for
// an empty string.
func ParseTimestamp(timestamp string) (time.Time, error) {
	fixed, err := FixTimestamp(timestamp)
	if err != nil {
		return time.Time{}, err
	}
	if fixed == "" {
		return time.Time{}, nil
	}

	millis, err := strconv.ParseInt(fixed, 10, 64)
	if err != nil {
		return time.Time{}, errors.Wrap(err, fmt.Sprintf("unable to parse timestamp `%s`", timestamp))
	}

	return time.UnixMilli(millis), nil
}

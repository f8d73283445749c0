package common

import (
	"time"

	"github.com/mcnijman/go-emailaddress"
)

// FirestoreSettings represents the settings that we require in order to connect to a Firestore database.
type FirestoreSettings struct {
	ProjectID       string
	CredentialsFile string
	Collection      string
}

// DatabaseSettings represents the settings that we require in order to use the notifications database.
type DatabaseSettings struct {
	URI           string
	ListenChannel string
}

// SessionSettings represents the settings used to find the signed-in user.
type SessionSettings struct {
	UserID      string
	Email       string
	Token       string
	TokenSecret string
}

// DiagnosticSettings controls the timing of a diagnostic run.
type DiagnosticSettings struct {
	ObservationWindow time.Duration
	CheckTimeout      time.Duration
}

// ValidateEmailAddress returns an error if the format of an email address is invalid.
func ValidateEmailAddress(emailAddress string) error {
	_, err := emailaddress.Parse(emailAddress)
	return err
}

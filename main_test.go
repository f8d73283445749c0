package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cyverse-de/notification-doctor/common"
	"github.com/cyverse-de/notification-doctor/session"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func writeConfig(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "notification-doctor.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	assert := assert.New(t)

	cfg, err := loadConfig(writeConfig(t, "session:\n  user_id: Xh2kd9QpL0\n"))
	require.NoError(t, err)

	assert.Equal("firestore", cfg.GetString("store.backend"))
	assert.Equal("notifications", cfg.GetString("firestore.collection"))
	assert.Equal("Xh2kd9QpL0", cfg.GetString("session.user_id"))

	settings := diagnosticSettings(cfg)
	assert.Equal(5*time.Second, settings.ObservationWindow)
	assert.Equal(20*time.Second, settings.CheckTimeout)
}

func TestLoadConfigOverrides(t *testing.T) {
	assert := assert.New(t)

	cfg, err := loadConfig(writeConfig(t, `
store:
  backend: postgres
diagnostics:
  observation_window: 30s
`))
	require.NoError(t, err)

	assert.Equal("postgres", cfg.GetString("store.backend"))
	assert.Equal(30*time.Second, diagnosticSettings(cfg).ObservationWindow)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("NOTIFICATION_DOCTOR_SESSION_TOKEN", "a.b.c")

	cfg, err := loadConfig(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", sessionSettings(cfg).Token)
}

func TestNewSessionSource(t *testing.T) {
	assert := assert.New(t)

	source := newSessionSource(&common.SessionSettings{UserID: "Xh2kd9QpL0"}, discardLogger())
	_, ok := source.(*session.StaticSource)
	assert.True(ok, "a static source was not used for a configured user ID")

	source = newSessionSource(&common.SessionSettings{UserID: "Xh2kd9QpL0", Token: "a.b.c"}, discardLogger())
	_, ok = source.(*session.TokenSource)
	assert.True(ok, "a token source was not used for a configured token")
}

func TestNewStoreUnsupportedBackend(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, "store:\n  backend: mongodb\n"))
	require.NoError(t, err)

	store, err := newStore(context.Background(), cfg, discardLogger())
	assert.Nil(t, store)
	assert.EqualError(t, err, "unsupported notification store backend: mongodb")
}

func TestInitLogging(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(logrus.DebugLevel, initLogging("debug").Logger.GetLevel())
	assert.Equal(logrus.InfoLevel, initLogging("chatty").Logger.GetLevel())
}

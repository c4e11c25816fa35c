package configuration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseOptions_ConnectionString(t *testing.T) {
	t.Parallel()

	opts := DatabaseOptions{
		Name:     "presence",
		Host:     "db.internal",
		Port:     "5433",
		User:     "svc",
		Password: "secret",
	}
	assert.Equal(
		t,
		"host=db.internal port=5433 user=svc dbname=presence password=secret sslmode=disable",
		opts.ConnectionString(),
	)
}

func TestBackupOptions_Validate(t *testing.T) {
	t.Parallel()

	valid := BackupOptions{Enabled: true, Interval: time.Hour, Keep: 7}
	require.NoError(t, valid.Validate())

	tooShort := BackupOptions{Interval: time.Second, Keep: 7}
	require.Error(t, tooShort.Validate())

	noKeep := BackupOptions{Interval: time.Hour, Keep: 0}
	require.Error(t, noKeep.Validate())
}

func TestConfiguration_LogrusLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"debug":   "debug",
		"unknown": "error",
	}
	for in := range cases {
		c := &Configuration{LogLevel: in}
		assert.NotPanics(t, func() { _ = c.LogrusLogLevel() })
	}
}

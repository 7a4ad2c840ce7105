package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerSafeBeforeInitialize(t *testing.T) {
	// Package init installs a no-op logger; helpers must not panic
	assert.NotPanics(t, func() {
		Infow("before init", "k", "v")
		Warnw("before init")
		Errorw("before init")
		Debugw("before init")
	})
}

func TestInitializeJSON(t *testing.T) {
	require.NoError(t, Initialize(true))
	assert.True(t, JSONOutput)
	assert.NotNil(t, Logger)
	Cleanup()
}

func TestInitializeConsole(t *testing.T) {
	require.NoError(t, Initialize(false))
	assert.False(t, JSONOutput)
	assert.NotNil(t, Logger)
	Cleanup()
}

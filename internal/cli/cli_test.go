package cli

import (
	"testing"

	"github.com/safar/furnishop/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	require.NoError(t, setupLogging(config.LogConfig{Level: "debug", Format: "text"}))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	require.NoError(t, setupLogging(config.LogConfig{Level: "warn", Format: "JSON"}))
	assert.Equal(t, log.WarnLevel, log.GetLevel())
	_, isJSON := log.StandardLogger().Formatter.(*log.JSONFormatter)
	assert.True(t, isJSON)

	assert.Error(t, setupLogging(config.LogConfig{Level: "loud", Format: "json"}))
	assert.Error(t, setupLogging(config.LogConfig{Level: "info", Format: "xml"}))
}

func TestMigrateArgs(t *testing.T) {
	assert.NoError(t, migrateCmd.Args(migrateCmd, []string{"up"}))
	assert.NoError(t, migrateCmd.Args(migrateCmd, []string{"down"}))
	assert.Error(t, migrateCmd.Args(migrateCmd, []string{"sideways"}))
	assert.Error(t, migrateCmd.Args(migrateCmd, nil))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.NotNil(t, serveCmd.Flags().Lookup("migrate"))
}

package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/budget-rules/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.Scenario)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Environment(t *testing.T) {
	// GIVEN: overrides in BUDGET_* variables
	t.Setenv("BUDGET_HTTP_PORT", "9090")
	t.Setenv("BUDGET_HTTP_WRITE_TIMEOUT", "5s")
	t.Setenv("BUDGET_HTTP_CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("BUDGET_LOG_LEVEL", "debug")
	t.Setenv("BUDGET_SCENARIO", "household")

	cfg, err := config.Load("")

	// THEN: every override is applied
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "household", cfg.Scenario)
}

func TestLoad_File(t *testing.T) {
	// GIVEN: a YAML file and an env var for the same key
	path := filepath.Join(t.TempDir(), "budget.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: 7070
  read_timeout: 5s
log:
  level: warn
  format: json
scenario: freelancer
`), 0o600))
	t.Setenv("BUDGET_LOG_LEVEL", "error")

	cfg, err := config.Load(path)

	// THEN: the file applies and the environment wins over it
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "freelancer", cfg.Scenario)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &config.Config{
		HTTP: config.HTTPConfig{Port: 70000, ReadTimeout: time.Second, WriteTimeout: 0, ShutdownTimeout: time.Second},
		Log:  config.LogConfig{Level: "loud", Format: "xml"},
	}

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http.port 70000")
	assert.Contains(t, err.Error(), "http.write_timeout")
	assert.Contains(t, err.Error(), "log.level 'loud'")
	assert.Contains(t, err.Error(), "log.format 'xml'")
	assert.NotContains(t, err.Error(), "http.read_timeout")
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := config.LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "budget_id", 3)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"budget_id":3`)
}

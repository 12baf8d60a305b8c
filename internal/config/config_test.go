package config

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every key so a developer's shell cannot leak into the
// defaults test. An empty value would not do: envconfig treats a set-but-empty
// variable as present and skips the default. t.Setenv registers the restore.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "ENV", "DB_PATH", "JWT_SECRET", "SUBMITTER", "SUBMIT_DELAY",
		"SUBMIT_BACKEND_URL", "DIALOG_TTL", "ACCOUNTS_ENABLED", "CORS_ORIGINS",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	c, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, EnvDevelopment, c.Env)
	assert.Equal(t, ":memory:", c.DBPath)
	assert.Equal(t, SubmitterSimulated, c.Submitter)
	assert.Equal(t, 500*time.Millisecond, c.SubmitDelay)
	assert.Equal(t, 30*time.Minute, c.DialogTTL)
	assert.False(t, c.AccountsEnabled)
	assert.Equal(t, []string{"*"}, c.CORSOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("SUBMITTER", "http")
	t.Setenv("SUBMIT_BACKEND_URL", "http://backend:8080")
	t.Setenv("SUBMIT_DELAY", "2s")
	t.Setenv("ACCOUNTS_ENABLED", "true")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,https://market.example.edu")

	c, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Port)
	assert.Equal(t, SubmitterHTTP, c.Submitter)
	assert.Equal(t, 2*time.Second, c.SubmitDelay)
	assert.True(t, c.AccountsEnabled)
	assert.Equal(t, []string{"http://localhost:3000", "https://market.example.edu"}, c.CORSOrigins)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port not a number", map[string]string{"PORT": "eighty"}},
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"unknown env", map[string]string{"ENV": "staging"}},
		{"unknown submitter", map[string]string{"SUBMITTER": "carrier-pigeon"}},
		{"http without url", map[string]string{"SUBMITTER": "http"}},
		{"short jwt secret", map[string]string{"JWT_SECRET": "tooshort"}},
		{"zero dialog ttl", map[string]string{"DIALOG_TTL": "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestNewLogger_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(EnvProduction, &buf).Info("hello", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "v", line["k"])
}

func TestNewLogger_DevelopmentIncludesDebug(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(EnvDevelopment, &buf).Debug("details")
	assert.Contains(t, buf.String(), "details")
}

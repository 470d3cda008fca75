package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `
log:
  level: debug
client:
  api_url: http://api.example.com
  request_timeout: 5s
llm:
  provider: openai
  base_url: https://api.example.com
  api_key: dummy
  model: gpt-4o
server:
  host: 127.0.0.1
  port: "8080"
auth:
  jwt_secret: s3cret
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	require.NoError(t, err)
	_, err = tmp.WriteString(body)
	require.NoError(t, err)
	require.NoError(t, tmp.Close())
	return tmp.Name()
}

// TestLoad_File verifies that Load unmarshals the file named by CONFIG_PATH and keeps defaults.
func TestLoad_File(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "http://api.example.com", cfg.Client.APIURL)
	require.Equal(t, 5*time.Second, cfg.Client.RequestTimeout)
	require.Equal(t, time.Second, cfg.Client.OfflineDelay)
	require.Equal(t, "gpt-4o", cfg.LLM.Model)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 10, cfg.Server.HistoryWindow)
	require.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))
	t.Setenv("FRIENDBOT_LLM_API_KEY", "from-env")
	t.Setenv("FRIENDBOT_CLIENT_OFFLINE_DELAY", "250ms")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.LLM.APIKey)
	require.Equal(t, 250*time.Millisecond, cfg.Client.OfflineDelay)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", t.TempDir()+"/nope.yaml")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5000", cfg.Client.APIURL)
	require.Equal(t, 15*time.Second, cfg.Client.RequestTimeout)
}

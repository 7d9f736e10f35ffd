package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("CONFIG_PATH", path)
}

func TestLoadConfig_Defaults(t *testing.T) {
	writeConfig(t, `
http:
  addr: ":10000"
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, ":10000", cfg.HTTP.Addr)
	require.Equal(t, "relay-service", cfg.Logging.Service)
	require.Equal(t, "dev", cfg.Logging.Env)
	require.Equal(t, "std", cfg.Logging.Backend)
	require.Equal(t, 15*time.Second, cfg.PingInterval())
	require.Empty(t, cfg.Postgres.DSN)
}

func TestLoadConfig_RequiresAddr(t *testing.T) {
	writeConfig(t, `
logging:
  env: "prod"
`)

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_FullSections(t *testing.T) {
	writeConfig(t, `
http:
  addr: ":8080"
  corsOrigins:
    - "https://vk.com"
postgres:
  dsn: "postgres://u:p@localhost:5432/chat"
  maxConns: 5
ws:
  pingInterval: "20s"
  sendBuffer: 128
  maxMessageBytes: 32768
logging:
  env: "prod"
  backend: "zap"
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, []string{"https://vk.com"}, cfg.HTTP.CORSOrigins)
	require.Equal(t, int32(5), cfg.Postgres.MaxConns)
	require.Equal(t, 20*time.Second, cfg.PingInterval())
	require.Equal(t, 128, cfg.WS.SendBuffer)
	require.Equal(t, "zap", cfg.Logging.Backend)
}

func TestPingInterval_BadValueFallsBack(t *testing.T) {
	cfg := Config{WS: WS{PingInterval: "nonsense"}}
	require.Equal(t, 15*time.Second, cfg.PingInterval())
}

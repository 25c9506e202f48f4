package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3001, c.App.HTTP.Port)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, 24*60, c.JWT.AccessTokenTTLMin)
	assert.Equal(t, 10, c.Auth.BcryptCost)
	assert.InDelta(t, 0.2, c.Generation.OverloadRate, 1e-9)
	assert.Equal(t, 5, c.Generation.DefaultLimit)
	assert.Equal(t, 10, c.Generation.MaxImageMB)
	assert.True(t, c.InsecureSecret())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
app:
  http:
    port: 8081
jwt:
  secret: from-file
generation:
  overloadRate: 0.05
db:
  driver: postgres
  dsn: postgres://localhost/studio
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, c.App.HTTP.Port)
	assert.Equal(t, "from-file", c.JWT.Secret)
	assert.InDelta(t, 0.05, c.Generation.OverloadRate, 1e-9)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.False(t, c.InsecureSecret())
	// 未覆盖的键仍取默认值
	assert.Equal(t, 5, c.Generation.DefaultLimit)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PORT", "9090")

	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.Equal(t, 9090, c.App.HTTP.Port)
}

func TestLoad_EnvOnlyKeysWithoutFile(t *testing.T) {
	t.Setenv("APP_REDIS_ADDR", "redis:6379")
	t.Setenv("APP_REDIS_PASSWORD", "pw")
	t.Setenv("APP_REDIS_DB", "2")
	t.Setenv("APP_DB_USERNAME", "studio")
	t.Setenv("APP_DB_PASSWORD", "dbpw")
	t.Setenv("APP_JWT_ISSUER", "studio-api")
	t.Setenv("APP_LOG_FILE_ENABLE", "true")
	t.Setenv("APP_LOG_FILE_COMPRESS", "true")

	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "redis:6379", c.Redis.Addr)
	assert.Equal(t, "pw", c.Redis.Password)
	assert.Equal(t, 2, c.Redis.DB)
	assert.Equal(t, "studio", c.DB.Username)
	assert.Equal(t, "dbpw", c.DB.Password)
	assert.Equal(t, "studio-api", c.JWT.Issuer)
	assert.True(t, c.Log.File.Enable)
	assert.True(t, c.Log.File.Compress)
}

func TestLoad_EveryConfigKeyHasADefault(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	for _, key := range []string{
		"app.name", "app.env", "app.http.host", "app.http.port", "app.cors.allowOrigins",
		"log.level", "log.json", "log.file.enable", "log.file.compress",
		"jwt.secret", "jwt.issuer", "jwt.accessTokenTTLMin",
		"db.driver", "db.dsn", "db.username", "db.password", "db.autoMigrate",
		"redis.addr", "redis.password", "redis.db",
		"auth.bcryptCost", "auth.loginMaxAttempts", "auth.loginWindowSec",
		"generation.overloadRate", "generation.maxImageMB", "generation.defaultLimit", "generation.maxLimit",
		"limits.rps", "limits.perIPRPS", "limits.concurrency", "limits.maxBodyMB", "limits.timeoutSec",
	} {
		assert.True(t, v.IsSet(key), key)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

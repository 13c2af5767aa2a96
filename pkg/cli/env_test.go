package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	t.Setenv("IMGFUSE_LOG_LEVEL", "debug")
	t.Setenv("IMGFUSE_OPTIONS", "/etc/imgfuse.json")
	t.Setenv("IMGFUSE_HTTP_TIMEOUT", "5s")
	t.Setenv("IMGFUSE_S3_REGION", "eu-west-1")
	t.Setenv("IMGFUSE_S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("IMGFUSE_S3_ACCESS_KEY_ID", "minio")
	t.Setenv("IMGFUSE_S3_SECRET_ACCESS_KEY", "minio123")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, env.LogLevel)
	assert.Equal(t, "/etc/imgfuse.json", env.OptionsFile)
	assert.Equal(t, 5*time.Second, env.HTTPTimeout)
	assert.Equal(t, "eu-west-1", env.S3.Region)
	assert.Equal(t, "http://localhost:9000", env.S3.Endpoint)
	assert.Equal(t, "minio", env.S3.AccessKeyID)
	assert.Equal(t, "minio123", env.S3.SecretAccessKey)
}

func TestLoadEnvInvalid(t *testing.T) {
	t.Setenv("IMGFUSE_LOG_LEVEL", "chatty")
	_, err := LoadEnv()
	assert.Error(t, err)

	t.Setenv("IMGFUSE_LOG_LEVEL", "")
	t.Setenv("IMGFUSE_HTTP_TIMEOUT", "soon")
	_, err = LoadEnv()
	assert.ErrorContains(t, err, "IMGFUSE_HTTP_TIMEOUT")
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nIMGFUSE_TEST_A=from-file\nexport IMGFUSE_TEST_B=\"quoted value\"\n"), 0o644))
	t.Setenv("IMGFUSE_TEST_A", "already-set")
	t.Setenv("IMGFUSE_TEST_B", "")
	os.Unsetenv("IMGFUSE_TEST_B")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "already-set", os.Getenv("IMGFUSE_TEST_A"))
	assert.Equal(t, "quoted value", os.Getenv("IMGFUSE_TEST_B"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

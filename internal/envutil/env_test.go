package envutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteDotEnvRefusesOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, WriteDotEnv(path, map[string]string{"API_BASE_URL": "http://api"}, false))
	require.Error(t, WriteDotEnv(path, map[string]string{"API_BASE_URL": "http://other"}, false))
	require.NoError(t, WriteDotEnv(path, map[string]string{"API_BASE_URL": "http://other"}, true))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "http://other")
}

func TestLoadDotEnvSkipsMissingFilesAndKeepsProcessValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("EMS_TEST_A=from-file\nEMS_TEST_B=from-file\n"), 0o600))
	t.Setenv("EMS_TEST_A", "from-process")

	n, err := LoadDotEnv(filepath.Join(dir, "missing.env"), path)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, "from-process", os.Getenv("EMS_TEST_A"))
	require.Equal(t, "from-file", os.Getenv("EMS_TEST_B"))
	_ = os.Unsetenv("EMS_TEST_B")
}

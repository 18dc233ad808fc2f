package emscli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillip-england/employeems/internal/apiclient"
	"github.com/phillip-england/employeems/internal/apistub"
	"github.com/phillip-england/employeems/internal/spreadsheet"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSetupWritesEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	out, err := run(t, "setup", "--env-file", path, "--api-base-url", "http://api.internal:9000/")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	values, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "http://api.internal:9000", values["API_BASE_URL"])
	assert.Equal(t, "memory", values["DRAFT_STORE"])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = run(t, "setup", "--env-file", path)
	require.Error(t, err)
	_, err = run(t, "setup", "--env-file", path, "--force")
	require.NoError(t, err)
}

func TestUsageErrors(t *testing.T) {
	_, err := run(t)
	assert.ErrorIs(t, err, ErrUsage)

	_, err = run(t, "run")
	assert.ErrorIs(t, err, ErrUsage)

	_, err = run(t, "setup", "--no-such-flag")
	assert.ErrorIs(t, err, ErrUsage)

	_, err = run(t, "export", "--out", "x.xlsx")
	assert.ErrorIs(t, err, ErrUsage)
}

func stubClient(t *testing.T) *apiclient.Client {
	t.Helper()
	logger, _ := test.NewNullLogger()
	stub, err := apistub.New(apistub.Options{Logger: logger})
	require.NoError(t, err)
	require.NoError(t, stub.Seed("admin@example.com", "admin12345"))
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL)
}

func TestExportWorkbookAndArchive(t *testing.T) {
	client := stubClient(t)
	dir := t.TempDir()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	xlsx := filepath.Join(dir, "out.xlsx")
	n, err := runExport(context.Background(), client, exportOptions{email: "admin@example.com", password: "admin12345", out: xlsx}, now)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	f, err := os.Open(xlsx)
	require.NoError(t, err)
	rows, err := spreadsheet.ReadEmployees(f, xlsx)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	assert.Len(t, rows, 5)

	archive := filepath.Join(dir, "out.json.xz")
	n, err = runExport(context.Background(), client, exportOptions{email: "admin@example.com", password: "admin12345", out: archive, query: "engineer"}, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	f, err = os.Open(archive)
	require.NoError(t, err)
	defer f.Close()
	snapshot, err := spreadsheet.ReadArchive(f)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.Count)
	assert.True(t, snapshot.ExportedAt.Equal(now))
}

func TestExportRejectsBadInput(t *testing.T) {
	client := stubClient(t)
	dir := t.TempDir()

	_, err := runExport(context.Background(), client, exportOptions{email: "admin@example.com", password: "nope12345", out: filepath.Join(dir, "a.xlsx")}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email or password")
	assert.NoFileExists(t, filepath.Join(dir, "a.xlsx"))

	_, err = runExport(context.Background(), client, exportOptions{email: "a", password: "b", out: filepath.Join(dir, "a.csv")}, time.Now())
	assert.ErrorIs(t, err, ErrUsage)
}

package e2e_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/prfix/prfix/internal/application"
	"github.com/prfix/prfix/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build binary before running tests
	dir, err := os.MkdirTemp("", "prfix-e2e")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	binaryPath = filepath.Join(dir, "prfix")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../..")
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

// workTree copies the sample working tree so runs never touch testdata.
func workTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.CopyFS(dir, os.DirFS("../../testdata/sample")))
	return dir
}

func run(t *testing.T, args ...string) (string, int) {
	t.Helper()
	fixtures, err := filepath.Abs("../../testdata/gh")
	require.NoError(t, err)

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "PRFIX_MOCK=1", "PRFIX_MOCK_DIR="+fixtures)
	out, err := cmd.Output()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
	}
	return string(out), exitCode
}

func TestE2E_Version(t *testing.T) {
	out, code := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "prfix")
}

func TestE2E_AnalyzeJSON(t *testing.T) {
	root := workTree(t)
	out, code := run(t, "analyze", "--path", root, "-n", "42", "--json")
	require.Equal(t, 0, code)

	var res application.AnalyzeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 8, res.Analysis.TotalComments)
	assert.Equal(t, 1, res.Analysis.SkippedComments)
	require.NotNil(t, res.Plan)
	assert.Equal(t, 5, res.Plan.TotalItems)
}

func TestE2E_AnalyzeThenApply(t *testing.T) {
	root := workTree(t)
	_, code := run(t, "analyze", "--path", root, "-n", "42")
	require.Equal(t, 0, code)

	out, code := run(t, "apply", "--path", root, "--json")
	require.Equal(t, 0, code, "per-file failures do not fail the run")

	var report domain.ApplyReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 4, report.Succeeded)
	assert.Equal(t, 1, report.Failed)

	css, err := os.ReadFile(filepath.Join(root, "styles", "main.css"))
	require.NoError(t, err)
	assert.Contains(t, string(css), "opacity: 0.9")

	out, code = run(t, "history", "--path", root, "--json")
	require.Equal(t, 0, code)
	var entries []domain.RunEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 2)
}

func TestE2E_ApplyWithoutPlanFails(t *testing.T) {
	_, code := run(t, "apply", "--path", t.TempDir())
	assert.Equal(t, 1, code)
}

func TestE2E_AnalyzeRequiresPRNumber(t *testing.T) {
	_, code := run(t, "analyze", "--path", t.TempDir())
	assert.Equal(t, 1, code)
}

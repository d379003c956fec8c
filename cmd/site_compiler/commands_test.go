package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/site-compiler/internal/artifacts"
	"github.com/jonathan/site-compiler/internal/pipeline"
)

func shopServer(t *testing.T) *httptest.Server {
	t.Helper()
	product := func(name, price string) string {
		return fmt.Sprintf(`<html><head><title>%s</title></head><body><h1>%s</h1><span>%s</span>
<p>Sturdy steel construction for the workshop.</p></body></html>`, name, name, price)
	}
	pages := map[string]string{
		"/": `<html><head><title>Bench Supply</title></head><body>
<nav><a href="/">Home</a><a href="/shop">Shop</a></nav>
<h1>Bench Supply</h1><p>Workshop gear.</p></body></html>`,
		"/shop":           `<html><body><a href="/products/vise">Vise</a><a href="/products/clamp">Clamp</a></body></html>`,
		"/products/vise":  product("Bench Vise", "$89.00"),
		"/products/clamp": product("Bar Clamp", "$24.50"),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCompileCommand_EndToEnd(t *testing.T) {
	srv := shopServer(t)
	out := t.TempDir()

	stdout, _, err := execute(t, "compile", srv.URL, "--build", "--out", out, "--delay-ms", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Step 1/4")
	assert.Contains(t, stdout, "Site key: 127-0-0-1")

	dir := artifacts.Open(out, "127-0-0-1")
	for _, name := range []string{
		artifacts.CandidatesFile, artifacts.SnapshotFile, artifacts.GraphFile,
		artifacts.NormalizedFile, artifacts.ReportFile, artifacts.SchemaFile, artifacts.ExportFile,
	} {
		assert.True(t, dir.Exists(name), name)
	}

	graph, err := dir.LoadCatalog()
	require.NoError(t, err)
	assert.Equal(t, 2, graph.Len())

	stdout, _, err = execute(t, "validate", "127-0-0-1", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "is valid")

	stdout, _, err = execute(t, "status", "127-0-0-1", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Completed: discover, extract, catalog, assemble, build")
	assert.Contains(t, stdout, "Blocked: none")
}

func TestBuildCommand_MissingArtifact(t *testing.T) {
	out := t.TempDir()

	_, _, err := execute(t, "build", "unknown-site", "--out", out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, artifacts.ErrArtifactMissing))

	var stderr bytes.Buffer
	assert.Equal(t, 1, reportError(&stderr, err))
	assert.Contains(t, stderr.String(), "[BUILD] ERROR:")
	assert.Contains(t, stderr.String(), artifacts.NormalizedFile)
}

func TestStatusCommand_EmptySite(t *testing.T) {
	out := t.TempDir()

	stdout, _, err := execute(t, "status", "shop.example.com", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Site: shop-example-com")
	assert.Contains(t, stdout, "Completed: none")
	assert.Contains(t, stdout, "Available: discover")
	assert.Contains(t, stdout, "extract (needs candidates.json)")
}

func TestConfigFile_FlagsWin(t *testing.T) {
	fileOut := t.TempDir()
	flagOut := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("out_dir: %s\nconcurrency: 2\n", fileOut)), 0o644))

	stdout, _, err := execute(t, "status", "a-test", "--config", cfgPath, "--out", flagOut)
	require.NoError(t, err)
	assert.Contains(t, stdout, filepath.Join(flagOut, "a-test"))
}

func TestConfigFile_Invalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "site.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"concurrency": 99}`), 0o644))

	_, _, err := execute(t, "status", "a-test", "--config", cfgPath, "--out", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config error")
}

func TestReportError_PlainError(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, 1, reportError(&stderr, errors.New("boom")))
	assert.Equal(t, "Error: boom\n", stderr.String())

	stderr.Reset()
	reportError(&stderr, &pipeline.StageError{Stage: "extract", Err: pipeline.ErrNoProducts})
	assert.Equal(t, "[EXTRACT] ERROR: no products extracted\n", stderr.String())
}

func TestBinary_MissingURL(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "compile")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "accepts 1 arg(s), received 0")
}

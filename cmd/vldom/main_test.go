package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vldom/internal/errors"
)

const testConfig = `name: demo
location: bolt
log:
  level: error
state:
  path: state/history.db
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vldom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "unused.yaml", "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, err = run(t, "unused.yaml", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Commit:     none")
	assert.Contains(t, out, "Go version:")
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "vldom.yaml"), "routes")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "E141"))
}

func TestRoutes(t *testing.T) {
	out, err := run(t, writeConfig(t), "routes")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"/", "Shell"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"/about", "About"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"/:id", "User"}, strings.Fields(lines[3]))
	assert.True(t, strings.HasPrefix(lines[3], "    /:id"))
}

func TestResolve(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "resolve", "/users/2")
	require.NoError(t, err)
	assert.Equal(t, "/ Shell\n  /users Users\n    /:id User {id=2}\n", out)

	_, err = run(t, cfg, "resolve", "/nope")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "E200"))

	_, err = run(t, cfg, "resolve", "/../secret")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "E205"))
}

func TestNavPersistsHistory(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "nav", "go", "/about")
	require.NoError(t, err)
	assert.Contains(t, out, "path: /about")
	assert.Contains(t, out, "/about About")

	out, err = run(t, cfg, "nav", "go", "/users/1")
	require.NoError(t, err)
	assert.Contains(t, out, "path: /users/1")
	assert.Contains(t, out, "Ada")

	out, err = run(t, cfg, "nav", "go", "../2")
	require.NoError(t, err)
	assert.Contains(t, out, "path: /users/2")
	assert.Contains(t, out, "{id=2}")

	out, err = run(t, cfg, "nav", "back")
	require.NoError(t, err)
	assert.Contains(t, out, "path: /users/1")

	out, err = run(t, cfg, "nav", "history")
	require.NoError(t, err)
	assert.Equal(t, "     1 /about\n*    2 /users/1\n     3 /users/2\n", out)

	out, err = run(t, cfg, "nav", "forward")
	require.NoError(t, err)
	assert.Contains(t, out, "path: /users/2")

	out, err = run(t, cfg, "nav", "forward")
	require.NoError(t, err)
	assert.Contains(t, out, "no forward entry")

	_, err = run(t, cfg, "nav", "clear")
	require.NoError(t, err)
	out, err = run(t, cfg, "nav", "history")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestNavReportsErrors(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "nav", "go", "/users/42")
	require.NoError(t, err)
	assert.Contains(t, out, "error: E201")

	out, err = run(t, cfg, "nav", "go", "/missing")
	require.NoError(t, err)
	assert.Contains(t, out, "NotFound")

	_, err = run(t, cfg, "nav", "go", "/../x")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "E205"))
}

func TestExportDryRun(t *testing.T) {
	out, err := run(t, writeConfig(t), "export", "--dry-run", "--prefix", "site", "/about", "/users/1")
	require.NoError(t, err)
	assert.Contains(t, out, "site/about/index.html")
	assert.Contains(t, out, "site/users/1/index.html")
	assert.Contains(t, out, "2 pages rendered (dry run)")
}

func TestExportNeedsBucket(t *testing.T) {
	_, err := run(t, writeConfig(t), "export")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "E145"))
}

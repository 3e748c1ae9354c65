package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// tada runs the CLI against dir with the mono theme so output is plain ASCII.
func tada(t *testing.T, dir string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	args = append(args,
		"--config-dir", filepath.Join(dir, "config"),
		"--data-dir", filepath.Join(dir, "data"),
		"--theme", "mono",
	)
	code := Run(args, Options{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &errOut})
	t.Cleanup(func() {
		ui.SetOutput(os.Stdout, os.Stderr)
		ui.SetTheme("classic")
	})
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func exported(t *testing.T, dir string, extra ...string) model.Collection {
	t.Helper()
	r := tada(t, dir, append([]string{"export"}, extra...)...)
	require.Equal(t, exitOK, r.code, r.stderr)
	var c model.Collection
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &c))
	return c
}

func TestAddListDoneRemove(t *testing.T) {
	dir := t.TempDir()

	r := tada(t, dir, "add", "Buy milk")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "added #1")

	r = tada(t, dir, "add", "Walk", "the", "dog")
	require.Equal(t, exitOK, r.code, r.stderr)

	r = tada(t, dir, "ls", "--plain")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, " 1. [ ] Buy milk")
	assert.Contains(t, r.stdout, " 2. [ ] Walk the dog")

	r = tada(t, dir, "done", "1")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "done")

	r = tada(t, dir, "ls", "--plain")
	assert.Contains(t, r.stdout, " 1. [x] Buy milk")
	assert.Contains(t, r.stdout, "50%")

	r = tada(t, dir, "done", "1")
	assert.Contains(t, r.stdout, "reopened")

	r = tada(t, dir, "rm", "2")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "removed")

	items := exported(t, dir)
	require.Len(t, items, 1)
	assert.Equal(t, "Buy milk", items[0].Text)
	assert.False(t, items[0].Completed)
}

func TestEdit(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, exitOK, tada(t, dir, "add", "Buy milk").code)

	r := tada(t, dir, "edit", "1", "Buy", "oat", "milk")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Equal(t, "Buy oat milk", exported(t, dir)[0].Text)

	r = tada(t, dir, "edit", "1", "   ")
	assert.Equal(t, exitUsage, r.code)
	assert.Contains(t, r.stderr, "Todo text cannot be empty")
	assert.Equal(t, "Buy oat milk", exported(t, dir)[0].Text)
}

func TestRefByID(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, exitOK, tada(t, dir, "add", "a").code)
	require.Equal(t, exitOK, tada(t, dir, "add", "b").code)
	id := exported(t, dir)[1].ID

	r := tada(t, dir, "done", "--id", strconv.FormatInt(id, 10))
	require.Equal(t, exitOK, r.code, r.stderr)
	items := exported(t, dir)
	assert.False(t, items[0].Completed)
	assert.True(t, items[1].Completed)

	r = tada(t, dir, "rm", "--id", "42")
	assert.Equal(t, exitUsage, r.code)
	assert.Contains(t, r.stderr, "no item with id 42")
}

func TestUsageErrors(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, exitOK, tada(t, dir, "add", "only one").code)

	for _, tc := range []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "missing command"},
		{"unknown command", []string{"frobnicate"}, `unknown command "frobnicate"`},
		{"add without text", []string{"add"}, "usage: tada add"},
		{"add blank text", []string{"add", "  "}, "Todo text is required"},
		{"done not a number", []string{"done", "abc"}, "not a number: abc"},
		{"done out of range", []string{"done", "5"}, "index out of range: have 1, got 5"},
		{"rm zero", []string{"rm", "0"}, "index out of range"},
		{"unknown flag", []string{"ls", "--nope"}, "unknown flag"},
		{"bad backend", []string{"ls", "--plain", "--backend", "floppy"}, "invalid config"},
		{"bad format", []string{"export", "--format", "csv"}, "unknown export format"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := tada(t, dir, tc.args...)
			assert.Equal(t, exitUsage, r.code)
			assert.Contains(t, r.stderr, tc.want)
		})
	}

	assert.Len(t, exported(t, dir), 1)
}

func TestIndexHint(t *testing.T) {
	r := tada(t, t.TempDir(), "rm", "3")
	assert.Equal(t, exitUsage, r.code)
	assert.Contains(t, r.stderr, "Hint: run `tada ls`")
}

func TestRuntimeError(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, exitOK, tada(t, dir, "add", "x").code)

	r := tada(t, dir, "export", "-o", filepath.Join(dir, "missing", "out.json"))
	assert.Equal(t, exitRuntime, r.code)
	assert.Contains(t, r.stderr, "create export file")
}

func TestUnusableDataDirRunsWithoutStorage(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0o600))

	r := tada(t, dir, "add", "x")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stderr, "storage unavailable")

	r = tada(t, dir, "info")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "unavailable: open file storage")

	assert.Empty(t, exported(t, dir))
	b, err := os.ReadFile(blocker)
	require.NoError(t, err)
	assert.Equal(t, "not a dir", string(b))
}

func TestCorruptStorageFileIsLeftAlone(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(data, 0o755))
	path := filepath.Join(data, "storage.json")
	corrupt := []byte(`{truncated`)
	require.NoError(t, os.WriteFile(path, corrupt, 0o600))

	r := tada(t, dir, "ls", "--plain")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "no items")
	assert.Contains(t, r.stderr, "storage unavailable")

	r = tada(t, dir, "add", "x")
	require.Equal(t, exitOK, r.code, r.stderr)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, corrupt, b)
}

func TestReadOnlyCommandsKeepUnreadableData(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(data, 0o755))
	path := filepath.Join(data, "storage.json")
	corrupt := []byte(`{"tada-todos": "[{\"id\": \"nope\"}]"}`)
	require.NoError(t, os.WriteFile(path, corrupt, 0o600))

	for _, args := range [][]string{{"ls", "--plain"}, {"info"}, {"export"}} {
		r := tada(t, dir, args...)
		require.Equal(t, exitOK, r.code, r.stderr)
	}
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, corrupt, b)
}

func TestBackendsPersist(t *testing.T) {
	for _, backend := range []string{"file", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			require.Equal(t, exitOK, tada(t, dir, "add", "kept", "--backend", backend).code)
			items := exported(t, dir, "--backend", backend)
			require.Len(t, items, 1)
			assert.Equal(t, "kept", items[0].Text)
		})
	}
}

func TestEphemeralBackends(t *testing.T) {
	for _, backend := range []string{"memory", "none"} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			require.Equal(t, exitOK, tada(t, dir, "add", "gone", "--backend", backend).code)
			assert.Empty(t, exported(t, dir, "--backend", backend))
		})
	}
}

func TestGroupedListKeepsIndexes(t *testing.T) {
	dir := t.TempDir()
	for _, s := range []string{"a", "b", "c"} {
		require.Equal(t, exitOK, tada(t, dir, "add", s).code)
	}
	require.Equal(t, exitOK, tada(t, dir, "done", "2").code)

	r := tada(t, dir, "ls", "--group")
	require.Equal(t, exitOK, r.code, r.stderr)
	pending := strings.Index(r.stdout, "Pending")
	done := strings.Index(r.stdout, "Done")
	require.True(t, pending >= 0 && done > pending, r.stdout)
	assert.Contains(t, r.stdout[pending:done], " 3. [ ] c")
	assert.Contains(t, r.stdout[done:], " 2. [x] b")
}

func TestListLinesEmpty(t *testing.T) {
	ui.SetTheme("mono")
	t.Cleanup(func() { ui.SetTheme("classic") })

	lines := listLines(nil, false)
	assert.Contains(t, lines, "no items")
	lines = listLines(nil, true)
	assert.Contains(t, lines, "(none)")
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, exitOK, tada(t, dir, "add", "Buy milk").code)

	path := filepath.Join(dir, "todos.yaml")
	r := tada(t, dir, "export", "--format", "yml", "-o", path)
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "exported 1 items")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Todos model.Collection `yaml:"todos"`
	}
	require.NoError(t, yaml.Unmarshal(b, &doc))
	require.Len(t, doc.Todos, 1)
	assert.Equal(t, "Buy milk", doc.Todos[0].Text)
}

func TestInfo(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, exitOK, tada(t, dir, "add", "x").code)

	r := tada(t, dir, "info", "--backend", "sqlite")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "sqlite")
	assert.Contains(t, r.stdout, "tada-todos")
	assert.Contains(t, r.stdout, "tada.db")
	assert.Contains(t, r.stdout, "(none, using defaults)")

	r = tada(t, dir, "info", "--backend", "none")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "no storage, changes are not kept")
}

func TestInitWritesConfigOnce(t *testing.T) {
	dir := t.TempDir()

	r := tada(t, dir, "init")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "wrote")
	assert.FileExists(t, filepath.Join(dir, "config", "config.yaml"))
	assert.DirExists(t, filepath.Join(dir, "data"))

	r = tada(t, dir, "init")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "config already exists")

	r = tada(t, dir, "info")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "config.yaml")
}

func TestVersion(t *testing.T) {
	r := tada(t, t.TempDir(), "version")
	assert.Equal(t, exitOK, r.code)
	assert.Equal(t, "tada dev\n", r.stdout)
}

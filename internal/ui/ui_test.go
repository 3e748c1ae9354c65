package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░   0%", ProgressBar(0, 0, 10))
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "██████████ 100%", ProgressBar(3, 3, 10))
	assert.Equal(t, "█████ 100%", ProgressBar(2, 2, 1))
}

func TestPanelStringAlignsWideRunes(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })

	got := PanelString([]string{"☐ a", "longer line", "\033[32m✔\033[0m x"})
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "+-------------+", lines[0])
	for _, ln := range lines {
		assert.Equal(t, VisibleWidth(lines[0]), VisibleWidth(ln), ln)
	}
}

func TestColorDisabledOffTerminal(t *testing.T) {
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	t.Cleanup(func() { SetOutput(os.Stdout, os.Stderr) })
	SetColorForcing(false, false)

	OK("added")
	Fail("nope")
	Hint("try again")
	assert.Equal(t, "✔ added\n", out.String())
	assert.Equal(t, "✖ nope\ntry again\n", errOut.String())
	assert.False(t, IsTerminal(&out))
}

func TestColorForced(t *testing.T) {
	var out bytes.Buffer
	SetOutput(&out, nil)
	SetColorForcing(true, false)
	t.Cleanup(func() {
		SetColorForcing(false, false)
		SetOutput(os.Stdout, os.Stderr)
	})

	assert.Equal(t, "\033[32mx\033[0m", C(fgGreen, "x"))
	assert.Equal(t, "x", C("", "x"))

	SetColorForcing(true, true)
	assert.Equal(t, "x", C(fgGreen, "x"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
}

func TestSetThemeFallsBack(t *testing.T) {
	SetTheme("neon")
	assert.Equal(t, "neon", Current().Name)
	SetTheme("does-not-exist")
	assert.Equal(t, "classic", Current().Name)
}

func TestThemesAreSelectable(t *testing.T) {
	t.Cleanup(func() { SetTheme("classic") })
	for _, name := range Themes {
		SetTheme(name)
		assert.Equal(t, name, Current().Name)
	}
}

package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFileStatus(t *testing.T) {
	assert.Empty(t, FormatFileStatus(&FileStatus{Path: ".applock"}))

	out := FormatFileStatus(&FileStatus{IsRepo: true, Path: ".applock", Tracked: true})
	assert.Contains(t, out, "error: .applock is tracked by git")

	out = FormatFileStatus(&FileStatus{IsRepo: true, Path: ".applock"})
	assert.Contains(t, out, "warning: .applock not in .gitignore")

	out = FormatFileStatus(&FileStatus{IsRepo: true, Path: ".applock", Ignored: true})
	assert.Contains(t, out, "ok: .applock is ignored by git")
}

func TestCheckFileOutsideRepo(t *testing.T) {
	dir := t.TempDir()
	status, err := CheckFile(t.Context(), filepath.Join(dir, ".applock"))
	require.NoError(t, err)
	if status.IsRepo {
		t.Skip("temp dir is inside a git repository")
	}
	assert.False(t, status.Tracked)
}

func TestCheckFileIgnored(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	gitInit := exec.Command("git", "init", "-q")
	gitInit.Dir = dir
	require.NoError(t, gitInit.Run())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(".applock\n"), 0644))

	status, err := CheckFile(t.Context(), filepath.Join(dir, ".applock"))
	require.NoError(t, err)
	assert.True(t, status.IsRepo)
	assert.True(t, status.Ignored)
	assert.False(t, status.Tracked)
}

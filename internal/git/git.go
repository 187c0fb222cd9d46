package git

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
)

// FileStatus contains git status information for one file
type FileStatus struct {
	IsRepo  bool
	Path    string
	Tracked bool // bad: history holds old counter values
	Ignored bool // good
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(ctx context.Context, workDir string) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	err := cmd.Run()
	return err == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(ctx context.Context, workDir, path string) bool {
	cmd := exec.CommandContext(ctx, "git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()

	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(ctx context.Context, workDir, path string) bool {
	cmd := exec.CommandContext(ctx, "git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	err := cmd.Run()

	// git check-ignore returns exit code 0 if file is ignored
	return err == nil
}

// CheckFile reports the git status of path, relative to the directory
// containing it
func CheckFile(ctx context.Context, path string) (*FileStatus, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	workDir, name := filepath.Split(abs)

	status := &FileStatus{Path: path}
	if !IsGitRepo(ctx, workDir) {
		return status, nil
	}
	status.IsRepo = true
	status.Tracked = IsTracked(ctx, workDir, name)
	status.Ignored = IsIgnored(ctx, workDir, name)
	return status, nil
}

// FormatFileStatus formats git status for display. Empty outside a repository.
func FormatFileStatus(status *FileStatus) string {
	if !status.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("\nGit Integration:\n")

	switch {
	case status.Tracked:
		result.WriteString("   error: " + status.Path + " is tracked by git (run: git rm --cached " + status.Path + ")\n")
	case !status.Ignored:
		result.WriteString("   warning: " + status.Path + " not in .gitignore (add to .gitignore)\n")
	default:
		result.WriteString("   ok: " + status.Path + " is ignored by git\n")
	}

	return result.String()
}

package backend

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires POSIX shell")
	}
}

func TestGitCLIExec_Stdout(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	dir := t.TempDir()
	bin := writeScript(t, dir, "git.sh", "#!/bin/sh\necho \"$@\"\necho \"prompt=$GIT_TERMINAL_PROMPT editor=$GIT_EDITOR\"\n")
	g := newGitCLI(bin)

	out, err := g.Exec(context.Background(), dir, ExecOptions{Env: []string{"GIT_EDITOR=true"}}, "rebase", "--continue")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "-C "+dir+" rebase --continue", lines[0])
	assert.Equal(t, "prompt=0 editor=true", lines[1])
}

func TestGitCLIExec_ErrorsThrow(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	dir := t.TempDir()
	bin := writeScript(t, dir, "git.sh", "#!/bin/sh\necho 'partial'\necho 'error: could not apply 1234abc' >&2\nexit 3\n")
	g := newGitCLI(bin)

	_, err := g.Exec(context.Background(), dir, ExecOptions{}, "cherry-pick", "--continue")
	require.Error(t, err)

	var gitErr *GitError
	require.ErrorAs(t, err, &gitErr)
	assert.Equal(t, 3, gitErr.ExitCode)
	assert.Equal(t, "error: could not apply 1234abc", gitErr.Stderr)
	assert.Equal(t, "partial", gitErr.Stdout)
	assert.Equal(t, []string{"cherry-pick", "--continue"}, gitErr.Args)
	assert.Equal(t, "error: could not apply 1234abc\npartial", gitErr.Output())
	assert.Contains(t, err.Error(), "git cherry-pick --continue")

	var exitErr *exec.ExitError
	assert.ErrorAs(t, err, &exitErr)
}

func TestGitCLIExec_ErrorsIgnore(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	dir := t.TempDir()
	bin := writeScript(t, dir, "git.sh", "#!/bin/sh\necho 'fatal: Needed a single revision' >&2\nexit 128\n")
	g := newGitCLI(bin)

	out, err := g.Exec(context.Background(), dir, ExecOptions{Errors: ErrorsIgnore}, "rev-parse", "--verify", "nope")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGitCLIExec_Cancelled(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	dir := t.TempDir()
	bin := writeScript(t, dir, "git.sh", "#!/bin/sh\nsleep 30\n")
	g := newGitCLI(bin)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	_, err := g.Exec(ctx, dir, ExecOptions{}, "rebase", "--continue")
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestGitCLIExec_AlreadyCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newGitCLI("does-not-matter").Exec(ctx, t.TempDir(), ExecOptions{}, "status")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGitCLIExec_RequiresRepoPath(t *testing.T) {
	t.Parallel()

	_, err := newGitCLI("").Exec(context.Background(), "", ExecOptions{}, "status")
	require.Error(t, err)
}

func TestGitCLIRunAllowExit1(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	dir := t.TempDir()
	silent := newGitCLI(writeScript(t, dir, "silent.sh", "#!/bin/sh\nexit 1\n"))
	out, err := silent.runAllowExit1(context.Background(), dir, "symbolic-ref", "-q", "HEAD")
	require.NoError(t, err)
	assert.Empty(t, out)

	loud := newGitCLI(writeScript(t, dir, "loud.sh", "#!/bin/sh\necho 'fatal: bad object' >&2\nexit 1\n"))
	_, err = loud.runAllowExit1(context.Background(), dir, "merge-base", "a", "b")
	require.Error(t, err)
}

func TestLocate(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	dir := t.TempDir()
	g := newGitCLI(writeScript(t, dir, "git.sh", "#!/bin/sh\necho /srv/repo\necho /srv/repo/.git\n"))
	root, gitDir, err := Locate(context.Background(), g, dir)
	require.NoError(t, err)
	assert.Equal(t, "/srv/repo", root)
	assert.Equal(t, "/srv/repo/.git", gitDir)

	empty := newGitCLI(writeScript(t, dir, "empty.sh", "#!/bin/sh\necho /srv/repo\n"))
	_, _, err = Locate(context.Background(), empty, dir)
	require.Error(t, err)
}

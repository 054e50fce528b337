package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const defaultGitBinary = "git"

type gitCLI struct {
	bin string
}

// NewCLI returns a Backend that shells out to the git executable at bin, or
// to "git" from PATH when bin is empty.
func NewCLI(bin string) (Backend, error) {
	g := newGitCLI(bin)
	if err := ensureMinGitVersion(g.bin); err != nil {
		return nil, err
	}
	return g, nil
}

func newGitCLI(bin string) *gitCLI {
	bin = strings.TrimSpace(bin)
	if bin == "" {
		bin = defaultGitBinary
	}
	return &gitCLI{bin: bin}
}

// Locate resolves the root of the working tree that contains path and the
// absolute path of its git directory. For linked worktrees gitDir is the
// per-worktree directory, which is where paused operation state lives.
func Locate(ctx context.Context, r Runner, path string) (root, gitDir string, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", err
	}
	out, err := r.Exec(ctx, abs, ExecOptions{}, "rev-parse", "--show-toplevel", "--absolute-git-dir")
	if err != nil {
		return "", "", fmt.Errorf("open repository: %w", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || strings.TrimSpace(lines[0]) == "" || strings.TrimSpace(lines[1]) == "" {
		return "", "", fmt.Errorf("open repository: unexpected git rev-parse output %q", out)
	}
	return strings.TrimSpace(lines[0]), strings.TrimSpace(lines[1]), nil
}

func (g *gitCLI) Exec(ctx context.Context, repoPath string, opts ExecOptions, args ...string) (string, error) {
	if repoPath == "" {
		return "", fmt.Errorf("repository root not set")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cmdArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, g.bin, cmdArgs...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	cmd.Env = append(cmd.Env, opts.Env...)
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		return terminateProcessGroup(cmd)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	slog.Debug("git exec",
		slog.String("repo", repoPath),
		slog.String("args", strings.Join(args, " ")),
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("failed", err != nil),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if opts.Errors == ErrorsIgnore {
			return "", nil
		}
		gitErr := &GitError{
			Args:     args,
			Stdout:   strings.TrimSpace(stdout.String()),
			Stderr:   strings.TrimSpace(stderr.String()),
			ExitCode: -1,
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			gitErr.ExitCode = exitErr.ExitCode()
		}
		return "", gitErr
	}
	return stdout.String(), nil
}

// runAllowExit1 treats a silent exit status 1 as an empty answer. Several
// plumbing commands (symbolic-ref -q, merge-base) use it to mean "none".
func (g *gitCLI) runAllowExit1(ctx context.Context, repoPath string, args ...string) (string, error) {
	out, err := g.Exec(ctx, repoPath, ExecOptions{}, args...)
	if err != nil {
		var gitErr *GitError
		if errors.As(err, &gitErr) && gitErr.ExitCode == 1 && gitErr.Stderr == "" {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

// GitError wraps failures when invoking the git binary.
type GitError struct {
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

func (e *GitError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Stderr
	if msg == "" {
		msg = e.Stdout
	}
	if msg == "" {
		return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("git %s: %v: %s", strings.Join(e.Args, " "), e.Err, msg)
}

func (e *GitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Output returns everything git printed, stderr first.
func (e *GitError) Output() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Stderr == "":
		return e.Stdout
	case e.Stdout == "":
		return e.Stderr
	default:
		return e.Stderr + "\n" + e.Stdout
	}
}

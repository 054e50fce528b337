package git

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	gitbackend "github.com/thiagokokada/git-paused/internal/git/backend"
)

const (
	testRoot   = "/repo"
	testGitDir = "/repo/.git"
)

type fakeBackend struct {
	gitDir string

	execFunc          func(ctx context.Context, opts gitbackend.ExecOptions, args []string) (string, error)
	currentBranchFunc func(ctx context.Context) (gitbackend.Ref, bool, error)
	mergeBaseFunc     func(ctx context.Context, a, b string) (string, error)
	branchesFunc      func(ctx context.Context, rev string) ([]gitbackend.Ref, error)
	tagsFunc          func(ctx context.Context, rev string) ([]gitbackend.Ref, error)

	mu    sync.Mutex
	execs [][]string
	envs  [][]string
}

func (f *fakeBackend) Exec(ctx context.Context, repoPath string, opts gitbackend.ExecOptions, args ...string) (string, error) {
	if strings.Join(args, " ") == "rev-parse --show-toplevel --absolute-git-dir" {
		gitDir := f.gitDir
		if gitDir == "" {
			gitDir = testGitDir
		}
		return testRoot + "\n" + gitDir + "\n", nil
	}
	f.mu.Lock()
	f.execs = append(f.execs, args)
	f.envs = append(f.envs, opts.Env)
	f.mu.Unlock()
	if repoPath != testRoot {
		return "", errors.New("unexpected repo path " + repoPath)
	}
	if f.execFunc != nil {
		return f.execFunc(ctx, opts, args)
	}
	return "", errors.New("unexpected Exec call: " + strings.Join(args, " "))
}

func (f *fakeBackend) CurrentBranch(ctx context.Context, repoPath string) (gitbackend.Ref, bool, error) {
	if f.currentBranchFunc != nil {
		return f.currentBranchFunc(ctx)
	}
	return gitbackend.Ref{}, false, errors.New("unexpected CurrentBranch call")
}

func (f *fakeBackend) MergeBase(ctx context.Context, repoPath, a, b string) (string, error) {
	if f.mergeBaseFunc != nil {
		return f.mergeBaseFunc(ctx, a, b)
	}
	return "", errors.New("unexpected MergeBase call")
}

func (f *fakeBackend) BranchesPointingAt(ctx context.Context, repoPath, rev string) ([]gitbackend.Ref, error) {
	if f.branchesFunc != nil {
		return f.branchesFunc(ctx, rev)
	}
	return nil, errors.New("unexpected BranchesPointingAt call")
}

func (f *fakeBackend) TagsPointingAt(ctx context.Context, repoPath, rev string) ([]gitbackend.Ref, error) {
	if f.tagsFunc != nil {
		return f.tagsFunc(ctx, rev)
	}
	return nil, errors.New("unexpected TagsPointingAt call")
}

func (f *fakeBackend) execCalls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.execs...)
}

// verifyRevs answers "rev-parse --quiet --verify" from revs and fails any
// other command.
func verifyRevs(revs map[string]string) func(context.Context, gitbackend.ExecOptions, []string) (string, error) {
	return func(_ context.Context, opts gitbackend.ExecOptions, args []string) (string, error) {
		if len(args) == 4 && args[0] == "rev-parse" && args[1] == "--quiet" && args[2] == "--verify" {
			if opts.Errors != gitbackend.ErrorsIgnore {
				return "", errors.New("rev-parse --verify must ignore errors")
			}
			if sha, ok := revs[args[3]]; ok {
				return sha + "\n", nil
			}
			return "", nil
		}
		return "", errors.New("unexpected Exec call: " + strings.Join(args, " "))
	}
}

func onBranch(name, hash string) func(context.Context) (gitbackend.Ref, bool, error) {
	return func(context.Context) (gitbackend.Ref, bool, error) {
		return gitbackend.Ref{Hash: hash, Kind: gitbackend.RefKindBranch, Name: name}, true, nil
	}
}

func newTestService(fb *fakeBackend, fs billy.Filesystem) *Service {
	return NewWithBackend(fb, WithControlDir(func(string) billy.Filesystem { return fs }))
}

func writeControlFile(t *testing.T, fs billy.Filesystem, name, content string) {
	t.Helper()
	if err := util.WriteFile(fs, name, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func mkControlDir(t *testing.T, fs billy.Filesystem, name string) {
	t.Helper()
	if err := fs.MkdirAll(name, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", name, err)
	}
}

func newControlFS() billy.Filesystem {
	return memfs.New()
}

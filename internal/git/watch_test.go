package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldIgnoreWatchPath(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"/repo/.git/index.lock":        true,
		"/repo/.git/HEAD.LOCK":         true,
		"/repo/.git/fsmonitor.ipc":     true,
		"/repo/.git/MERGE_HEAD":        false,
		"/repo/.git/rebase-merge/done": false,
	}
	for path, want := range tests {
		if got := shouldIgnoreWatchPath(path); got != want {
			t.Fatalf("shouldIgnoreWatchPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestIsStateDir(t *testing.T) {
	t.Parallel()

	gitDir := filepath.Join("repo", ".git")
	assert.True(t, isStateDir(gitDir, filepath.Join(gitDir, "rebase-merge")))
	assert.True(t, isStateDir(gitDir, filepath.Join(gitDir, "sequencer")))
	assert.False(t, isStateDir(gitDir, filepath.Join(gitDir, "refs")))
	assert.False(t, isStateDir(gitDir, filepath.Join(gitDir, "refs", "sequencer")))
}

func TestWatch_InvalidatesOnChange(t *testing.T) {
	t.Parallel()

	gitDir := t.TempDir()
	fb := &fakeBackend{
		gitDir:            gitDir,
		execFunc:          verifyRevs(map[string]string{"CHERRY_PICK_HEAD": shaPick}),
		currentBranchFunc: onBranch("main", shaMain),
	}
	svc := NewWithBackend(fb)
	require.Equal(t, testRoot, mustRoot(t, svc))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	before, err := svc.GetPausedOperationStatus(ctx, testRoot)
	require.NoError(t, err)
	require.Nil(t, before)

	changed := make(chan struct{}, 8)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- svc.Watch(ctx, testRoot, func() { changed <- struct{}{} })
	}()

	// Retry until the watcher is registered.
	deadline := time.After(10 * time.Second)
	for {
		require.NoError(t, os.WriteFile(filepath.Join(gitDir, "CHERRY_PICK_HEAD"), []byte(shaPick+"\n"), 0o644))
		select {
		case <-changed:
		case <-time.After(time.Second):
			continue
		case <-deadline:
			t.Fatal("watcher did not report the change")
		}
		break
	}

	after, err := svc.GetPausedOperationStatus(ctx, testRoot)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, OperationCherryPick, after.Operation())

	cancel()
	select {
	case err := <-watchErr:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestStatus_DefaultControlDirIsOnDisk(t *testing.T) {
	t.Parallel()

	gitDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(gitDir, "sequencer"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "sequencer", "todo"), []byte("revert abcdef1 x\n"), 0o644))

	fb := &fakeBackend{gitDir: gitDir, currentBranchFunc: onBranch("main", shaMain)}
	svc := NewWithBackend(fb)

	status, err := svc.GetPausedOperationStatus(context.Background(), testRoot)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, OperationRevert, status.Operation())
}

func mustRoot(t *testing.T, svc *Service) string {
	t.Helper()
	root, err := svc.resolveRoot(context.Background(), testRoot)
	require.NoError(t, err)
	return root
}

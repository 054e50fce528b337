package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thiagokokada/git-paused/internal/debounce"
)

const watchDebounceDelay = 350 * time.Millisecond

// stateDirs hold the multi-file state of an operation. fsnotify is not
// recursive, so they are watched on their own whenever they exist.
var stateDirs = []string{"rebase-apply", "rebase-merge", "sequencer"}

// Watch invalidates the cached status of the repository containing repoPath
// whenever its git directory changes and then calls onChange. Bursts of
// changes are coalesced. Watch blocks until ctx is done.
func (s *Service) Watch(ctx context.Context, repoPath string, onChange func()) error {
	loc, err := s.locate(ctx, repoPath)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			slog.Error("watcher close", slog.Any("error", err))
		}
	}()

	slog.Debug("adding path to FS watcher", slog.String("path", loc.gitDir))
	if err := watcher.Add(loc.gitDir); err != nil {
		return fmt.Errorf("watch %s: %w", loc.gitDir, err)
	}
	for _, name := range stateDirs {
		addStateDir(watcher, filepath.Join(loc.gitDir, name))
	}

	d := debounce.New(watchDebounceDelay, func() {
		s.cache.invalidate(loc.root)
		onChange()
	})
	defer d.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if shouldIgnoreWatchPath(ev.Name) {
				continue
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			if ev.Op&fsnotify.Create != 0 && isStateDir(loc.gitDir, ev.Name) {
				addStateDir(watcher, ev.Name)
			}
			d.Trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func addStateDir(w *fsnotify.Watcher, dir string) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	slog.Debug("adding path to FS watcher", slog.String("path", dir))
	if err := w.Add(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("watch state dir", slog.String("path", dir), slog.Any("error", err))
	}
}

func isStateDir(gitDir, name string) bool {
	if filepath.Dir(name) != filepath.Clean(gitDir) {
		return false
	}
	return slices.Contains(stateDirs, filepath.Base(name))
}

func shouldIgnoreWatchPath(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".lock" || ext == ".ipc"
}

package git

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	gitbackend "github.com/thiagokokada/git-paused/internal/git/backend"
)

type AbortOptions struct {
	// Quit leaves the working tree and index as they are instead of
	// restoring the pre-operation state.
	Quit bool
}

type ContinueOptions struct {
	Skip bool
}

// AbortPausedOperation aborts (or quits) the paused operation of repoPath.
// It does nothing when no operation is in progress.
func (s *Service) AbortPausedOperation(ctx context.Context, repoPath string, opts AbortOptions) error {
	flag := "--abort"
	if opts.Quit {
		flag = "--quit"
	}
	return s.transition(ctx, "abort", repoPath, flag, func(root string, status Status) error {
		cmd, err := s.runTransition(ctx, root, status, flag)
		if err == nil || isContextError(err) {
			return err
		}
		return &PausedOperationAbortError{Err: err, Reason: classifyFailure(err), Operation: status, Command: cmd}
	})
}

// ContinuePausedOperation continues (or skips the current step of) the
// paused operation of repoPath. It does nothing when no operation is in
// progress and returns ErrMergeSkipUnsupported for a merge with Skip.
func (s *Service) ContinuePausedOperation(ctx context.Context, repoPath string, opts ContinueOptions) error {
	flag := "--continue"
	if opts.Skip {
		flag = "--skip"
	}
	return s.transition(ctx, "continue", repoPath, flag, func(root string, status Status) error {
		if opts.Skip && status.Operation() == OperationMerge {
			return ErrMergeSkipUnsupported
		}
		cmd, err := s.runTransition(ctx, root, status, flag)
		if err == nil || isContextError(err) {
			return err
		}
		return &PausedOperationContinueError{Err: err, Reason: classifyFailure(err), Operation: status, Command: cmd}
	})
}

// transition serializes calls sharing (repoPath, flag): a second call waits
// for the running one and shares its outcome instead of running git again.
// The shared run uses the context of the caller that started it; a waiter
// whose own context is still live starts over when that run was cancelled.
func (s *Service) transition(ctx context.Context, kind, repoPath, flag string, run func(root string, status Status) error) error {
	root, err := s.resolveRoot(ctx, repoPath)
	if err != nil {
		return err
	}
	key := strings.Join([]string{kind, root, flag}, "\x00")
	for {
		ch := s.transitions.DoChan(key, func() (any, error) {
			defer s.cache.invalidate(root)
			// The status may be stale; always act on what is on disk now.
			s.cache.invalidate(root)
			status, err := s.GetPausedOperationStatus(ctx, root)
			if err != nil {
				return nil, err
			}
			if status == nil {
				slog.Debug("nothing to "+kind, slog.String("repo", root))
				return nil, nil
			}
			return nil, run(root, status)
		})
		var res singleflight.Result
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res = <-ch:
		}
		if isContextError(res.Err) && ctx.Err() == nil {
			slog.Debug("shared "+kind+" cancelled, retrying", slog.String("repo", root))
			continue
		}
		return res.Err
	}
}

func (s *Service) runTransition(ctx context.Context, repoPath string, status Status, flag string) (GitCommand, error) {
	cmd := GitCommand{RepoPath: repoPath, Args: []string{string(status.Operation()), flag}}
	opts := gitbackend.ExecOptions{}
	if flag == "--continue" {
		// git would otherwise open an editor for the commit message.
		opts.Env = []string{"GIT_EDITOR=true"}
	}
	slog.Info("running transition",
		slog.String("repo", repoPath),
		slog.String("command", cmd.String()),
	)
	_, err := s.backend.Exec(ctx, repoPath, opts, cmd.Args...)
	return cmd, err
}

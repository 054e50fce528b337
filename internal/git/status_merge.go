package git

import (
	"context"

	"golang.org/x/sync/errgroup"

	gitbackend "github.com/thiagokokada/git-paused/internal/git/backend"
)

func (b *statusBuilder) merge(ctx context.Context) (Status, error) {
	mergeHead, err := b.verifyRev(ctx, "MERGE_HEAD")
	if err != nil || mergeHead == "" {
		return nil, err
	}

	var (
		current   *Reference
		mergeBase *Reference
		branches  []gitbackend.Ref
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		current, err = b.currentBranch(gctx)
		return err
	})
	g.Go(func() (err error) {
		mergeBase, err = b.mergeBase(gctx, mergeHead, "HEAD")
		return err
	})
	g.Go(func() (err error) {
		branches, err = b.branchesPointingAt(gctx, mergeHead)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Only name the source when exactly one branch could have been merged.
	incoming := NewRevisionReference(b.repoPath, mergeHead, "")
	if branches = realBranches(branches); len(branches) == 1 {
		incoming = b.toReference(branches[0])
	}
	return &MergeStatus{
		StatusBase: StatusBase{
			RepoPath: b.repoPath,
			HEAD:     NewRevisionReference(b.repoPath, mergeHead, ""),
			Current:  current,
			Incoming: incoming,
		},
		MergeBase: mergeBase,
	}, nil
}

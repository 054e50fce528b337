package git

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	gitbackend "github.com/thiagokokada/git-paused/internal/git/backend"
)

// rebase reads both the rebase-apply and rebase-merge layouts; they share
// file names.
func (b *statusBuilder) rebase(ctx context.Context, stateDir string) (Status, error) {
	headName, ok, err := b.dir.read(ctx, stateDir, "head-name")
	if err != nil || !ok || headName == "" {
		return nil, err
	}
	branch := strings.TrimPrefix(headName, "refs/heads/")

	var (
		rebaseHead  string
		origHead    string
		onto        string
		hasOrigHead bool
		hasOnto     bool
		msgnum      int
		end         int
		message     string
		interactive bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rebaseHead, err = b.verifyRev(gctx, "REBASE_HEAD")
		return err
	})
	g.Go(func() (err error) {
		origHead, hasOrigHead, err = b.dir.read(gctx, stateDir, "orig-head")
		return err
	})
	g.Go(func() (err error) {
		onto, hasOnto, err = b.dir.read(gctx, stateDir, "onto")
		return err
	})
	g.Go(func() (err error) {
		msgnum, err = b.dir.readInt(gctx, stateDir, "msgnum")
		return err
	})
	g.Go(func() (err error) {
		end, err = b.dir.readInt(gctx, stateDir, "end")
		return err
	})
	g.Go(func() error {
		msg, ok, err := b.dir.read(gctx, stateDir, "message")
		if err != nil {
			return err
		}
		if !ok {
			msg, _, err = b.dir.read(gctx, stateDir, "message-squashed")
			if err != nil {
				return err
			}
		}
		message = msg
		return nil
	})
	g.Go(func() (err error) {
		interactive, err = b.dir.exists(gctx, stateDir, "interactive")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !hasOrigHead && !hasOnto {
		return nil, nil
	}

	var (
		mergeBase *Reference
		current   *Reference
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if rebaseHead != "" {
			mergeBase, err = b.mergeBase(gctx, rebaseHead, "HEAD")
		} else {
			mergeBase, err = b.mergeBase(gctx, onto, origHead)
		}
		return err
	})
	g.Go(func() (err error) {
		current, err = b.ontoLabel(gctx, onto)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	head := rebaseHead
	if head == "" {
		head = origHead
	}
	step := RebaseStep{Number: msgnum}
	if rebaseHead != "" {
		commit := NewRevisionReference(b.repoPath, rebaseHead, message)
		step.Commit = &commit
	}
	hasStarted := msgnum > 0
	return &RebaseStatus{
		StatusBase: StatusBase{
			RepoPath: b.repoPath,
			HEAD:     NewRevisionReference(b.repoPath, head, ""),
			Current:  current,
			Incoming: NewBranchReference(b.repoPath, branch, "", false),
		},
		MergeBase:     mergeBase,
		Onto:          NewRevisionReference(b.repoPath, onto, ""),
		Source:        NewRevisionReference(b.repoPath, origHead, ""),
		Steps:         RebaseSteps{Current: step, Total: end},
		HasStarted:    hasStarted,
		IsPaused:      hasStarted && rebaseHead != "",
		IsInteractive: interactive,
	}, nil
}

// ontoLabel finds a branch, or failing that a tag, whose tip is onto. git
// lists the detached HEAD of the rebase itself as "(no branch, rebasing x)"
// which is not a real branch.
func (b *statusBuilder) ontoLabel(ctx context.Context, onto string) (*Reference, error) {
	if onto == "" {
		return nil, nil
	}
	branches, err := b.branchesPointingAt(ctx, onto)
	if err != nil {
		return nil, err
	}
	if branches = realBranches(branches); len(branches) > 0 {
		label := b.toReference(branches[0])
		return &label, nil
	}
	tags, err := b.tagsPointingAt(ctx, onto)
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		sortRefs(tags)
		label := b.toReference(tags[0])
		return &label, nil
	}
	return nil, nil
}

// realBranches drops placeholder entries and orders local branches before
// remote ones so the pick does not depend on the resolver.
func realBranches(refs []gitbackend.Ref) []gitbackend.Ref {
	out := make([]gitbackend.Ref, 0, len(refs))
	for _, ref := range refs {
		if !isDetachedPlaceholder(ref.Name) {
			out = append(out, ref)
		}
	}
	sortRefs(out)
	return out
}

func sortRefs(refs []gitbackend.Ref) {
	slices.SortFunc(refs, func(a, b gitbackend.Ref) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
}

func isDetachedPlaceholder(name string) bool {
	return strings.HasPrefix(name, "(no branch, rebasing") || strings.HasPrefix(name, "(HEAD detached")
}

package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// native resolves references with go-git and leaves subprocess work to the
// wrapped Runner.
type native struct {
	Runner
}

// NewNative returns a Backend whose Resolver half is implemented in pure Go.
func NewNative(runner Runner) Backend {
	return &native{Runner: runner}
}

func openRepository(repoPath string) (*gitlib.Repository, error) {
	if repoPath == "" {
		return nil, fmt.Errorf("repository root not set")
	}
	repo, err := gitlib.PlainOpenWithOptions(repoPath, &gitlib.PlainOpenOptions{DetectDotGit: true, EnableDotGitCommonDir: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return repo, nil
}

func (n *native) CurrentBranch(ctx context.Context, repoPath string) (Ref, bool, error) {
	repo, err := openRepository(repoPath)
	if err != nil {
		return Ref{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return Ref{}, false, err
	}
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return Ref{}, false, fmt.Errorf("resolve HEAD: %w", err)
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return Ref{}, false, nil
	}
	ref := Ref{Kind: RefKindBranch, Name: head.Target().Short()}
	resolved, err := repo.Head()
	switch {
	case err == nil:
		ref.Hash = resolved.Hash().String()
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		// unborn branch
	default:
		return Ref{}, false, fmt.Errorf("resolve HEAD: %w", err)
	}
	return ref, true, nil
}

func (n *native) MergeBase(ctx context.Context, repoPath, a, b string) (string, error) {
	repo, err := openRepository(repoPath)
	if err != nil {
		return "", err
	}
	left, err := commitFor(repo, a)
	if err != nil {
		return "", err
	}
	right, err := commitFor(repo, b)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	bases, err := left.MergeBase(right)
	if err != nil {
		return "", fmt.Errorf("merge-base %s %s: %w", a, b, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(bases) == 0 {
		return "", nil
	}
	return bases[0].Hash.String(), nil
}

func (n *native) BranchesPointingAt(ctx context.Context, repoPath, rev string) ([]Ref, error) {
	repo, err := openRepository(repoPath)
	if err != nil {
		return nil, err
	}
	target, err := resolveHash(repo, rev)
	if err != nil {
		return nil, err
	}
	iter, err := repo.References()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var refs []Ref
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ref.Type() != plumbing.HashReference || ref.Hash() != target {
			return nil
		}
		name := ref.Name()
		switch {
		case name.IsBranch():
			refs = append(refs, Ref{Hash: target.String(), Kind: RefKindBranch, Name: name.Short()})
		case name.IsRemote():
			short := strings.TrimPrefix(name.String(), "refs/remotes/")
			if strings.HasSuffix(short, "/HEAD") {
				return nil
			}
			refs = append(refs, Ref{Hash: target.String(), Kind: RefKindRemoteBranch, Name: short})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func (n *native) TagsPointingAt(ctx context.Context, repoPath, rev string) ([]Ref, error) {
	repo, err := openRepository(repoPath)
	if err != nil {
		return nil, err
	}
	target, err := resolveHash(repo, rev)
	if err != nil {
		return nil, err
	}
	iter, err := repo.Tags()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var refs []Ref
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if peelTag(repo, ref.Hash()) != target {
			return nil
		}
		refs = append(refs, Ref{Hash: target.String(), Kind: RefKindTag, Name: ref.Name().Short()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func resolveHash(repo *gitlib.Repository, rev string) (plumbing.Hash, error) {
	rev = strings.TrimSpace(rev)
	if rev == "" {
		return plumbing.ZeroHash, fmt.Errorf("revision not specified")
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve %s: %w", rev, err)
	}
	return *hash, nil
}

func commitFor(repo *gitlib.Repository, rev string) (*object.Commit, error) {
	hash, err := resolveHash(repo, rev)
	if err != nil {
		return nil, err
	}
	commit, err := repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", rev, err)
	}
	return commit, nil
}

// peelTag follows annotated tag objects down to the object they name.
// Lightweight tags already point at their target.
func peelTag(repo *gitlib.Repository, hash plumbing.Hash) plumbing.Hash {
	for range 8 {
		tag, err := repo.TagObject(hash)
		if err != nil {
			return hash
		}
		hash = tag.Target
	}
	return hash
}

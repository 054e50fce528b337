package backend

import "context"

// Runner executes git subcommands inside a repository.
type Runner interface {
	Exec(ctx context.Context, repoPath string, opts ExecOptions, args ...string) (string, error)
}

// Resolver answers reference questions about a repository.
//
// The default implementation shells out to the git executable, but the interface
// allows alternative implementations (e.g. pure-Go) without changing callers.
type Resolver interface {
	// CurrentBranch returns the checked out branch. ok is false when HEAD is
	// detached; an unborn branch is reported with an empty Hash.
	CurrentBranch(ctx context.Context, repoPath string) (ref Ref, ok bool, err error)
	// MergeBase returns the best common ancestor of a and b, or "" when the
	// two have no common history.
	MergeBase(ctx context.Context, repoPath, a, b string) (string, error)
	// BranchesPointingAt returns local and remote branches whose tip is rev.
	BranchesPointingAt(ctx context.Context, repoPath, rev string) ([]Ref, error)
	// TagsPointingAt returns tags that peel to rev.
	TagsPointingAt(ctx context.Context, repoPath, rev string) ([]Ref, error)
}

type Backend interface {
	Runner
	Resolver
}

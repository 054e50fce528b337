package git

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gitbackend "github.com/thiagokokada/git-paused/internal/git/backend"
)

// statusBuilder assembles the Status of one repository from its control
// directory and git.
type statusBuilder struct {
	backend  gitbackend.Backend
	dir      controlDir
	repoPath string
}

func (b *statusBuilder) build(ctx context.Context) (Status, error) {
	markers, err := detectMarkers(ctx, b.dir.fs)
	if err != nil {
		return nil, err
	}
	if len(markers) == 0 {
		return nil, nil
	}
	slog.Debug("paused operation detected",
		slog.String("repo", b.repoPath),
		slog.String("marker", markers[0].String()),
		slog.Int("candidates", len(markers)),
	)

	var status Status
	switch markers[0] {
	case markerRebaseApply, markerRebaseMerge:
		status, err = b.rebase(ctx, markers[0].String())
	case markerMerge:
		status, err = b.merge(ctx)
	case markerCherryPick:
		status, err = b.cherryPickOrRevert(ctx, OperationCherryPick, "CHERRY_PICK_HEAD")
	case markerRevert:
		status, err = b.cherryPickOrRevert(ctx, OperationRevert, "REVERT_HEAD")
	case markerSequencer:
		status, err = b.sequencer(ctx)
	default:
		return nil, fmt.Errorf("unhandled marker %s", markers[0])
	}
	if err != nil {
		return nil, err
	}
	// Never hand out a result computed under a cancelled context.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return status, nil
}

// verifyRev resolves rev to a sha, returning "" when it does not resolve.
func (b *statusBuilder) verifyRev(ctx context.Context, rev string) (string, error) {
	out, err := b.backend.Exec(ctx, b.repoPath, gitbackend.ExecOptions{Errors: gitbackend.ErrorsIgnore},
		"rev-parse", "--quiet", "--verify", rev)
	if err != nil {
		return settle(ctx, "", err, "rev-parse "+rev)
	}
	return strings.TrimSpace(out), nil
}

func (b *statusBuilder) currentBranch(ctx context.Context) (*Reference, error) {
	ref, ok, err := b.backend.CurrentBranch(ctx, b.repoPath)
	if err != nil {
		return settle[*Reference](ctx, nil, err, "current branch")
	}
	if !ok {
		return nil, nil
	}
	branch := NewBranchReference(b.repoPath, ref.Name, ref.Hash, false)
	return &branch, nil
}

func (b *statusBuilder) mergeBase(ctx context.Context, left, right string) (*Reference, error) {
	if left == "" || right == "" {
		return nil, nil
	}
	sha, err := b.backend.MergeBase(ctx, b.repoPath, left, right)
	if err != nil {
		return settle[*Reference](ctx, nil, err, "merge-base")
	}
	if sha == "" {
		return nil, nil
	}
	ref := NewRevisionReference(b.repoPath, sha, "")
	return &ref, nil
}

func (b *statusBuilder) branchesPointingAt(ctx context.Context, rev string) ([]gitbackend.Ref, error) {
	refs, err := b.backend.BranchesPointingAt(ctx, b.repoPath, rev)
	if err != nil {
		return settle[[]gitbackend.Ref](ctx, nil, err, "branches pointing at "+rev)
	}
	return refs, nil
}

func (b *statusBuilder) tagsPointingAt(ctx context.Context, rev string) ([]gitbackend.Ref, error) {
	refs, err := b.backend.TagsPointingAt(ctx, b.repoPath, rev)
	if err != nil {
		return settle[[]gitbackend.Ref](ctx, nil, err, "tags pointing at "+rev)
	}
	return refs, nil
}

func (b *statusBuilder) toReference(ref gitbackend.Ref) Reference {
	switch ref.Kind {
	case gitbackend.RefKindTag:
		return NewTagReference(b.repoPath, ref.Name, ref.Hash)
	case gitbackend.RefKindRemoteBranch:
		return NewBranchReference(b.repoPath, ref.Name, ref.Hash, true)
	default:
		return NewBranchReference(b.repoPath, ref.Name, ref.Hash, false)
	}
}

// settle turns a failed lookup into an absent value. Cancellation is the
// one failure that aborts the whole build.
func settle[T any](ctx context.Context, zero T, err error, what string) (T, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, ctxErr
	}
	slog.Debug("status lookup failed", slog.String("lookup", what), slog.Any("error", err))
	return zero, nil
}

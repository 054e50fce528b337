package git

import "context"

func (b *statusBuilder) cherryPickOrRevert(ctx context.Context, op Operation, headFile string) (Status, error) {
	sha, err := b.verifyRev(ctx, headFile)
	if err != nil || sha == "" {
		return nil, err
	}
	return b.pickStatus(ctx, op, sha)
}

func (b *statusBuilder) pickStatus(ctx context.Context, op Operation, sha string) (Status, error) {
	current, err := b.currentBranch(ctx)
	if err != nil {
		return nil, err
	}
	base := StatusBase{
		RepoPath: b.repoPath,
		HEAD:     NewRevisionReference(b.repoPath, sha, ""),
		Current:  current,
		Incoming: NewRevisionReference(b.repoPath, sha, ""),
	}
	if op == OperationRevert {
		return &RevertStatus{StatusBase: base}, nil
	}
	return &CherryPickStatus{StatusBase: base}, nil
}

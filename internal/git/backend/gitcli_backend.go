package backend

import (
	"context"
	"fmt"
	"strings"
)

func (g *gitCLI) CurrentBranch(ctx context.Context, repoPath string) (Ref, bool, error) {
	out, err := g.runAllowExit1(ctx, repoPath, "symbolic-ref", "-q", "HEAD")
	if err != nil {
		return Ref{}, false, err
	}
	refName := strings.TrimSpace(out)
	name, ok := strings.CutPrefix(refName, "refs/heads/")
	if !ok || name == "" {
		return Ref{}, false, nil
	}
	hash, err := g.runAllowExit1(ctx, repoPath, "rev-parse", "-q", "--verify", "HEAD")
	if err != nil {
		return Ref{}, false, err
	}
	return Ref{Hash: strings.TrimSpace(hash), Kind: RefKindBranch, Name: name}, true, nil
}

func (g *gitCLI) MergeBase(ctx context.Context, repoPath, a, b string) (string, error) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return "", fmt.Errorf("merge-base needs two revisions")
	}
	out, err := g.runAllowExit1(ctx, repoPath, "merge-base", a, b)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *gitCLI) BranchesPointingAt(ctx context.Context, repoPath, rev string) ([]Ref, error) {
	rev = strings.TrimSpace(rev)
	if rev == "" {
		return nil, fmt.Errorf("revision not specified")
	}
	out, err := g.Exec(ctx, repoPath, ExecOptions{},
		"branch",
		"--all",
		"--no-color",
		"--points-at", rev,
		"--format=%(objectname)%09%(refname)",
	)
	if err != nil {
		return nil, err
	}
	return parseBranchPointsAt(out)
}

func (g *gitCLI) TagsPointingAt(ctx context.Context, repoPath, rev string) ([]Ref, error) {
	rev = strings.TrimSpace(rev)
	if rev == "" {
		return nil, fmt.Errorf("revision not specified")
	}
	out, err := g.Exec(ctx, repoPath, ExecOptions{},
		"for-each-ref",
		"--points-at="+rev,
		"--format=%(objectname)%09%(*objectname)%09%(refname)",
		"refs/tags",
	)
	if err != nil {
		return nil, err
	}
	return parseTagPointsAt(out)
}

// parseBranchPointsAt reads "<hash>\t<refname>" lines. git reports a detached
// HEAD that matches as a pseudo entry such as "(no branch, rebasing main)";
// those are kept verbatim as branch refs so callers can decide what to skip.
func parseBranchPointsAt(out string) ([]Ref, error) {
	var refs []Ref
	for _, rawLine := range strings.Split(out, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		hash, refName, ok := strings.Cut(line, "\t")
		hash = strings.TrimSpace(hash)
		refName = strings.TrimSpace(refName)
		if !ok || hash == "" || refName == "" {
			return nil, fmt.Errorf("unexpected branch output line: %q", rawLine)
		}
		if !strings.HasPrefix(refName, "refs/") {
			refs = append(refs, Ref{Hash: hash, Kind: RefKindBranch, Name: refName})
			continue
		}
		ref, ok := refFromName(hash, refName)
		if !ok || ref.Kind == RefKindTag {
			continue
		}
		if ref.Kind == RefKindRemoteBranch && strings.HasSuffix(ref.Name, "/HEAD") {
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// parseTagPointsAt reads "<object>\t<peeled>\t<refname>" lines; peeled is
// empty for lightweight tags.
func parseTagPointsAt(out string) ([]Ref, error) {
	var refs []Ref
	for _, rawLine := range strings.Split(out, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) != 3 {
			return nil, fmt.Errorf("unexpected for-each-ref output line: %q", rawLine)
		}
		hash := strings.TrimSpace(parts[0])
		if peeled := strings.TrimSpace(parts[1]); peeled != "" {
			hash = peeled
		}
		ref, ok := refFromName(hash, strings.TrimSpace(parts[2]))
		if !ok || ref.Kind != RefKindTag || hash == "" {
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func refFromName(hash, refName string) (Ref, bool) {
	switch {
	case strings.HasPrefix(refName, "refs/tags/"):
		short := strings.TrimPrefix(refName, "refs/tags/")
		if short == "" {
			return Ref{}, false
		}
		return Ref{Hash: hash, Kind: RefKindTag, Name: short}, true
	case strings.HasPrefix(refName, "refs/heads/"):
		short := strings.TrimPrefix(refName, "refs/heads/")
		if short == "" {
			return Ref{}, false
		}
		return Ref{Hash: hash, Kind: RefKindBranch, Name: short}, true
	case strings.HasPrefix(refName, "refs/remotes/"):
		short := strings.TrimPrefix(refName, "refs/remotes/")
		if short == "" {
			return Ref{}, false
		}
		return Ref{Hash: hash, Kind: RefKindRemoteBranch, Name: short}, true
	default:
		return Ref{}, false
	}
}

package backend

type RefKind uint8

const (
	RefKindBranch RefKind = iota
	RefKindRemoteBranch
	RefKindTag
)

func (k RefKind) String() string {
	switch k {
	case RefKindRemoteBranch:
		return "remote"
	case RefKindTag:
		return "tag"
	default:
		return "branch"
	}
}

type Ref struct {
	Hash string
	Kind RefKind
	Name string // short name: main, origin/main, v1
}

// ErrorMode controls how Exec reports a git invocation that exits non-zero.
type ErrorMode uint8

const (
	// ErrorsThrow returns a *GitError for any failed invocation.
	ErrorsThrow ErrorMode = iota
	// ErrorsIgnore swallows failures and returns empty output. Cancellation
	// is still reported.
	ErrorsIgnore
)

type ExecOptions struct {
	Errors ErrorMode
	// Env is appended to the inherited environment.
	Env []string
}

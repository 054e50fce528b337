package git

type RefType uint8

const (
	RefTypeRevision RefType = iota
	RefTypeBranch
	RefTypeTag
)

func (t RefType) String() string {
	switch t {
	case RefTypeBranch:
		return "branch"
	case RefTypeTag:
		return "tag"
	default:
		return "revision"
	}
}

// Reference identifies a point in history. Values are never mutated after
// construction; compare them with Equal, not ==.
type Reference struct {
	Type     RefType
	RepoPath string
	// Name is the short branch or tag name. Empty for revisions.
	Name string
	SHA  string
	// Remote marks remote-tracking branches (origin/main).
	Remote bool
	// Message is the commit message, only set on revisions that carry one.
	Message string
}

func NewRevisionReference(repoPath, sha, message string) Reference {
	return Reference{Type: RefTypeRevision, RepoPath: repoPath, SHA: sha, Message: message}
}

func NewBranchReference(repoPath, name, sha string, remote bool) Reference {
	return Reference{Type: RefTypeBranch, RepoPath: repoPath, Name: name, SHA: sha, Remote: remote}
}

func NewTagReference(repoPath, name, sha string) Reference {
	return Reference{Type: RefTypeTag, RepoPath: repoPath, Name: name, SHA: sha}
}

// Key returns the name for branches and tags and the sha for revisions.
func (r Reference) Key() string {
	if r.Type == RefTypeRevision {
		return r.SHA
	}
	return r.Name
}

func (r Reference) Equal(other Reference) bool {
	return r.Type == other.Type && r.Key() == other.Key()
}

func (r Reference) String() string {
	if r.Type == RefTypeRevision {
		return shortSHA(r.SHA)
	}
	return r.Name
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

type Operation string

const (
	OperationCherryPick Operation = "cherry-pick"
	OperationMerge      Operation = "merge"
	OperationRebase     Operation = "rebase"
	OperationRevert     Operation = "revert"
)

// Status describes the paused operation of a repository. The concrete type
// is one of *CherryPickStatus, *RevertStatus, *MergeStatus or *RebaseStatus.
// A nil Status means nothing is in progress.
type Status interface {
	Operation() Operation
	Base() *StatusBase
	isStatus()
}

type StatusBase struct {
	RepoPath string
	HEAD     Reference
	// Current is the branch or tag being worked on. Nil when it cannot be
	// determined unambiguously.
	Current  *Reference
	Incoming Reference
}

func (b *StatusBase) Base() *StatusBase { return b }
func (*StatusBase) isStatus()           {}

type CherryPickStatus struct {
	StatusBase
}

func (*CherryPickStatus) Operation() Operation { return OperationCherryPick }

type RevertStatus struct {
	StatusBase
}

func (*RevertStatus) Operation() Operation { return OperationRevert }

type MergeStatus struct {
	StatusBase
	MergeBase *Reference
}

func (*MergeStatus) Operation() Operation { return OperationMerge }

type RebaseStep struct {
	Number int
	// Commit is the commit being applied, nil while no step is paused.
	Commit *Reference
}

type RebaseSteps struct {
	Current RebaseStep
	Total   int
}

type RebaseStatus struct {
	StatusBase
	MergeBase *Reference
	// Onto is the raw revision being rebased onto; Current carries its
	// branch or tag label when one exists.
	Onto          Reference
	Source        Reference
	Steps         RebaseSteps
	HasStarted    bool
	IsPaused      bool
	IsInteractive bool
}

func (*RebaseStatus) Operation() Operation { return OperationRebase }

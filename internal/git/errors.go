package git

import (
	"errors"
	"fmt"
	"strings"

	gitbackend "github.com/thiagokokada/git-paused/internal/git/backend"
)

// ErrMergeSkipUnsupported is returned when continuing a merge with skip.
// No git command is run in that case.
var ErrMergeSkipUnsupported = errors.New("skipping a merge is not supported")

// FailureReason classifies why git refused an abort or continue.
type FailureReason uint8

const (
	FailureUnknown FailureReason = iota
	FailureConflicts
	FailureUncommittedChanges
	FailureEmptyCommit
	FailureNothingInProgress
)

func (r FailureReason) String() string {
	switch r {
	case FailureConflicts:
		return "conflicts"
	case FailureUncommittedChanges:
		return "uncommitted changes"
	case FailureEmptyCommit:
		return "empty commit"
	case FailureNothingInProgress:
		return "nothing in progress"
	default:
		return "unknown"
	}
}

// Hint is a short remediation for the reason, empty when there is none.
func (r FailureReason) Hint() string {
	switch r {
	case FailureConflicts:
		return "resolve the conflicts and stage the files, then continue"
	case FailureUncommittedChanges:
		return "commit or stash your local changes first"
	case FailureEmptyCommit:
		return "the step produced no changes; continue with skip or commit with --allow-empty"
	case FailureNothingInProgress:
		return "the operation already finished"
	default:
		return ""
	}
}

var failurePatterns = []struct {
	reason   FailureReason
	patterns []string
}{
	{FailureConflicts, []string{
		"needs merge",
		"you must edit all merge conflicts",
		"unmerged files",
		"could not apply",
		"fix conflicts",
	}},
	{FailureUncommittedChanges, []string{
		"would be overwritten",
		"unstaged changes",
		"commit your changes or stash them",
	}},
	{FailureEmptyCommit, []string{
		"is now empty",
		"nothing to commit",
	}},
	{FailureNothingInProgress, []string{
		"no cherry-pick or revert in progress",
		"no rebase in progress",
		"there is no merge",
		"no cherry-pick in progress",
		"no revert in progress",
	}},
}

func classifyFailure(err error) FailureReason {
	var gitErr *gitbackend.GitError
	if !errors.As(err, &gitErr) {
		return FailureUnknown
	}
	out := strings.ToLower(gitErr.Output())
	for _, group := range failurePatterns {
		for _, p := range group.patterns {
			if strings.Contains(out, p) {
				return group.reason
			}
		}
	}
	return FailureUnknown
}

// GitCommand is the command a transition ran.
type GitCommand struct {
	RepoPath string
	Args     []string
}

func (c GitCommand) String() string {
	return "git " + strings.Join(c.Args, " ")
}

// PausedOperationAbortError reports a failed abort or quit.
type PausedOperationAbortError struct {
	Err       error
	Reason    FailureReason
	Operation Status
	Command   GitCommand
}

func (e *PausedOperationAbortError) Error() string {
	return transitionErrorMessage("abort", e.Operation, e.Reason, e.Command, e.Err)
}

func (e *PausedOperationAbortError) Unwrap() error { return e.Err }

// PausedOperationContinueError reports a failed continue or skip.
type PausedOperationContinueError struct {
	Err       error
	Reason    FailureReason
	Operation Status
	Command   GitCommand
}

func (e *PausedOperationContinueError) Error() string {
	return transitionErrorMessage("continue", e.Operation, e.Reason, e.Command, e.Err)
}

func (e *PausedOperationContinueError) Unwrap() error { return e.Err }

func transitionErrorMessage(verb string, op Status, reason FailureReason, cmd GitCommand, err error) string {
	name := "operation"
	if op != nil {
		name = string(op.Operation())
	}
	msg := fmt.Sprintf("unable to %s %s (%s)", verb, name, cmd)
	if reason != FailureUnknown {
		msg += ": " + reason.String()
	}
	if err != nil {
		msg += ": " + err.Error()
	}
	return msg
}
